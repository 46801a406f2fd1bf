package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/baram/internal/controller"
	"github.com/qdm12/reprint"
)

const (
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

func CreateRestService(fanController controller.FanController) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())
	echoRest.Use(middleware.Recover())

	echoRest.GET("/alive/", isAlive)
	registerStatusEndpoints(echoRest, fanController)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func registerStatusEndpoints(rest *echo.Echo, fanController controller.FanController) {
	rest.GET("/status/", func(c echo.Context) error {
		return getStatus(c, fanController)
	})
}

// returns a deep copy of the last control cycle's state, so concurrent
// controller updates can never tear the response
func getStatus(c echo.Context, fanController controller.FanController) error {
	snapshot := fanController.Snapshot()

	var data controller.Snapshot
	if err := reprint.FromTo(&snapshot, &data); err != nil {
		return returnError(c, err)
	}

	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}
