package cmd

import (
	"bytes"
	"strconv"

	"github.com/markusressel/baram/cmd/global"
	"github.com/markusressel/baram/internal/hwmon"
	"github.com/markusressel/baram/internal/ui"
	"github.com/markusressel/baram/internal/util"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect controllable fan channels",
	Long:  `Lists every pwm channel found under /sys/class/hwmon without touching any of them`,
	Run: func(cmd *cobra.Command, args []string) {
		channels := hwmon.ListChannels(hwmon.DefaultBasePath)
		if len(channels) == 0 {
			ui.Printfln("No pwm channels found.")
			return
		}

		tableConfig := &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		}

		var rows [][]string
		for _, channel := range channels {
			pwmText := "N/A"
			if pwm, err := util.ReadIntFromFile(channel.PwmPath); err == nil {
				pwmText = strconv.Itoa(pwm)
			}

			rpmText := "N/A"
			if channel.RpmPath != "" {
				if rpm, err := util.ReadIntFromFile(channel.RpmPath); err == nil {
					rpmText = strconv.Itoa(rpm)
				}
			}

			modeText := "N/A"
			if channel.EnablePath != "" {
				if mode, err := util.ReadIntFromFile(channel.EnablePath); err == nil {
					modeText = strconv.Itoa(mode)
				}
			}

			writableText := strconv.FormatBool(channel.Writable)
			if !channel.Writable && channel.RejectReason != "" {
				writableText = channel.RejectReason
			}

			preferredText := ""
			if channel.IsPreferred() {
				preferredText = "*"
			}

			rows = append(rows, []string{
				channel.Id(), channel.Name, strconv.Itoa(channel.Index),
				pwmText, rpmText, modeText, writableText, preferredText,
			})
		}

		channelTable := table.Table{
			Headers: []string{"Device", "Chip", "Channel", "PWM", "RPM", "Mode", "Writable", "Preferred"},
			Rows:    rows,
		}

		var buf bytes.Buffer
		if err := channelTable.WriteTable(&buf, tableConfig); err != nil {
			ui.Fatal("Error printing table: %v", err)
		}
		ui.Printfln(buf.String())
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
