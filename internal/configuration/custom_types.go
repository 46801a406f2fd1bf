package configuration

import (
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodeHook combines the decode hooks needed to unmarshal the configuration.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}

// secondsToDurationHookFunc returns a mapstructure decode hook that interprets
// bare numeric values targeting a time.Duration as seconds. The original
// key/value format specifies sleep_interval and wattage_interval as plain
// integer seconds.
func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != durationType {
			return data, nil
		}

		switch value := data.(type) {
		case int:
			return time.Duration(value) * time.Second, nil
		case int64:
			return time.Duration(value) * time.Second, nil
		case float64:
			return time.Duration(value * float64(time.Second)), nil
		}

		return data, nil
	}
}
