package config

import (
	"fmt"
	"net"

	"github.com/spf13/viper"

	"benchplot/internal/render"
)

// ValidateConfig validates configuration values and returns an error listing
// every invalid one. It should be called after viper has loaded the
// configuration.
func ValidateConfig() error {
	var errors []string

	if viper.IsSet(KeyProcessTimeout) {
		if d := viper.GetDuration(KeyProcessTimeout); d < 0 {
			errors = append(errors, fmt.Sprintf("%s must not be negative, got: %v", KeyProcessTimeout, d))
		}
	}

	if viper.IsSet(KeyWatchDebounce) {
		if d := viper.GetDuration(KeyWatchDebounce); d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", KeyWatchDebounce, d))
		}
	}

	if viper.IsSet(KeyPlotsFormat) {
		if _, err := render.New(viper.GetString(KeyPlotsFormat), 0, 0, nil); err != nil {
			errors = append(errors, err.Error())
		}
	}

	for _, key := range []string{KeyPlotsWidth, KeyPlotsHeight} {
		if viper.IsSet(key) {
			if v := viper.GetFloat64(key); v <= 0 {
				errors = append(errors, fmt.Sprintf("%s must be positive, got: %v", key, v))
			}
		}
	}

	if viper.IsSet(KeyPlotsConcurrency) {
		if n := viper.GetInt(KeyPlotsConcurrency); n <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", KeyPlotsConcurrency, n))
		}
	}

	if addr := viper.GetString(KeyMetricsAddr); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errors = append(errors, fmt.Sprintf("%s must be host:port, got: %q", KeyMetricsAddr, addr))
		}
	}

	if _, err := Reducer(); err != nil {
		errors = append(errors, err.Error())
	}
	if _, err := Pairing(); err != nil {
		errors = append(errors, err.Error())
	}
	if _, err := IgnoreFilter(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}
