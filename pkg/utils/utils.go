package utils

import (
	"time"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var appLocation = time.UTC

// InitTimezone initializes the application timezone from config
func InitTimezone() error {
	timezone := config.Get().App.Timezone
	if timezone == "" {
		logger.Warn().Msg("No timezone configured, using UTC")
		appLocation = time.UTC
		return nil
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Error().Err(err).Str("timezone", timezone).Msg("Failed to load timezone, using UTC")
		appLocation = time.UTC
		return err
	}

	appLocation = loc
	logger.Debug().Str("timezone", timezone).Msg("Timezone initialized")
	return nil
}

// Now returns current time in application timezone
func Now() time.Time {
	return time.Now().In(appLocation)
}

// FormatTime formats t in the application timezone, RFC3339 with nanoseconds
func FormatTime(t time.Time) string {
	return t.In(appLocation).Format(time.RFC3339Nano)
}

// GetLocation returns the current application location
func GetLocation() *time.Location {
	return appLocation
}
