package validation

import (
	"fmt"
	"time"

	"github.com/fbz-tec/vexport/core/formatters"
)

// ValidateTimeZone checks that timezone names an IANA location.
// An empty value is valid and means the local time zone.
func ValidateTimeZone(timezone string) error {
	if timezone == "" {
		return nil
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return nil
}

// ValidateTimeFormat checks that a user time pattern (yyyy-MM-dd HH:mm:ss)
// round-trips through time.Format/time.Parse. An empty value is valid and
// keeps the driver's text rendering of time values.
func ValidateTimeFormat(format string) error {
	if format == "" {
		return nil
	}

	if !formatters.HasTimeTokens(format) {
		return fmt.Errorf("invalid time format %q: no date or time tokens", format)
	}
	layout := formatters.ConvertUserTimeFormat(format)

	ref := time.Date(2006, 1, 2, 15, 4, 5, 123456789, time.UTC)
	if _, err := time.Parse(layout, ref.Format(layout)); err != nil {
		return fmt.Errorf("invalid time format %q: %w", format, err)
	}
	return nil
}
