package application

import "errors"

var (
	// ErrInvalidPeriod is returned for a period outside {today, day, week}.
	ErrInvalidPeriod = errors.New("unsupported period")

	// ErrInvalidBounds is returned when the day or week bound cannot be
	// parsed.
	ErrInvalidBounds = errors.New("invalid period bounds")
)
