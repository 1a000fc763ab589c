package analysis

import "errors"

var (
	// ErrFormat is returned for a malformed match date.
	ErrFormat = errors.New("analysis: invalid date format")
	// ErrInvalidMetric is returned for an unrecognised metric selector.
	ErrInvalidMetric = errors.New("analysis: metric must be 'kick-off' or 'auc'")
	// ErrInsufficientData is returned when a curve has fewer than two samples.
	ErrInsufficientData = errors.New("analysis: insufficient data")
	// ErrUnknownCountry is returned for a country outside the baseline groups.
	ErrUnknownCountry = errors.New("analysis: unknown country")
	// ErrInvalidReferenceHour is returned for a kick-off hour outside 0-23.
	ErrInvalidReferenceHour = errors.New("analysis: reference hour must be between 0 and 23")
	// ErrDuplicateSample is returned when a pivot cell is sampled twice.
	ErrDuplicateSample = errors.New("analysis: duplicate sample")
)
