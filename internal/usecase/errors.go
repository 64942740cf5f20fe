package usecase

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrDataAccess marks a failed call to the remote data source.
	ErrDataAccess = errors.New("data access failed")
	// ErrScript marks a single strategy that failed to compile or run.
	ErrScript = errors.New("strategy script failed")
	// ErrConfig aborts a strategy batch, e.g. an unreadable strategies directory.
	ErrConfig            = errors.New("configuration error")
	ErrStore             = errors.New("persistent store failed")
	ErrRosterUnavailable = errors.New("roster unavailable")
)

func wrapInvalid(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidInput)
}
