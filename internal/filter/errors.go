package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidFilterField is the only error kind returned by this package.
// Callers test for it with errors.Is and translate it to a bad request.
var ErrInvalidFilterField = errors.New("invalid filter field")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidFilterField}, args...)...)
}
