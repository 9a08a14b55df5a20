package jikan

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when neither the seasonal nor the catalog listing had items.
var ErrNoData = errors.New("jikan: no data")

// StatusError reports a non-2xx answer from the catalog.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jikan: status %d body=%q", e.Code, e.Body)
}

// AsStatusError unwraps err into a *StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
