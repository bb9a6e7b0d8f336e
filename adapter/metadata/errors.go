package metadata

import (
	"errors"
	"fmt"
)

var errNotHTML = errors.New("response is not html")

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }
