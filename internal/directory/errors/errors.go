package errors

import (
	"fmt"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrLoading         = fmt.Errorf("directory is still loading")
	ErrNoSession       = fmt.Errorf("session not found")
	ErrNotComposing    = fmt.Errorf("no form is open")
	ErrNoPendingDelete = fmt.Errorf("no delete is pending")
)
