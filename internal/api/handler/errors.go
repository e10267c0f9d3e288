package handler

import (
	"net/http"

	"github.com/kpane/banktally/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewNotBankerError creates a forbidden error for banker-only operations
func NewNotBankerError() error {
	return apierr.NewNotBankerError()
}
