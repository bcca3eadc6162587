package client

import (
	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
)

// Result is the outcome of a user intent. A zero Result is a success.
type Result struct {
	// Err is nil on success.
	Err *apperrors.Error
	// Message is the localized, user-displayable failure text.
	Message string
}

// OK reports whether the intent succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Code returns the failure code, or the empty code on success.
func (r Result) Code() apperrors.Code {
	if r.Err == nil {
		return ""
	}
	return r.Err.Code
}
