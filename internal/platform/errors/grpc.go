package errors

import (
	"context"
	"errors"
	"maps"

	"github.com/louisbranch/cardclash/internal/platform/errors/i18n"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "en-US"

// HandleError converts domain errors to gRPC status for client responses.
// It formats the user-facing message using the i18n catalog for the given locale,
// defaulting to en-US if the locale is empty.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}

	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		userMsg := catalog.Format(string(appErr.Code), appErr.Metadata)
		return appErr.ToGRPCStatus(catalog.Locale(), userMsg)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	// Unknown error - return internal with generic message
	return status.Error(codes.Internal, "an unexpected error occurred")
}

// FromGRPC rebuilds a domain error from a gRPC status produced by
// HandleError. Statuses without cardclash error details are classified by
// their gRPC code. The original error is kept as the cause.
func FromGRPC(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	st, ok := status.FromError(err)
	if !ok {
		return Wrap(CodeRemoteFailure, err.Error(), err)
	}

	out := &Error{
		Code:    codeFromGRPC(st.Code()),
		Message: st.Message(),
		Cause:   err,
	}
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			if d.GetDomain() != Domain {
				continue
			}
			out.Code = Code(d.GetReason())
			if len(d.GetMetadata()) > 0 {
				out.Metadata = maps.Clone(d.GetMetadata())
			}
		}
	}
	return out
}

// LocalizedMessage returns the user-facing message attached to a gRPC
// status error, if any.
func LocalizedMessage(err error) (string, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.LocalizedMessage); ok && d.GetMessage() != "" {
			return d.GetMessage(), true
		}
	}
	return "", false
}

// UserMessage formats the localized message for err. Domain errors use the
// catalog template for their code; anything else is rendered as UNKNOWN.
func UserMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	if locale == "" {
		locale = DefaultLocale
	}
	catalog := i18n.GetCatalog(locale)
	var appErr *Error
	if errors.As(err, &appErr) {
		return catalog.Format(string(appErr.Code), appErr.Metadata)
	}
	return catalog.Format(string(CodeUnknown), nil)
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}

func codeFromGRPC(c codes.Code) Code {
	switch c {
	case codes.Unauthenticated:
		return CodeNotAuthenticated
	case codes.PermissionDenied:
		return CodePermissionDenied
	case codes.NotFound:
		return CodeNotFound
	case codes.InvalidArgument:
		return CodeInvalidArgument
	default:
		return CodeRemoteFailure
	}
}
