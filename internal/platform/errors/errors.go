package errors

import (
	"maps"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// Domain tags ErrorInfo details produced by cardclash services. FromGRPC
// only trusts reasons carrying this domain.
const Domain = "github.com/louisbranch/cardclash"

// Error carries a Code through the client, the datastore and the wire.
//
// Message is the internal text used in logs; users see the catalog message
// for Code, rendered with Metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func build(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata, Cause: cause}
}

// New returns an error with a code and internal message.
func New(code Code, message string) *Error {
	return build(code, message, nil, nil)
}

// WithMetadata returns an error whose user message is templated from
// metadata, e.g. {"EventID": "e1"}.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return build(code, message, metadata, nil)
}

// Wrap returns an error that keeps cause in the chain.
func Wrap(code Code, message string, cause error) *Error {
	return build(code, message, nil, cause)
}

// WrapWithMetadata combines WithMetadata and Wrap.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return build(code, message, metadata, cause)
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so errors.Is(err,
// New(CodeEventFull, "")) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ToGRPCStatus encodes e as a status whose message is the internal text.
// The reason and metadata travel in ErrorInfo and userMessage in
// LocalizedMessage. Details that fail to attach are dropped.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	base := status.New(e.Code.GRPCCode(), e.Message)
	withDetails, err := base.WithDetails(
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: maps.Clone(e.Metadata),
		},
		&errdetails.LocalizedMessage{Locale: locale, Message: userMessage},
	)
	if err != nil {
		return base.Err()
	}
	return withDetails.Err()
}
