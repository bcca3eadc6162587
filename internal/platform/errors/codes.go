// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Participation errors
	CodeNotAuthenticated      Code = "NOT_AUTHENTICATED"
	CodeAlreadyJoined         Code = "ALREADY_JOINED"
	CodeEventNotJoinable      Code = "EVENT_NOT_JOINABLE"
	CodeEventFull             Code = "EVENT_FULL"
	CodeEventNotFound         Code = "EVENT_NOT_FOUND"
	CodeParticipationNotFound Code = "PARTICIPATION_NOT_FOUND"
	CodeRemoteFailure         Code = "REMOTE_FAILURE"
	CodeStarterPackEmail      Code = "STARTER_PACK_EMAIL_REQUIRED"
	CodeStarterPackRedeemed   Code = "STARTER_PACK_ALREADY_REDEEMED"
	CodeSessionTokenInvalid   Code = "SESSION_TOKEN_INVALID"
	CodeSessionTokenExpired   Code = "SESSION_TOKEN_EXPIRED"
	CodePermissionDenied      Code = "PERMISSION_DENIED"

	// Datastore errors
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeUnknownCollection Code = "UNKNOWN_COLLECTION"
	CodeUnknownProcedure  Code = "UNKNOWN_PROCEDURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument,
		CodeUnknownCollection,
		CodeUnknownProcedure,
		CodeStarterPackEmail:
		return codes.InvalidArgument

	// Unauthenticated - missing or unusable session
	case CodeNotAuthenticated,
		CodeSessionTokenInvalid,
		CodeSessionTokenExpired:
		return codes.Unauthenticated

	case CodePermissionDenied:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow operation
	case CodeEventNotJoinable:
		return codes.FailedPrecondition

	case CodeEventFull:
		return codes.ResourceExhausted

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeEventNotFound,
		CodeParticipationNotFound:
		return codes.NotFound

	// AlreadyExists - unique resource constraint
	case CodeAlreadyJoined,
		CodeStarterPackRedeemed:
		return codes.AlreadyExists

	case CodeRemoteFailure:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
