package api

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/namekeeper/internal/types"
)

// Error mapping:
//   malformed requests, rule configuration, oversized input,
//   filter/custom patterns exceeding the match timeout      -> INVALID_ARGUMENT
//   no rules on request or server                           -> FAILED_PRECONDITION
//   request timeout or cancellation                         -> DEADLINE_EXCEEDED / CANCELLED
//   run recording                                           -> UNAVAILABLE
// Auth errors are mapped by the auth interceptor.

var errNoRules = errors.New("request carries no rules and the server has no default rule file")

// errUnavailable marks a storage failure.
type errUnavailable struct{ err error }

func (e errUnavailable) Error() string { return "database error: " + e.err.Error() }
func (e errUnavailable) Unwrap() error { return e.err }

func statusFor(ctx context.Context, err error) error {
	var cfgErr *types.ConfigError
	var unavailable errUnavailable
	switch {
	case ctx.Err() != nil:
		return status.FromContextError(ctx.Err()).Err()
	case errors.Is(err, errNoRules):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &unavailable):
		return status.Error(codes.Unavailable, err.Error())
	case errors.As(err, &cfgErr),
		errors.Is(err, errBadRequest),
		errors.Is(err, types.ErrTooManyRules),
		errors.Is(err, types.ErrUnknownSelector),
		errors.Is(err, types.ErrUnknownModifier),
		errors.Is(err, types.ErrUnknownType),
		errors.Is(err, types.ErrUnsupportedLanguage),
		errors.Is(err, types.ErrSourceTooLarge),
		errors.Is(err, types.ErrNameTooLong),
		errors.Is(err, types.ErrRegexTimeout):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
