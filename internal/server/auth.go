package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/outliner/internal/config"
)

// UserIDHeader carries the caller's identity. Authentication happens in front of the server.
const UserIDHeader = "X-User-Id"

type userIDKey struct{}

var errMissingUserID = errors.New("missing or invalid " + UserIDHeader + " header")

// NewUserInterceptor rejects requests without a usable user id and stores it in the context.
func NewUserInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}
			userID := req.Header().Get(UserIDHeader)
			if !config.KeySafe(userID) {
				return nil, connect.NewError(connect.CodeUnauthenticated, errMissingUserID)
			}
			return next(context.WithValue(ctx, userIDKey{}, userID), req)
		}
	}
}

func userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok || userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errMissingUserID)
	}
	return userID, nil
}
