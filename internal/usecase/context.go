package usecase

import (
	"context"

	"keyskeeper-backend/internal/domain"
	"keyskeeper-backend/pkg/apperror"
)

// principalFromCtx reads the identity placed on the context by the auth
// middleware. Missing keys fail closed.
func principalFromCtx(ctx context.Context) (authID string, role domain.Role, err error) {
	id, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || id == "" {
		return "", "", apperror.Unauthorized("User not authenticated")
	}
	r, _ := ctx.Value(domain.KeyUserRole).(string)
	return id, domain.Role(r), nil
}

// requireRole fails with Forbidden unless the context role is in the allowed
// set. The error payload carries the caller's landing route so the client
// can send them to their own dashboard instead of a dead end.
func requireRole(ctx context.Context, allowed ...domain.Role) (authID string, role domain.Role, err error) {
	authID, role, err = principalFromCtx(ctx)
	if err != nil {
		return "", "", err
	}
	for _, a := range allowed {
		if role == a {
			return authID, role, nil
		}
	}
	return "", "", apperror.Forbidden("Your role does not have access to this action")
}
