package utils

import (
	"context"

	"equiptrack/pkg/contextkeys"
	apperrors "equiptrack/pkg/errors"
)

// Actor is the session identity the auth middleware put into the context.
type Actor struct {
	ID   string
	Name string
	Role string
	Base string
}

func GetActorFromCtx(ctx context.Context) (Actor, error) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || id == "" {
		return Actor{}, apperrors.ErrUserIDNotFoundInContext
	}

	name, _ := ctx.Value(contextkeys.UserNameKey).(string)
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	base, _ := ctx.Value(contextkeys.UserBaseKey).(string)

	return Actor{ID: id, Name: name, Role: role, Base: base}, nil
}

func GetUserIDFromCtx(ctx context.Context) (string, error) {
	id, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || id == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return id, nil
}
