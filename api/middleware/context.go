package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxParentID    contextKey = "parent_id"
	ctxParentEmail contextKey = "parent_email"
	ctxClientIP    contextKey = "client_ip"
)

func ParentIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxParentID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func ParentEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxParentEmail).(string); ok {
		return v
	}
	return ""
}

func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClientIP).(string); ok {
		return v
	}
	return ""
}

// WithParentID injects the authenticated parent into the context.
func WithParentID(ctx context.Context, parentID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxParentID, parentID)
}

// WithClientIP injects the resolved client address into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientIP, ip)
}
