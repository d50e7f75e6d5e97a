package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/scm_backend/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyClientIP      = appctx.ContextKeyClientIP
	ContextKeyChannel       = appctx.ContextKeyChannel
	ContextKeyUserName      = appctx.ContextKeyUserName
)

// Channel values record which surface started a request.
const (
	ChannelHTTP    = "http"
	ChannelConsole = "console"
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func GetClientIPFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyClientIP)
}

func GetChannelFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyChannel)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SetClientIPInContext(ctx context.Context, clientIP string) context.Context {
	return appctx.Set(ctx, ContextKeyClientIP, clientIP)
}

func SetChannelInContext(ctx context.Context, channel string) context.Context {
	return appctx.Set(ctx, ContextKeyChannel, channel)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}
