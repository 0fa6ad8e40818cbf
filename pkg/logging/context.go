package logging

import (
	"context"
)

type contextKey string

const (
	RunIDKey       = "run_id"
	CommandKey     = "command"
	URLKey         = "url"
	DestinationKey = "destination"
)

func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, contextKey(RunIDKey), runID)
}

func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, contextKey(CommandKey), command)
}

func WithURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, contextKey(URLKey), url)
}

func WithDestination(ctx context.Context, destination string) context.Context {
	return context.WithValue(ctx, contextKey(DestinationKey), destination)
}

func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

func GetCommand(ctx context.Context) string {
	return getString(ctx, CommandKey)
}

func GetURL(ctx context.Context) string {
	return getString(ctx, URLKey)
}

func GetDestination(ctx context.Context) string {
	return getString(ctx, DestinationKey)
}

func getString(ctx context.Context, key string) string {
	if v, ok := ctx.Value(contextKey(key)).(string); ok {
		return v
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	for _, key := range []string{RunIDKey, CommandKey, URLKey, DestinationKey} {
		if v := getString(ctx, key); v != "" {
			fields = append(fields, key, v)
		}
	}

	return fields
}
