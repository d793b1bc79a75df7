package entity

import "context"

// Logger specifies a contextual, structured logger.
//
// Collaborator invocations, filter results and pipeline reads are logged through it.
type Logger interface {
	Info(ctx context.Context, msg string, kv ...any)
	Error(ctx context.Context, msg string, err error, kv ...any)
}
