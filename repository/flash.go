package repository

import "context"

// FlashRepository stores one-time status messages keyed by session id.
// Pop returns the pending messages and removes them in the same call.
type FlashRepository interface {
	Push(ctx context.Context, sessionID, message string) error
	Pop(ctx context.Context, sessionID string) ([]string, error)
}
