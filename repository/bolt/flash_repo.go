package bolt

import (
	"context"
	"encoding/json"

	"github.com/taskhive/backend/internal/infrastructure/boltstore"
	"github.com/taskhive/backend/repository"
)

type flashRepository struct {
	store *boltstore.Store
}

// NewFlashRepository creates a bbolt-backed flash message store.
// Messages for a session are kept as a JSON-encoded slice under one key
// so Push and Pop stay atomic within a single bolt transaction.
func NewFlashRepository(store *boltstore.Store) repository.FlashRepository {
	return &flashRepository{store: store}
}

func (r *flashRepository) Push(ctx context.Context, sessionID, message string) error {
	return r.store.Swap(boltstore.BucketFlash, sessionID, func(current []byte) ([]byte, error) {
		var messages []string
		if current != nil {
			if err := json.Unmarshal(current, &messages); err != nil {
				messages = nil
			}
		}
		messages = append(messages, message)
		return json.Marshal(messages)
	})
}

func (r *flashRepository) Pop(ctx context.Context, sessionID string) ([]string, error) {
	var messages []string
	err := r.store.Swap(boltstore.BucketFlash, sessionID, func(current []byte) ([]byte, error) {
		if current != nil {
			if err := json.Unmarshal(current, &messages); err != nil {
				messages = nil
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
