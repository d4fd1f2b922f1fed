package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/taskhive/backend/domain"
	"github.com/taskhive/backend/internal/infrastructure/boltstore"
	"github.com/taskhive/backend/repository"
)

type sessionRepository struct {
	store *boltstore.Store
	ttl   time.Duration
}

// NewSessionRepository creates a bbolt-backed session repository for
// deployments without Redis. Bolt has no key TTLs, so expired sessions
// are evicted lazily on Get.
func NewSessionRepository(store *boltstore.Store, ttl time.Duration) repository.SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionRepository{store: store, ttl: ttl}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.store.Get(boltstore.BucketSessions, id)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}

	if session.IsExpired(time.Now()) {
		_ = r.store.Delete(boltstore.BucketSessions, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if session.ExpiresAt.Before(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.store.Put(boltstore.BucketSessions, session.ID, payload)
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(boltstore.BucketSessions, id)
}
