package memory

import (
	"time"

	"purity-vision-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live sessions in an expiring in-memory cache. The
// TTL doubles as the idle timeout: every Save refreshes it, and the janitor
// purges sessions nobody touched. Deleting an id only removes it from the
// cache; goroutines holding the *Session pointer may finish their current
// frame (reference semantics).
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(idleTTL time.Duration) *SessionRepository {
	c := cache.New(idleTTL, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *entity.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*entity.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
