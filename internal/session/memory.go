package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process, expiring them after ttl of inactivity.
type MemoryStore struct {
	cache    *cache.Cache
	ttl      time.Duration
	greeting string
	mu       sync.Mutex
}

func NewMemoryStore(ttl time.Duration, greeting string) *MemoryStore {
	return &MemoryStore{
		cache:    cache.New(ttl, 10*time.Minute),
		ttl:      ttl,
		greeting: greeting,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (State, error) {
	if v, ok := m.cache.Get(id); ok {
		return v.(State).clone(), nil
	}
	return NewState(id, m.greeting), nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, fn func(*State) error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, _ := m.Load(ctx, id)
	if err := fn(&st); err != nil {
		return State{}, err
	}
	st.ID = id
	st.UpdatedAt = time.Now().UTC()
	m.cache.Set(id, st.clone(), m.ttl)
	return st, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

// Len reports how many live sessions are held.
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}
