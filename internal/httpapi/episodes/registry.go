// README: In-process episode registry, the HTTP layer's analogue of the
// teacher's Store-over-a-map pattern generalized from persisted entities to
// live *agentenv.Env handles — an episode has no meaning outside the
// process that is stepping it, so there is nothing here for Postgres/Redis
// to back.
package episodes

import (
	"sync"

	"deliverysim/internal/agentenv"
	"deliverysim/internal/types"
)

// Registry tracks the live Env for every episode created via the control
// API (§4.10 "POST /api/episodes").
type Registry struct {
	mu       sync.Mutex
	episodes map[types.ID]*agentenv.Env
	ids      *types.Counter
}

func NewRegistry() *Registry {
	return &Registry{
		episodes: make(map[types.ID]*agentenv.Env),
		ids:      types.NewCounter("episode"),
	}
}

// Create mints a fresh episode id and registers a new, not-yet-reset Env
// for it.
func (r *Registry) Create() (types.ID, *agentenv.Env) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.ids.Next()
	env := agentenv.New()
	r.episodes[id] = env
	return id, env
}

// Get looks up the Env for an episode id.
func (r *Registry) Get(id types.ID) (*agentenv.Env, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	env, ok := r.episodes[id]
	return env, ok
}

// Close releases the episode's kernel resources and removes it from the
// registry.
func (r *Registry) Close(id types.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if env, ok := r.episodes[id]; ok {
		env.Close()
		delete(r.episodes, id)
	}
}
