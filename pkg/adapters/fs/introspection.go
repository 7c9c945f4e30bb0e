package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path      string     `json:"path"`
	SystemDir string     `json:"system_dir"`
	CacheSize int        `json:"cache_size"`
	Gitless   bool       `json:"gitless"`
	ReadOnly  bool       `json:"read_only"`
	LastList  *time.Time `json:"last_list,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:      r.Path,
		SystemDir: r.config.SystemDir,
		CacheSize: r.cache.Len(),
		Gitless:   r.config.Gitless,
		ReadOnly:  r.config.ReadOnly,
		LastList:  r.lastList,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
