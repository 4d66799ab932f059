package client

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Directory caches the full profile listing for the session. The cache is
// replaced wholesale on each successful load; on failure the previous
// snapshot stays intact so a flaky refresh never blanks the UI.
type Directory struct {
	mu       sync.RWMutex
	store    Store
	profiles map[string]Profile
	loaded   bool
}

func NewDirectory(store Store) *Directory {
	return &Directory{
		store:    store,
		profiles: make(map[string]Profile),
	}
}

// LoadAll fetches every profile and replaces the cache. On error the cached
// snapshot is kept and the error is returned after logging a warning.
func (d *Directory) LoadAll(ctx context.Context) error {
	profiles, err := d.store.ListProfiles(ctx)
	if err != nil {
		logrus.WithError(err).Warn("directory load failed, keeping cached profiles")
		return err
	}

	next := make(map[string]Profile, len(profiles))
	for _, p := range profiles {
		next[p.ID] = p
	}

	d.mu.Lock()
	d.profiles = next
	d.loaded = true
	d.mu.Unlock()
	return nil
}

// All returns the cached profiles sorted by name for stable listing.
func (d *Directory) All() []Profile {
	d.mu.RLock()
	out := make([]Profile, 0, len(d.profiles))
	for _, p := range d.profiles {
		out = append(out, p)
	}
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Lookup resolves one id from the cache, degrading to a placeholder when the
// id is unknown.
func (d *Directory) Lookup(id string) Profile {
	d.mu.RLock()
	p, ok := d.profiles[id]
	d.mu.RUnlock()
	if !ok {
		return PlaceholderProfile(id)
	}
	return p
}

// Loaded reports whether at least one LoadAll has succeeded.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}
