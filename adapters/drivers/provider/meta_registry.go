package providerdrv

import (
	"context"
	"sort"
	"sync"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/naming"
)

// MetaRegistry caches at most one Meta per (provider name, identity fingerprint).
type MetaRegistry struct {
	settings *model.AdminSettings

	mu    sync.Mutex
	metas map[string]*Meta
}

// NewMetaRegistry creates an empty registry using settings for admin drivers.
func NewMetaRegistry(settings *model.AdminSettings) *MetaRegistry {
	if settings == nil {
		settings = &model.AdminSettings{}
	}
	return &MetaRegistry{settings: settings, metas: map[string]*Meta{}}
}

func metaKey(d Driver) string {
	return naming.MetaKey(d.Provider().Name, d.Identity().Fingerprint())
}

// Get returns the cached Meta for the driver's provider and identity,
// creating one when absent.
func (r *MetaRegistry) Get(ctx context.Context, driver Driver) (*Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.metas[metaKey(driver)]; ok {
		return m, nil
	}
	return r.createLocked(driver, nil)
}

// Create builds a Meta for driver, replacing any cached entry. When admin is
// non-nil it is used as the admin driver instead of creating one lazily.
func (r *MetaRegistry) Create(ctx context.Context, driver Driver, admin Driver) (*Meta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(driver, admin)
}

func (r *MetaRegistry) createLocked(driver Driver, admin Driver) (*Meta, error) {
	v, err := Lookup(driver.Kind())
	if err != nil {
		return nil, err
	}
	m := newMeta(driver, r.settings, v.Admin, admin)
	r.metas[metaKey(driver)] = m
	return m, nil
}

// Reset drops every cached Meta.
func (r *MetaRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas = map[string]*Meta{}
}

// Metas returns a snapshot of the cached metas ordered by key.
func (r *MetaRegistry) Metas() []*Meta {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.metas))
	for k := range r.metas {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Meta, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.metas[k])
	}
	return out
}
