package providerdrv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kompox/cloudmeta/domain/model"
	"github.com/kompox/cloudmeta/internal/logging"
)

// Meta layers administrative operations over a caller's driver. It holds the
// caller's driver, the provider and its options, the admin settings and the
// kind's admin factory. The admin driver is created on first use.
type Meta struct {
	driver   Driver
	settings *model.AdminSettings
	factory  AdminDriverFactory

	mu    sync.Mutex
	admin Driver
}

func newMeta(driver Driver, settings *model.AdminSettings, factory AdminDriverFactory, admin Driver) *Meta {
	if settings == nil {
		settings = &model.AdminSettings{}
	}
	return &Meta{driver: driver, settings: settings, factory: factory, admin: admin}
}

// Driver returns the caller's (non-admin) driver.
func (m *Meta) Driver() Driver { return m.driver }

// Provider returns the provider of the caller's driver.
func (m *Meta) Provider() *model.Provider { return m.driver.Provider() }

// Identity returns the caller's identity.
func (m *Meta) Identity() *model.Identity { return m.driver.Identity() }

// User returns the caller's account name.
func (m *Meta) User() string { return m.driver.Identity().User() }

// ProviderOptions returns a copy of the provider connection options.
func (m *Meta) ProviderOptions() map[string]string {
	out := map[string]string{}
	if p := m.driver.Provider(); p != nil {
		for k, v := range p.Options {
			out[k] = v
		}
	}
	return out
}

// AdminDriver returns the admin driver, creating it with the default admin
// credentials on first call. A failed creation is not cached.
func (m *Meta) AdminDriver(ctx context.Context) (Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.admin != nil {
		return m.admin, nil
	}
	admin, err := m.CreateAdminDriver(ctx, nil)
	if err != nil {
		return nil, err
	}
	m.admin = admin
	return admin, nil
}

// CreateAdminDriver builds a new admin driver from creds merged over the
// admin settings of the provider kind. It does not replace the cached one.
func (m *Meta) CreateAdminDriver(ctx context.Context, creds map[string]string) (d Driver, err error) {
	ctx, cleanup := logging.Span(ctx, "meta", "CreateAdminDriver")
	defer func() { cleanup(err) }()

	logging.FromContext(ctx).Debug(ctx, "creating admin driver", "provider", m.Provider().Name, "kind", m.driver.Kind())
	d, err = m.factory.CreateAdminDriver(ctx, m.driver, m.settings, creds)
	if err != nil {
		return nil, fmt.Errorf("create admin driver for %s: %w", m.Provider().Name, err)
	}
	return d, nil
}

// MetaInfo is the printable summary of a Meta.
type MetaInfo struct {
	Driver   model.ProviderKind `json:"driver"`
	Identity string             `json:"identity"`
	Provider string             `json:"provider"`
}

// Info summarizes the meta without exposing secrets.
func (m *Meta) Info() MetaInfo {
	return MetaInfo{Driver: m.driver.Kind(), Identity: m.User(), Provider: m.Provider().Name}
}

func (m *Meta) MarshalJSON() ([]byte, error) { return json.Marshal(m.Info()) }

func (m *Meta) String() string {
	i := m.Info()
	return fmt.Sprintf("Meta{driver=%s provider=%s identity=%s}", i.Driver, i.Provider, i.Identity)
}
