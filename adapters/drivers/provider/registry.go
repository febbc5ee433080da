package providerdrv

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kompox/cloudmeta/domain/model"
)

// OpenFunc opens a driver for provider authenticating as identity.
type OpenFunc func(ctx context.Context, provider *model.Provider, identity *model.Identity) (Driver, error)

// AdminDriverFactory builds the elevated driver used by fleet operations.
type AdminDriverFactory interface {
	CreateAdminDriver(ctx context.Context, base Driver, settings *model.AdminSettings, creds map[string]string) (Driver, error)
}

// AdminDriverFactoryFunc adapts a function to AdminDriverFactory.
type AdminDriverFactoryFunc func(ctx context.Context, base Driver, settings *model.AdminSettings, creds map[string]string) (Driver, error)

func (f AdminDriverFactoryFunc) CreateAdminDriver(ctx context.Context, base Driver, settings *model.AdminSettings, creds map[string]string) (Driver, error) {
	return f(ctx, base, settings, creds)
}

// Variant is everything a provider kind must supply.
type Variant struct {
	Open  OpenFunc
	Admin AdminDriverFactory
}

var (
	registryMu sync.RWMutex
	registry   = map[model.ProviderKind]Variant{}
)

// Register makes a driver variant available for kind. Drivers should call
// this from their init() function. It panics when either function is missing.
func Register(kind model.ProviderKind, v Variant) {
	if v.Open == nil || v.Admin == nil {
		panic(fmt.Sprintf("providerdrv: incomplete variant for %q", kind))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = v
}

// Lookup returns the registered variant for kind.
func Lookup(kind model.ProviderKind) (Variant, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	v, ok := registry[kind]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q (no driver registered)", model.ErrUnknownProviderKind, kind)
	}
	return v, nil
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []model.ProviderKind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]model.ProviderKind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
