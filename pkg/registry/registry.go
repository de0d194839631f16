// Package registry maps declared spatial column type names to column specs.
//
// Registration is expected at start-up; lookups are safe for concurrent use
// and never block each other.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"pg-spatial/pkg/column"
)

// ErrUnknownType is returned by Resolve for names that were never registered.
var ErrUnknownType = errors.New("unknown spatial type")

// DefaultSRID is the SRID of built-in entries: 0 accepts any SRID.
const DefaultSRID = 0

// Options are the per-type settings recognized by Register.
type Options struct {
	Geographic bool `koanf:"geographic" json:"geographic"`
	SRID       int  `koanf:"srid" json:"srid"`
	HasZ       bool `koanf:"has_z" json:"has_z"`
	HasM       bool `koanf:"has_m" json:"has_m"`
}

// builtins mirrors the spatial column options a PostGIS adapter declares.
var builtins = map[string]Options{
	"geography":           {Geographic: true},
	"geometry":            {},
	"geometry_collection": {},
	"line_string":         {},
	"multi_line_string":   {},
	"multi_point":         {},
	"multi_polygon":       {},
	"point":               {},
	"polygon":             {},
	"spatial":             {},
	"st_point":            {},
	"st_polygon":          {},
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]Options
	logger  *slog.Logger
}

// New returns a registry preloaded with the built-in types.
func New() *Registry {
	r := &Registry{
		entries: make(map[string]Options, len(builtins)),
		logger:  slog.Default(),
	}
	for name, opts := range builtins {
		r.entries[name] = opts
	}
	return r
}

// WithLogger sets the logger used to report registrations. A nil logger
// means slog.Default().
func (r *Registry) WithLogger(l *slog.Logger) *Registry {
	if l == nil {
		l = slog.Default()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
	return r
}

// Register adds or replaces a type. Re-registering a name overwrites it.
func (r *Registry) Register(name string, opts Options) error {
	if name == "" {
		return fmt.Errorf("register spatial type: empty name")
	}

	r.mu.Lock()
	_, replaced := r.entries[name]
	r.entries[name] = opts
	logger := r.logger
	r.mu.Unlock()

	logger.Debug("registered spatial type",
		"name", name,
		"geographic", opts.Geographic,
		"srid", opts.SRID,
		"replaced", replaced,
	)
	return nil
}

// Resolve returns the column spec for a registered type name.
func (r *Registry) Resolve(name string) (column.Spec, error) {
	r.mu.RLock()
	opts, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return column.Spec{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}

	return column.Spec{
		TypeName:   name,
		Geographic: opts.Geographic,
		SRID:       opts.SRID,
		HasZ:       opts.HasZ,
		HasM:       opts.HasM,
	}, nil
}

// Names lists the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New()
	})
	return defaultRegistry
}

// Register adds a type to the default registry.
func Register(name string, opts Options) error {
	return Default().Register(name, opts)
}

// Resolve looks a type up in the default registry.
func Resolve(name string) (column.Spec, error) {
	return Default().Resolve(name)
}
