package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Names of the built-in schemas declared in methods.yaml.
const (
	MethodRequest    = "method_request"
	OnlineScore      = "online_score"
	ClientsInterests = "clients_interests"
)

//go:embed methods.yaml
var methodsYAML []byte

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Registry holds compiled schemas by name. It is read-only after loading.
type Registry struct {
	specs map[string]*SchemaSpec
}

// Option configures schema compilation.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock sets the clock used by birthday rules.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

type document struct {
	Schemas map[string]*SchemaSpec `yaml:"schemas"`
}

// LoadRegistry parses and compiles a YAML schema document.
func LoadRegistry(data []byte, opts ...Option) (*Registry, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}
	if len(doc.Schemas) == 0 {
		return nil, fmt.Errorf("schema document defines no schemas")
	}

	r := &Registry{specs: make(map[string]*SchemaSpec, len(doc.Schemas))}
	for name, spec := range doc.Schemas {
		if spec == nil {
			return nil, fmt.Errorf("schema %q is empty", name)
		}
		spec.Name = name
		if err := spec.compile(o.now); err != nil {
			return nil, err
		}
		r.specs[name] = spec
	}
	return r, nil
}

// NewRegistry compiles the built-in method schemas.
func NewRegistry(opts ...Option) (*Registry, error) {
	return LoadRegistry(methodsYAML, opts...)
}

// DefaultRegistry returns the built-in schemas compiled with the system clock.
// It panics if the embedded document is invalid.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry()
		if err != nil {
			panic(fmt.Sprintf("schema: invalid built-in schemas: %v", err))
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Get returns the compiled schema with the given name.
func (r *Registry) Get(name string) (*SchemaSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return spec, nil
}

// Validate checks data against the named schema.
func (r *Registry) Validate(name string, data map[string]interface{}) error {
	spec, err := r.Get(name)
	if err != nil {
		return err
	}
	return spec.ValidateData(data)
}

// Names lists the registered schema names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
