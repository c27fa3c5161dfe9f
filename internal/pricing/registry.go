package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownHandler is returned when a spec names a handler that was never
// registered.
var ErrUnknownHandler = errors.New("pricing: unknown handler")

// HandlerSpec is one entry of the ordered chain configuration: a registered
// handler name plus its optional textual argument.
type HandlerSpec struct {
	Name string
	Arg  string
}

// Factory constructs a handler from its spec argument.
type Factory func(arg string) (Handler, error)

// Registry maps handler names to factories. The chain is built once from an
// ordered spec list at startup (or on explicit rebuild); there is no runtime
// handler discovery.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry returns a registry with the built-in handlers wired:
// base (price lookup via source), tax:<bps>, discount:<bps>, guard and
// round:<places>.
func NewDefaultRegistry(source PriceSource) *Registry {
	r := NewRegistry()
	r.Register("base", func(string) (Handler, error) {
		return BaseLookup{Source: source}, nil
	})
	r.Register("tax", func(arg string) (Handler, error) {
		bps, err := parseIntArg("tax", arg)
		if err != nil {
			return nil, err
		}
		return Tax{RateBps: bps}, nil
	})
	r.Register("discount", func(arg string) (Handler, error) {
		bps, err := parseIntArg("discount", arg)
		if err != nil {
			return nil, err
		}
		return Discount{PercentBps: bps}, nil
	})
	r.Register("guard", func(string) (Handler, error) {
		return CurrencyGuard{}, nil
	})
	r.Register("round", func(arg string) (Handler, error) {
		places, err := parseIntArg("round", arg)
		if err != nil {
			return nil, err
		}
		return Rounder{Places: int32(places)}, nil
	})
	return r
}

// Register adds or replaces a factory under the given name.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[strings.ToLower(strings.TrimSpace(name))] = factory
}

// Build constructs the ordered handler list for the given specs. Order is
// preserved exactly; an unknown name or a factory failure aborts the build.
func (r *Registry) Build(specs []HandlerSpec) ([]Handler, error) {
	handlers := make([]Handler, 0, len(specs))
	for _, spec := range specs {
		name := strings.ToLower(strings.TrimSpace(spec.Name))
		factory, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, spec.Name)
		}
		h, err := factory(spec.Arg)
		if err != nil {
			return nil, fmt.Errorf("pricing: build %q: %w", spec.Name, err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// ParseSpecs converts a comma-separated configuration string such as
// "base,tax:900,discount:1000,round:2" into an ordered spec list.
func ParseSpecs(raw string) []HandlerSpec {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	specs := make([]HandlerSpec, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		name, arg, _ := strings.Cut(trimmed, ":")
		specs = append(specs, HandlerSpec{Name: strings.TrimSpace(name), Arg: strings.TrimSpace(arg)})
	}
	return specs
}

func parseIntArg(name, arg string) (int64, error) {
	if strings.TrimSpace(arg) == "" {
		return 0, fmt.Errorf("handler %q requires a numeric argument", name)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("handler %q: invalid argument %q", name, arg)
	}
	return v, nil
}
