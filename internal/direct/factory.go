package direct

import (
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/directdict/internal/dicterr"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

// Layout names.
const (
	LayoutDirect           = "direct"
	LayoutComplexKeyDirect = "complex_key_direct"
)

// Definition is a dictionary as configured, before a layout accepts it.
type Definition struct {
	ID        structure.ID
	Layout    string
	Structure *structure.Structure

	// Lifetime is nil unless the definition configures one.
	Lifetime *structure.Lifetime
}

// Creator builds a dictionary for a definition.
type Creator func(def Definition, src source.Source, opts ...Option) (Dictionary, error)

// Factory maps layout names to creators.
//
// Thread-safety: Factory is safe for concurrent use.
type Factory struct {
	mu       sync.RWMutex
	creators map[string]Creator
}

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{creators: make(map[string]Creator)}
}

// Register adds a layout. Registering a name twice is an error.
func (f *Factory) Register(layout string, c Creator) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.creators[layout]; ok {
		return fmt.Errorf("layout %q is already registered", layout)
	}
	f.creators[layout] = c
	return nil
}

// Layouts returns the registered layout names, sorted.
func (f *Factory) Layouts() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create builds a dictionary with the creator registered for def.Layout.
func (f *Factory) Create(def Definition, src source.Source, opts ...Option) (Dictionary, error) {
	f.mu.RLock()
	c, ok := f.creators[def.Layout]
	f.mu.RUnlock()

	if !ok {
		return nil, &dicterr.Error{
			Code:       dicterr.BadArguments,
			Message:    fmt.Sprintf("unknown dictionary layout %q", def.Layout),
			Dictionary: def.ID.FullName(),
			Layout:     def.Layout,
		}
	}
	return c(def, src, opts...)
}

// RegisterLayouts registers "direct" and "complex_key_direct".
func RegisterLayouts(f *Factory) error {
	if err := f.Register(LayoutDirect, createSimple); err != nil {
		return err
	}
	return f.Register(LayoutComplexKeyDirect, createComplexKey)
}

// NewDefaultFactory returns a factory with both direct layouts registered.
func NewDefaultFactory() *Factory {
	f := NewFactory()
	if err := RegisterLayouts(f); err != nil {
		panic(err)
	}
	return f
}

func createSimple(def Definition, src source.Source, opts ...Option) (Dictionary, error) {
	if def.Structure != nil && def.Structure.IsComposite() {
		return nil, layoutError(def, dicterr.UnsupportedMethod, "'key' is not supported for dictionary of layout 'direct'")
	}
	if err := checkDefinition(def); err != nil {
		return nil, err
	}
	return NewSimple(def.ID, def.Structure, src, opts...)
}

func createComplexKey(def Definition, src source.Source, opts ...Option) (Dictionary, error) {
	if def.Structure != nil && def.Structure.ID != nil {
		return nil, layoutError(def, dicterr.UnsupportedMethod, "'id' is not supported for dictionary of layout 'complex_key_direct'")
	}
	if err := checkDefinition(def); err != nil {
		return nil, err
	}
	return NewComplexKey(def.ID, def.Structure, src, opts...)
}

// checkDefinition rejects settings that make no sense without a cache.
func checkDefinition(def Definition) error {
	if def.Structure != nil && def.Structure.HasRange() {
		return layoutError(def, dicterr.BadArguments,
			"elements .structure.range_min and .structure.range_max should be defined only for a dictionary of layout 'range_hashed'")
	}
	if def.Lifetime != nil {
		return layoutError(def, dicterr.BadArguments, "'lifetime' parameter is redundant for the dictionary of layout '%s'", def.Layout)
	}
	return nil
}

func layoutError(def Definition, code dicterr.Code, format string, args ...any) error {
	return dicterr.New(code, format, args...).In(def.ID.FullName(), def.Layout)
}
