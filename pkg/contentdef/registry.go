package contentdef

import "sync"

// Registry is an in-memory ProviderRegistry. Drivers register their
// code-declared parts and field types at startup; listings return providers in
// registration order.
type Registry struct {
	mu     sync.RWMutex
	parts  []PartProvider
	fields []FieldProvider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterPartProvider adds a part provider to the registry
func (r *Registry) RegisterPartProvider(p PartProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts = append(r.parts, p)
}

// RegisterFieldProvider adds a field provider to the registry
func (r *Registry) RegisterFieldProvider(f FieldProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = append(r.fields, f)
}

// ListPartProviders returns a snapshot of the registered part providers
func (r *Registry) ListPartProviders() []PartProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PartProvider, len(r.parts))
	copy(out, r.parts)
	return out
}

// ListFieldProviders returns a snapshot of the registered field providers
func (r *Registry) ListFieldProviders() []FieldProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FieldProvider, len(r.fields))
	copy(out, r.fields)
	return out
}

// PartProviderFunc adapts a function to the PartProvider interface
type PartProviderFunc func() PartInfo

func (f PartProviderFunc) GetPartInfo() PartInfo { return f() }

// FieldProviderFunc adapts a function to the FieldProvider interface
type FieldProviderFunc func() *FieldTypeInfo

func (f FieldProviderFunc) GetFieldInfo() *FieldTypeInfo { return f() }

// StaticPart returns a provider exposing a fixed code-declared part
func StaticPart(info PartInfo) PartProvider {
	return PartProviderFunc(func() PartInfo { return info })
}

// StaticField returns a provider exposing a fixed field type
func StaticField(info FieldTypeInfo) FieldProvider {
	return FieldProviderFunc(func() *FieldTypeInfo {
		out := info
		return &out
	})
}
