package dump

import (
	"fmt"
	"slices"
	"sync"
)

// Built-in kind names.
const (
	KindAction         = "action"
	KindModuleFunction = "moduleFunction"
)

// Kind is the type-specific behavior of one dump type.
type Kind struct {
	// Name is the value of the _type field.
	Name string

	// Describe extracts the call subject from the fields of a dump, e.g.
	// "refreshCatalog" or "ShopModule::listOrders". It rejects dumps that
	// lack the type-specific fields.
	Describe func(data map[string]any) (string, error)

	// FilenamePart returns the filename fragment for a context being
	// written. A non-empty fragment ends with ".". Nil means no fragment.
	FilenamePart func(c *Context) string

	// Redact removes secrets from a context before it is written. Nil means
	// Redactor.RedactContext.
	Redact func(r *Redactor, c *Context)
}

func (k Kind) filenamePart(c *Context) string {
	if k.FilenamePart == nil {
		return ""
	}
	return k.FilenamePart(c)
}

func (k Kind) redact(r *Redactor, c *Context) {
	if k.Redact == nil {
		r.RedactContext(c)
		return
	}
	k.Redact(r, c)
}

// ActionKind describes dumps of action calls.
var ActionKind = Kind{
	Name: KindAction,
	Describe: func(data map[string]any) (string, error) {
		return requiredString(data, "action")
	},
	FilenamePart: func(c *Context) string {
		return contextString(c, "action") + "."
	},
}

// ModuleFunctionKind describes dumps of module function calls.
var ModuleFunctionKind = Kind{
	Name: KindModuleFunction,
	Describe: func(data map[string]any) (string, error) {
		module, err := requiredString(data, "module_name")
		if err != nil {
			return "", err
		}
		function, err := requiredString(data, "function")
		if err != nil {
			return "", err
		}
		return module + "::" + function, nil
	},
	FilenamePart: func(c *Context) string {
		return contextString(c, "module_name") + "::" + contextString(c, "function") + "."
	},
}

func requiredString(data map[string]any, key string) (string, error) {
	s, ok := data[key].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("field %q must be a non-empty string", key)
	}
	return s, nil
}

func contextString(c *Context, key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// Registry maps _type values to kinds. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

// NewRegistry creates a registry holding the built-in kinds.
func NewRegistry() *Registry {
	return &Registry{kinds: map[string]Kind{
		KindAction:         ActionKind,
		KindModuleFunction: ModuleFunctionKind,
	}}
}

// Register adds a kind, replacing any kind of the same name.
func (r *Registry) Register(k Kind) error {
	if k.Name == "" {
		return fmt.Errorf("kind has no name")
	}
	if k.Describe == nil {
		return fmt.Errorf("kind %q has no Describe function", k.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[k.Name] = k
	return nil
}

// Lookup returns the kind registered under name.
func (r *Registry) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered kind names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) mustLookup(name, path string) (Kind, error) {
	k, ok := r.Lookup(name)
	if !ok {
		return Kind{}, &Error{
			Code:    ErrCodeUnknownType,
			Path:    path,
			Message: fmt.Sprintf("unsupported type: '%s'", name),
		}
	}
	return k, nil
}
