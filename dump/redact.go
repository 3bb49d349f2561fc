package dump

import (
	"slices"

	"github.com/roach88/apiwrapper/internal/ir"
)

// SecretPlaceholder replaces every secret value in a dump.
const SecretPlaceholder = "(...SECRET...)"

// DefaultSecretKeys are the object keys whose values are never persisted.
var DefaultSecretKeys = []string{"password", "secret", "apikey", "hash", "pass"}

// Redactor replaces the values of secret keys with SecretPlaceholder.
// Keys match exactly and case-sensitively, at any depth. Only object keys
// match; list positions never do.
type Redactor struct {
	keys []string
}

// NewRedactor creates a Redactor for keys, or for DefaultSecretKeys when no
// keys are given.
func NewRedactor(keys ...string) *Redactor {
	if len(keys) == 0 {
		keys = DefaultSecretKeys
	}
	return &Redactor{keys: slices.Clone(keys)}
}

// Keys returns the secret keys.
func (r *Redactor) Keys() []string {
	return slices.Clone(r.keys)
}

// IsSecret reports whether key is a secret key.
func (r *Redactor) IsSecret(key string) bool {
	return slices.Contains(r.keys, key)
}

// Redact returns a deep copy of v with secret values replaced. v itself is
// never modified.
//
// Typed values (structs, typed maps and slices) are first converted to
// their JSON form, so a struct field tagged `json:"password"` is a secret
// key like any other. A value with no JSON form is replaced entirely.
func (r *Redactor) Redact(v any) any {
	if !ir.IsGeneric(v) {
		generic, err := ir.ToGeneric(v)
		if err != nil {
			return SecretPlaceholder
		}
		v = generic
	}

	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if r.IsSecret(k) {
				out[k] = SecretPlaceholder
				continue
			}
			out[k] = r.Redact(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = r.Redact(elem)
		}
		return out
	default:
		return v
	}
}

// RedactContext replaces the params and extra fields of c with redacted
// copies. It is what every built-in kind does before writing.
func (r *Redactor) RedactContext(c *Context) {
	for _, key := range []string{KeyParams, KeyExtra} {
		if v, ok := c.Get(key); ok && v != nil {
			c.Set(key, r.Redact(v))
		}
	}
}
