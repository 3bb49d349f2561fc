package dump

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/apiwrapper/internal/testutil"
)

// newTestWriter creates a Writer in a temp dir with a frozen clock and
// sequential call ids.
func newTestWriter(t *testing.T, opts ...Option) (*Writer, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(testutil.DefaultTime)
	base := []Option{
		WithClock(clock.Now),
		WithIDGenerator(testutil.NewSequenceIDs("call")),
	}
	w, err := NewWriter(t.TempDir(), append(base, opts...)...)
	require.NoError(t, err)
	return w, clock
}

// hookKind is a custom kind keyed by a hook name that also hides a
// top-level "secret" field.
var hookKind = Kind{
	Name: "hook",
	Describe: func(data map[string]any) (string, error) {
		return requiredString(data, "hook_name")
	},
	FilenamePart: func(c *Context) string {
		return contextString(c, "hook_name") + "."
	},
	Redact: func(r *Redactor, c *Context) {
		r.RedactContext(c)
		c.Set("secret", SecretPlaceholder)
	},
}
