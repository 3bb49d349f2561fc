package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactorDeepCopy(t *testing.T) {
	r := NewRedactor()

	in := []any{
		map[string]any{
			"user":     "bob",
			"password": "ABC",
			"nested": map[string]any{
				"apikey": "k",
				"list":   []any{map[string]any{"hash": "h", "keep": 1}},
			},
		},
		"password",
	}

	out := r.Redact(in).([]any)

	first := out[0].(map[string]any)
	assert.Equal(t, "bob", first["user"])
	assert.Equal(t, SecretPlaceholder, first["password"])
	nested := first["nested"].(map[string]any)
	assert.Equal(t, SecretPlaceholder, nested["apikey"])
	item := nested["list"].([]any)[0].(map[string]any)
	assert.Equal(t, SecretPlaceholder, item["hash"])
	assert.Equal(t, 1, item["keep"])
	assert.Equal(t, "password", out[1], "list values are never keys")

	// The input is untouched
	orig := in[0].(map[string]any)
	assert.Equal(t, "ABC", orig["password"])
	assert.Equal(t, "k", orig["nested"].(map[string]any)["apikey"])
}

func TestRedactorKeysAreExact(t *testing.T) {
	r := NewRedactor()
	out := r.Redact(map[string]any{"Password": "x", "passwords": "y", "pass": "z"}).(map[string]any)

	assert.Equal(t, "x", out["Password"])
	assert.Equal(t, "y", out["passwords"])
	assert.Equal(t, SecretPlaceholder, out["pass"])
}

func TestRedactorCustomKeys(t *testing.T) {
	r := NewRedactor("token")
	out := r.Redact(map[string]any{"token": "t", "password": "p"}).(map[string]any)

	assert.Equal(t, SecretPlaceholder, out["token"])
	assert.Equal(t, "p", out["password"])
	assert.Equal(t, []string{"token"}, r.Keys())
	assert.ElementsMatch(t, DefaultSecretKeys, NewRedactor().Keys())
}

func TestRedactorStringMap(t *testing.T) {
	out := NewRedactor().Redact(map[string]string{"secret": "s", "account": "a"}).(map[string]any)
	assert.Equal(t, SecretPlaceholder, out["secret"])
	assert.Equal(t, "a", out["account"])
}

func TestRedactContext(t *testing.T) {
	params := []any{map[string]any{"password": "ABC"}}
	c := NewContext()
	c.Set(KeyParams, params)
	c.Set(KeyExtra, map[string]any{"secret": "s"})
	c.Set("password", "top level is left alone")

	NewRedactor().RedactContext(c)

	p, _ := c.Get(KeyParams)
	assert.Equal(t, SecretPlaceholder, p.([]any)[0].(map[string]any)["password"])
	e, _ := c.Get(KeyExtra)
	assert.Equal(t, SecretPlaceholder, e.(map[string]any)["secret"])
	top, _ := c.Get("password")
	assert.Equal(t, "top level is left alone", top)

	assert.Equal(t, "ABC", params[0].(map[string]any)["password"])
}

type loginParams struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func TestRedactorStruct(t *testing.T) {
	in := loginParams{User: "bob", Password: "STRUCT"}
	out := NewRedactor().Redact([]any{in}).([]any)

	p := out[0].(map[string]any)
	assert.Equal(t, SecretPlaceholder, p["password"])
	assert.Equal(t, "bob", p["user"])
	assert.Equal(t, "STRUCT", in.Password)
}

func TestRedactorTypedContainers(t *testing.T) {
	in := map[string]any{
		"users":  []map[string]any{{"name": "a", "password": "TYPEDSLICE"}},
		"groups": map[string]map[string]any{"admins": {"secret": "NESTED"}},
		"login":  &loginParams{Password: "POINTER"},
	}

	out := NewRedactor().Redact(in).(map[string]any)

	users := out["users"].([]any)
	assert.Equal(t, SecretPlaceholder, users[0].(map[string]any)["password"])
	assert.Equal(t, "a", users[0].(map[string]any)["name"])
	groups := out["groups"].(map[string]any)
	assert.Equal(t, SecretPlaceholder, groups["admins"].(map[string]any)["secret"])
	assert.Equal(t, SecretPlaceholder, out["login"].(map[string]any)["password"])

	assert.Equal(t, "TYPEDSLICE", in["users"].([]map[string]any)[0]["password"])
}

func TestRedactorUnencodableValue(t *testing.T) {
	out := NewRedactor().Redact(map[string]any{"ch": make(chan int), "n": 1}).(map[string]any)
	assert.Equal(t, SecretPlaceholder, out["ch"])
	assert.Equal(t, 1, out["n"])
}
