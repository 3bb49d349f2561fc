package dump

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())
	assert.DirExists(t, dir)
}

func TestNewWriterRejectsBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewWriter(file)
	require.Error(t, err)
	assert.True(t, IsDumpError(err, ErrCodeBadDirectory))
}

func TestWithDumpSuccessGolden(t *testing.T) {
	w, _ := newTestWriter(t)

	ret, err := w.WithDump(KindAction, func(c *Context) (any, error) {
		c.Set("action", "testAction")
		c.Set(KeyParams, []any{"a", "b"})
		return "R1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "R1", ret)

	files := w.DumpedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "20240102_030405.action.testAction.success.call-1.json", files[0])

	data, err := os.ReadFile(w.DumpedPaths()[0])
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "action_success", data)
}

func TestWithDumpRedactsOnlyTheCopy(t *testing.T) {
	w, _ := newTestWriter(t)

	params := []any{map[string]any{"user": "bob", "password": "ABC"}}
	var seen string

	_, err := w.WithDump(KindModuleFunction, func(c *Context) (any, error) {
		c.Set("module_name", "UsersModule")
		c.Set("function", "login")
		c.Set(KeyParams, params)
		seen = params[0].(map[string]any)["password"].(string)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC", seen)
	assert.Equal(t, "ABC", params[0].(map[string]any)["password"], "live params are never mutated")

	rec, err := NewReader().Read(w.DumpedPaths()[0])
	require.NoError(t, err)
	p := rec.Params().([]any)[0].(map[string]any)
	assert.Equal(t, SecretPlaceholder, p["password"])
	assert.Equal(t, "bob", p["user"])
	assert.Equal(t, "UsersModule::login", rec.Subject())
}

func TestWithDumpRedactsTypedParams(t *testing.T) {
	w, _ := newTestWriter(t)

	params := []any{
		map[string]any{"users": []map[string]any{{"password": "TYPEDSLICE"}}},
		loginParams{User: "bob", Password: "STRUCT"},
	}
	_, err := w.WithDump(KindAction, func(c *Context) (any, error) {
		c.Set("action", "importUsers")
		c.Set(KeyParams, params)
		return true, nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(w.DumpedPaths()[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "TYPEDSLICE")
	assert.NotContains(t, string(data), "STRUCT")
	assert.Contains(t, string(data), SecretPlaceholder)
}

func TestWithDumpErrorIsReturnedUnchanged(t *testing.T) {
	w, _ := newTestWriter(t)
	boom := errors.New("boom")

	ret, err := w.WithDump(KindAction, func(c *Context) (any, error) {
		c.Set("action", "failing")
		c.Set(KeyParams, []any{})
		return nil, boom
	})
	assert.Nil(t, ret)
	assert.Same(t, boom, err)

	files := w.DumpedFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "20240102_030405.action.failing.error.call-1.json", files[0])

	rec, err := NewReader().Read(w.DumpedPaths()[0])
	require.NoError(t, err)
	assert.False(t, rec.Success())

	failure := rec.Failure()
	require.NotNil(t, failure)
	assert.Equal(t, "boom", failure.Message)
	assert.Equal(t, "*errors.errorString", failure.Class)
	assert.NotEmpty(t, failure.Trace)
}

func TestWithDumpUnknownKind(t *testing.T) {
	w, _ := newTestWriter(t)
	called := false

	_, err := w.WithDump("nope", func(c *Context) (any, error) {
		called = true
		return nil, nil
	})
	require.Error(t, err)
	assert.True(t, IsDumpError(err, ErrCodeUnknownType))
	assert.False(t, called, "nothing runs for an unknown kind")
	assert.Empty(t, w.DumpedFiles())
}

func TestWriteFailure(t *testing.T) {
	w, _ := newTestWriter(t)
	require.NoError(t, os.RemoveAll(w.Dir()))

	c := w.NewContext()
	c.Set("action", "x")
	_, err := w.WriteSuccess(KindAction, nil, c)
	require.Error(t, err)
	assert.True(t, IsDumpError(err, ErrCodeWriteFailed))
	assert.Contains(t, err.Error(), "failed to save to 20240102_030405.action.x.success.call-1.json")
}

func TestFilenameFragmentStaysInDirectory(t *testing.T) {
	w, _ := newTestWriter(t)

	_, err := w.WithDump(KindAction, func(c *Context) (any, error) {
		c.Set("action", "../escape")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "20240102_030405.action.._escape.success.call-1.json", w.DumpedFiles()[0])
	assert.FileExists(t, w.DumpedPaths()[0])
}

func TestCustomKindRoundTrip(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(hookKind))
	w, _ := newTestWriter(t, WithRegistry(reg))

	_, err := w.WithDump("hook", func(c *Context) (any, error) {
		c.Set("hook_name", "return_abc")
		c.Set("secret", "Secret123")
		return nil, nil
	})
	require.NoError(t, err)

	filename := w.DumpedFiles()[0]
	assert.Contains(t, filename, "return_abc", "filename has hook name")

	rec, err := NewReader(WithRegistry(reg)).Read(w.DumpedPaths()[0])
	require.NoError(t, err)
	assert.Equal(t, "hook", rec.Type())
	assert.Equal(t, "return_abc", rec.Subject())
	secret, _ := rec.Field("secret")
	assert.Equal(t, SecretPlaceholder, secret)

	// Without the kind the file cannot be read
	_, err = NewReader().Read(w.DumpedPaths()[0])
	assert.True(t, IsDumpError(err, ErrCodeUnknownType))
}

func TestWriterCustomSecretKeys(t *testing.T) {
	w, _ := newTestWriter(t, WithSecretKeys("token"))

	_, err := w.WithDump(KindAction, func(c *Context) (any, error) {
		c.Set("action", "a")
		c.Set(KeyParams, []any{map[string]any{"token": "t", "password": "p"}})
		return nil, nil
	})
	require.NoError(t, err)

	rec, err := NewReader().Read(w.DumpedPaths()[0])
	require.NoError(t, err)
	p := rec.Params().([]any)[0].(map[string]any)
	assert.Equal(t, SecretPlaceholder, p["token"])
	assert.Equal(t, "p", p["password"])
}

type recordingIndex struct {
	dirs []string
	keys []string
}

func (r *recordingIndex) IndexRecord(_ context.Context, dir string, rec *Record) error {
	r.dirs = append(r.dirs, dir)
	r.keys = append(r.keys, rec.MatchKey())
	return nil
}

func TestWriterIndexesFiles(t *testing.T) {
	idx := &recordingIndex{}
	w, _ := newTestWriter(t, WithIndex(idx))

	for _, name := range []string{"one", "two"} {
		_, err := w.WithDump(KindAction, func(c *Context) (any, error) {
			c.Set("action", name)
			return nil, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"action.one", "action.two"}, idx.keys)
	assert.Equal(t, []string{w.Dir(), w.Dir()}, idx.dirs)
	assert.Len(t, w.DumpedFiles(), 2)
}
