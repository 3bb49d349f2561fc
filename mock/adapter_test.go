package mock_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apiwrapper/auth"
	"github.com/roach88/apiwrapper/client"
	"github.com/roach88/apiwrapper/dump"
	"github.com/roach88/apiwrapper/internal/testutil"
	"github.com/roach88/apiwrapper/mock"
	"github.com/roach88/apiwrapper/transport"
)

var _ transport.Transport = (*mock.Adapter)(nil)

func testAuth() *auth.Auth {
	return auth.NewAnonymous("shop")
}

// recordCalls records calls made through a DebugClient backed by m into a
// temp dir and returns the dump paths in call order.
func recordCalls(t *testing.T, m *mock.Adapter, calls func(dc *client.DebugClient)) []string {
	t.Helper()
	dc := client.NewDebug(m, testAuth())
	require.NoError(t, dc.EnableDumping(t.TempDir(),
		dump.WithClock(testutil.NewFixedClock(testutil.DefaultTime).Now),
		dump.WithIDGenerator(testutil.NewSequenceIDs("call")),
	))
	calls(dc)
	return dc.DumpWriter().DumpedPaths()
}

// echoSecond returns "_" followed by the second param.
func echoSecond(_ context.Context, params []any, _ *auth.Auth) (any, error) {
	return fmt.Sprintf("_%v", params[1]), nil
}

func TestAdapter_RegisteredAction(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.WithAction("testAction", mock.Returns("R1"), false))

	c := client.New(m, nil)
	res, err := c.CallAction(context.Background(), "testAction", []any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "R1", res)
}

func TestAdapter_ActionReceivesParams(t *testing.T) {
	m := mock.New()
	var got []any
	require.NoError(t, m.WithAction("echo", func(_ context.Context, params []any) (any, error) {
		got = params
		return len(params), nil
	}, false))

	res, err := m.CallAction(context.Background(), "echo", []any{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, res)
	assert.Equal(t, []any{1, 2, 3}, got)
}

func TestAdapter_RegisteredModuleConfiguredTwice(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("first", mock.FunctionReturns("F1"))
	}))
	require.NoError(t, m.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("second", mock.FunctionReturns("F2"))
	}))

	c := client.New(m, testAuth())
	mod, err := c.Module("TestModule")
	require.NoError(t, err)

	res, err := mod.Call(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "F1", res)

	res, err = mod.Call(context.Background(), "second")
	require.NoError(t, err)
	assert.Equal(t, "F2", res)

	_, modules := m.Registered()
	assert.Equal(t, []string{"TestModule"}, modules)
}

func TestAdapter_ModuleAdoptsCallAuth(t *testing.T) {
	m := mock.New()
	var seen *auth.Auth
	require.NoError(t, m.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("whoami", func(_ context.Context, _ []any, a *auth.Auth) (any, error) {
			seen = a
			return a.Account(), nil
		})
	}))

	first := auth.NewAnonymous("first")
	res, err := m.Call(context.Background(), "TestModule", "whoami", nil, first)
	require.NoError(t, err)
	assert.Equal(t, "first", res)
	assert.Same(t, first, seen)

	// The module keeps the auth it adopted.
	res, err = m.Call(context.Background(), "TestModule", "whoami", nil, auth.NewAnonymous("second"))
	require.NoError(t, err)
	assert.Equal(t, "first", res)
}

func TestAdapter_NotRegistered(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("known", mock.FunctionReturns(true))
	}))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (any, error)
		want string
	}{
		{
			name: "action",
			call: func() (any, error) { return m.CallAction(ctx, "nope", nil) },
			want: "action nope is not registered",
		},
		{
			name: "module",
			call: func() (any, error) { return m.Call(ctx, "NoModule", "f", nil, testAuth()) },
			want: "module NoModule is not registered",
		},
		{
			name: "function",
			call: func() (any, error) { return m.Call(ctx, "TestModule", "unknown", nil, testAuth()) },
			want: "function TestModule::unknown is not registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, mock.ErrNotRegistered)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestAdapter_AlreadyRegistered(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.WithAction("a", mock.Returns(1), false))

	err := m.WithAction("a", mock.Returns(2), false)
	assert.ErrorIs(t, err, mock.ErrAlreadyRegistered)
	assert.EqualError(t, err, "action a is already set up")

	require.NoError(t, m.WithAction("a", mock.Returns(2), true))
	res, err := m.CallAction(context.Background(), "a", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res)

	require.NoError(t, m.RegisterModule(mock.NewModule("M"), false))
	assert.ErrorIs(t, m.RegisterModule(mock.NewModule("M"), false), mock.ErrAlreadyRegistered)
}

func TestAdapter_ResourceURL(t *testing.T) {
	m := mock.New()
	assert.Equal(t, "MOCK", m.Server())
	assert.Equal(t, "MOCK", m.ResourceURL())
	assert.Equal(t, "MockAdapter", m.String())

	m.SetResourceURL("https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com", m.ResourceURL())

	assert.Equal(t, "https://r.example.com", mock.New(mock.WithResourceURL("https://r.example.com")).ResourceURL())
}

func TestAdapter_MockFromDump(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("testFunction", echoSecond)
	}))

	files := recordCalls(t, live, func(dc *client.DebugClient) {
		for i := range 3 {
			_, err := dc.CallFunction(context.Background(), "TestModule", "testFunction", []any{"a", fmt.Sprint(i)}, nil)
			require.NoError(t, err)
		}
	})
	require.Len(t, files, 3)

	m := mock.New()
	require.NoError(t, m.RegisterDumpFile(files[0], false))
	require.NoError(t, m.RegisterDumpFile(files[1], false))
	require.NoError(t, m.RegisterDumpFile(files[2], true))

	c := client.New(m, testAuth())
	ctx := context.Background()

	res, err := c.CallFunction(ctx, "TestModule", "testFunction", []any{"a", "5"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "_1", res, "later any-params record wins")

	res, err = c.CallFunction(ctx, "TestModule", "testFunction", []any{"a", "2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "_2", res, "exact params record")

	res, err = c.CallFunction(ctx, "TestModule", "testFunction", []any{"b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "_1", res)

	used := m.UsedReturns()
	require.Len(t, used, 3)
	assert.Equal(t, dump.ModuleFunctionMatchKey("TestModule", "testFunction"), used[0])
	assert.Equal(t, used[0], used[2])
	assert.NotEqual(t, used[0], used[1])
}

func TestAdapter_MatchParamsOnlyMisses(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithModule("TestModule", func(mod *mock.Module) {
		mod.On("testFunction", echoSecond)
	}))
	files := recordCalls(t, live, func(dc *client.DebugClient) {
		_, err := dc.CallFunction(context.Background(), "TestModule", "testFunction", []any{"a", "1"}, nil)
		require.NoError(t, err)
	})

	m := mock.New()
	require.NoError(t, m.RegisterDumpFiles(files, "", true))

	_, err := m.Call(context.Background(), "TestModule", "testFunction", []any{"a", "9"}, testAuth())
	require.Error(t, err)
	assert.True(t, mock.IsMiss(err))

	var miss *mock.MissError
	require.True(t, errors.As(err, &miss))
	assert.Equal(t, dump.ModuleFunctionMatchKey("TestModule", "testFunction"), miss.Key)
	assert.Contains(t, err.Error(), `Args: ["a","9"]`)
	assert.Empty(t, m.UsedReturns())
}

func TestAdapter_EmptyArrayReturn(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithAction("listNothing", mock.Returns([]any{}), false))
	files := recordCalls(t, live, func(dc *client.DebugClient) {
		_, err := dc.CallAction(context.Background(), "listNothing", nil)
		require.NoError(t, err)
	})

	m := mock.New()
	require.NoError(t, m.RegisterDumpFiles(files, "", false))

	res, err := m.CallAction(context.Background(), "listNothing", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, res)
}

func TestAdapter_ActionScenario(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithAction("testAction", func(_ context.Context, params []any) (any, error) {
		return fmt.Sprintf("R%d", len(params)), nil
	}, false))

	files := recordCalls(t, live, func(dc *client.DebugClient) {
		_, err := dc.CallAction(context.Background(), "testAction", []any{"a"})
		require.NoError(t, err)
		_, err = dc.CallAction(context.Background(), "testAction", []any{"a", "b"})
		require.NoError(t, err)
	})
	require.Len(t, files, 2)

	rec, err := dump.NewReader().Read(files[0])
	require.NoError(t, err)
	assert.Equal(t, dump.KindAction, rec.Type())
	assert.Equal(t, "testAction", rec.ActionName())

	m := mock.New()
	require.NoError(t, m.RegisterDumpFiles(files, "", true))

	c := client.New(m, nil)
	res, err := c.CallAction(context.Background(), "testAction", []any{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "R2", res)

	res, err = c.CallAction(context.Background(), "testAction", []any{"a"})
	require.NoError(t, err)
	assert.Equal(t, "R1", res)

	assert.Len(t, m.UsedReturns(), 2)
}

func TestAdapter_ActionReplayIgnoresParams(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithAction("testAction", mock.Returns("R1"), false))

	files := recordCalls(t, live, func(dc *client.DebugClient) {
		res, err := dc.CallAction(context.Background(), "testAction", []any{"a", "b"})
		require.NoError(t, err)
		require.Equal(t, "R1", res)
	})
	require.Len(t, files, 1)

	m := mock.New()
	require.NoError(t, m.RegisterDumpFile(files[0], false))

	c := client.New(m, nil)
	res, err := c.CallAction(context.Background(), "testAction", []any{"c", "d"})
	require.NoError(t, err)
	assert.Equal(t, "R1", res)
	assert.Equal(t, []string{dump.ActionMatchKey("testAction")}, m.UsedReturns())
}

func TestAdapter_ReplayedResultIsACopy(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithAction("getUser", mock.Returns(map[string]any{
		"name": "orig",
		"tags": []any{"a"},
	}), false))

	files := recordCalls(t, live, func(dc *client.DebugClient) {
		_, err := dc.CallAction(context.Background(), "getUser", nil)
		require.NoError(t, err)
	})

	m := mock.New()
	require.NoError(t, m.RegisterDumpFile(files[0], false))
	c := client.New(m, nil)

	first, err := c.CallAction(context.Background(), "getUser", nil)
	require.NoError(t, err)
	user := first.(map[string]any)
	user["name"] = "changed by caller"
	user["tags"].([]any)[0] = "z"

	second, err := c.CallAction(context.Background(), "getUser", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "orig", "tags": []any{"a"}}, second)
}

func TestAdapter_FailureRecordReplaysError(t *testing.T) {
	live := mock.New()
	remote := &transport.Error{
		Class:    transport.ClassGeneral,
		APIClass: "ShopError",
		Message:  "order not found",
		Code:     404,
		Ref:      "ref-1",
	}
	require.NoError(t, live.WithModule("ShopModule", func(mod *mock.Module) {
		mod.On("getOrder", mock.Fails(remote))
	}))
	files := recordCalls(t, live, func(dc *client.DebugClient) {
		_, err := dc.CallFunction(context.Background(), "ShopModule", "getOrder", []any{42}, nil)
		require.ErrorIs(t, err, remote)
	})
	require.Len(t, files, 1)
	assert.Contains(t, files[0], ".error.")

	m := mock.New()
	require.NoError(t, m.RegisterDumpFile(files[0], false))

	_, err := m.Call(context.Background(), "ShopModule", "getOrder", []any{1}, testAuth())
	require.Error(t, err)
	assert.True(t, dump.IsRecordedError(err))

	var re *dump.RecordedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "ShopError", re.ClassName())
	assert.Equal(t, "ref-1", re.Reference())
	assert.Contains(t, re.Message, "order not found")
}

func TestAdapter_RegisterDumpFilesWithPrefix(t *testing.T) {
	live := mock.New()
	require.NoError(t, live.WithAction("ping", mock.Returns("pong"), false))
	dc := client.NewDebug(live, nil)
	dir := t.TempDir()
	require.NoError(t, dc.EnableDumping(dir))
	_, err := dc.CallAction(context.Background(), "ping", nil)
	require.NoError(t, err)

	m := mock.New()
	require.NoError(t, m.RegisterDumpFiles(dc.DumpWriter().DumpedFiles(), dir, false))
	res, err := m.CallAction(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", res)

	err = m.RegisterDumpFiles([]string{"missing.json"}, dir, false)
	assert.True(t, dump.IsDumpError(err, dump.ErrCodeUnreadable))
}

// fakeCaller answers every function with its qualified name.
type fakeCaller struct {
	auth  *auth.Auth
	calls []string
}

func (f *fakeCaller) Auth() *auth.Auth { return f.auth }

func (f *fakeCaller) CallFunction(_ context.Context, module, function string, _ []any, _ *auth.Auth) (any, error) {
	f.calls = append(f.calls, module+"::"+function)
	return "real " + function, nil
}

func TestAdapter_WithOriginalModule(t *testing.T) {
	orig := &fakeCaller{auth: auth.NewAnonymous("orig")}
	m := mock.New()
	require.NoError(t, m.WithOriginalModule(orig, "ShopModule", func(mod *mock.Module) {
		mod.On("getOrder", mock.FunctionReturns("stubbed"))
	}))

	ctx := context.Background()
	res, err := m.Call(ctx, "ShopModule", "getOrder", nil, testAuth())
	require.NoError(t, err)
	assert.Equal(t, "stubbed", res)

	res, err = m.Call(ctx, "ShopModule", "listOrders", nil, testAuth())
	require.NoError(t, err)
	assert.Equal(t, "real listOrders", res)
	assert.Equal(t, []string{"ShopModule::listOrders"}, orig.calls)

	err = m.WithOriginalModule(orig, "ShopModule", nil)
	assert.ErrorIs(t, err, mock.ErrAlreadyRegistered)
}

func TestReturnsInOrder(t *testing.T) {
	fn := mock.ReturnsInOrder(1, 2)
	var got []any
	for range 3 {
		v, err := fn(context.Background(), nil, nil)
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{1, 2, 2}, got)
}
