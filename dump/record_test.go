package dump

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHash = "e10eae147300c4d98e3ed5779734de11558eab4128dccd3f208d678aafed99a5"

func TestDataHashFixture(t *testing.T) {
	unsorted := map[string]any{
		"1": "12",
		"2": 12,
		"a": map[string]any{"c": "a", "b": "a", "a": "a"},
		"0": "asd",
	}
	sorted := map[string]any{
		"0": "asd",
		"1": "12",
		"2": 12,
		"a": map[string]any{"a": "a", "b": "a", "c": "a"},
	}

	h1, err := DataHash(unsorted)
	require.NoError(t, err)
	h2, err := DataHash(sorted)
	require.NoError(t, err)

	assert.Equal(t, fixtureHash, h1)
	assert.Equal(t, fixtureHash, h2)
}

func TestDataHashSensitivity(t *testing.T) {
	base := mustHash(t, []any{"a", 12})

	assert.NotEqual(t, base, mustHash(t, []any{"a", "12"}), "number vs string")
	assert.NotEqual(t, base, mustHash(t, []any{12, "a"}), "list order")
	assert.Equal(t, base, mustHash(t, []any{"a", json.Number("12")}), "decoded numbers hash like ints")
	assert.Equal(t, base, mustHash(t, []any{"a", 12.0}), "integral floats hash like ints")
}

func mustHash(t *testing.T, v any) string {
	t.Helper()
	h, err := DataHash(v)
	require.NoError(t, err)
	return h
}

func TestMatchKeys(t *testing.T) {
	assert.Equal(t, "action.refreshCatalog", ActionMatchKey("refreshCatalog"))
	assert.Equal(t, "moduleFunction.ShopModule::listOrders", ModuleFunctionMatchKey("ShopModule", "listOrders"))

	key, err := WithParams("action.x", []any{"a"})
	require.NoError(t, err)
	assert.Equal(t, "action.x."+mustHash(t, []any{"a"}), key)
}

func TestNewRecord(t *testing.T) {
	reg := NewRegistry()

	t.Run("module function success", func(t *testing.T) {
		rec, err := NewRecord(reg, map[string]any{
			TypeKey:       KindModuleFunction,
			"module_name": "ShopModule",
			"function":    "listOrders",
			"params":      []any{json.Number("1")},
			"return":      "ok",
			"success":     true,
			"call_id":     "c1",
			"time_ms":     json.Number("12"),
			TimestampKey:  "2024-01-02T03:04:05Z",
		})
		require.NoError(t, err)

		assert.Equal(t, KindModuleFunction, rec.Type())
		assert.Equal(t, "ShopModule::listOrders", rec.Subject())
		assert.Equal(t, "ShopModule", rec.ModuleName())
		assert.Equal(t, "listOrders", rec.Function())
		assert.Equal(t, "moduleFunction.ShopModule::listOrders", rec.MatchKey())
		assert.True(t, rec.Success())
		assert.Nil(t, rec.Failure())
		assert.Equal(t, "c1", rec.CallID())
		assert.Equal(t, int64(12), rec.TimeMs())

		ts, ok := rec.Timestamp()
		require.True(t, ok)
		assert.Equal(t, 2024, ts.Year())

		ret, ok := rec.Return()
		require.True(t, ok)
		assert.Equal(t, "ok", ret)

		withParams, err := rec.MatchKeyForRecordedParams()
		require.NoError(t, err)
		live, err := rec.MatchKeyWithParams([]any{1})
		require.NoError(t, err)
		assert.Equal(t, withParams, live)
	})

	t.Run("action failure", func(t *testing.T) {
		rec, err := NewRecord(reg, map[string]any{
			TypeKey:           KindAction,
			"action":          "ping",
			"success":         false,
			KeyExceptionClass: "*transport.Error",
			KeyException:      "boom",
			KeyExceptionRef:   "ref-1",
		})
		require.NoError(t, err)

		assert.False(t, rec.Success())
		_, ok := rec.Return()
		assert.False(t, ok)

		failure := rec.Failure()
		require.NotNil(t, failure)
		assert.Equal(t, "boom", failure.Message)
		assert.Equal(t, "*transport.Error", failure.Class)
		assert.Equal(t, "ref-1", failure.Ref)
		assert.Equal(t, "action.ping", failure.MatchKey)

		v, err := rec.Outcome()
		assert.Nil(t, v)
		assert.True(t, IsRecordedError(err))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewRecord(reg, map[string]any{TypeKey: "nope"})
		require.Error(t, err)
		assert.True(t, IsDumpError(err, ErrCodeUnknownType))
		assert.Contains(t, err.Error(), "unsupported type: 'nope'")
	})

	t.Run("missing subject", func(t *testing.T) {
		_, err := NewRecord(reg, map[string]any{TypeKey: KindAction})
		require.Error(t, err)
		assert.True(t, IsDumpError(err, ErrCodeInvalidRecord))
	})
}

func TestRecordDataIsCopy(t *testing.T) {
	rec, err := NewRecord(NewRegistry(), map[string]any{TypeKey: KindAction, "action": "a", "success": true})
	require.NoError(t, err)

	data := rec.Data()
	data["action"] = "changed"
	assert.Equal(t, "a", rec.ActionName())
}

func TestRecordAccessorsReturnDeepCopies(t *testing.T) {
	src := map[string]any{
		TypeKey:    KindAction,
		"action":   "a",
		KeyParams:  []any{map[string]any{"id": "1"}},
		KeyReturn:  map[string]any{"items": []any{"x"}},
		KeySuccess: true,
	}
	rec, err := NewRecord(NewRegistry(), src)
	require.NoError(t, err)

	ret, ok := rec.Return()
	require.True(t, ok)
	ret.(map[string]any)["items"].([]any)[0] = "changed"

	out, err := rec.Outcome()
	require.NoError(t, err)
	out.(map[string]any)["extra"] = true

	rec.Params().([]any)[0].(map[string]any)["id"] = "changed"
	field, _ := rec.Field(KeyReturn)
	field.(map[string]any)["items"] = nil
	rec.Data()[KeyParams].([]any)[0] = nil

	src[KeyReturn].(map[string]any)["items"] = []any{"from source"}

	ret, _ = rec.Return()
	assert.Equal(t, map[string]any{"items": []any{"x"}}, ret)
	assert.Equal(t, []any{map[string]any{"id": "1"}}, rec.Params())
}
