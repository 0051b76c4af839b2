package kv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("case-insensitive lookup", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("HELLO")
		require.True(t, found)
		require.Equal(t, "World", value)
		require.Equal(t, "bar", kv.Value("foo"))
		require.Equal(t, "default", kv.ValueOr("missing", "default"))
		require.True(t, kv.Has("lOrEm"))
		require.False(t, kv.Has("missing"))
	})

	t.Run("multiple values keep insertion order", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, []string{"World", "Pavlo"}, slices.Collect(kv.Values("hello")))
		require.Empty(t, slices.Collect(kv.Values("missing")))
	})

	t.Run("delete", func(t *testing.T) {
		kv := getHeaders().Delete("HELLO")

		want := []Pair{
			{"Foo", "bar"},
			{"Lorem", "ipsum"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("set", func(t *testing.T) {
		kv := getHeaders().Set("HELLO", "no more Pavlo")

		want := []Pair{
			{"Foo", "bar"},
			{"HELLO", "no more Pavlo"},
			{"Lorem", "ipsum"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("set new key", func(t *testing.T) {
		kv := New().
			Add("Pavlo", "the best").
			Set("Glory to", "Ukraine")

		want := []Pair{
			{"Pavlo", "the best"},
			{"Glory to", "Ukraine"},
		}

		require.Equal(t, want, kv.Expose())
	})

	t.Run("keys", func(t *testing.T) {
		require.Equal(t, []string{"Foo", "Hello", "Lorem"}, slices.Collect(getHeaders().Keys()))
		kv := getHeaders().Delete("hello")
		require.Equal(t, []string{"Foo", "Lorem"}, slices.Collect(kv.Keys()))
	})

	t.Run("pairs", func(t *testing.T) {
		var keys, values []string
		for key, value := range getHeaders().Pairs() {
			keys = append(keys, key)
			values = append(values, value)
		}

		require.Equal(t, []string{"Foo", "Hello", "Lorem", "hello"}, keys)
		require.Equal(t, []string{"bar", "World", "ipsum", "Pavlo"}, values)
	})

	t.Run("clone is independent", func(t *testing.T) {
		original := getHeaders()
		copied := original.Clone()
		copied.Set("Foo", "baz").Add("New", "entry")

		require.Equal(t, "bar", original.Value("Foo"))
		require.Equal(t, 4, original.Len())
		require.Equal(t, 5, copied.Len())
	})

	t.Run("clone of nil", func(t *testing.T) {
		var kv *Storage
		require.True(t, kv.Clone().Empty())
	})

	t.Run("from pairs", func(t *testing.T) {
		kv := NewFromPairs(Pair{"A", "1"}, Pair{"a", "2"})
		require.Equal(t, []string{"1", "2"}, slices.Collect(kv.Values("A")))
	})

	t.Run("from map", func(t *testing.T) {
		kv := NewFromMap(map[string][]string{"Accept": {"text/html", "application/json"}})
		require.Equal(t, []string{"text/html", "application/json"}, slices.Collect(kv.Values("accept")))
	})

	t.Run("empty", func(t *testing.T) {
		kv := getHeaders()
		for _, key := range slices.Collect(kv.Keys()) {
			kv.Delete(key)
		}

		require.True(t, kv.Empty())
	})

	t.Run("clear", func(t *testing.T) {
		require.Zero(t, getHeaders().Clear().Len())
	})
}
