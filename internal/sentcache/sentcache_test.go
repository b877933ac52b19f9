package sentcache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = Encode([]string{"https://example.com/a-1/", "https://example.com/b-2/"})
	require.NoError(t, err)
	assert.Equal(t, `["https://example.com/a-1/","https://example.com/b-2/"]`, string(data))
}

func TestDecodeRejectsNonArrays(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{`null`, `{}`, `"a"`, `[1, 2]`, `[`, ``} {
		_, err := Decode([]byte(payload))
		assert.Errorf(t, err, "payload %q", payload)
	}
	urls, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestLocalStore(t *testing.T) {
	t.Parallel()

	t.Run("MissingPath", func(t *testing.T) {
		t.Parallel()
		_, err := NewLocal(" ")
		assert.Error(t, err)
	})

	t.Run("LoadMissingFile", func(t *testing.T) {
		t.Parallel()
		store, err := NewLocal(filepath.Join(t.TempDir(), "cache.json"))
		require.NoError(t, err)
		_, err = store.Load(context.Background())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("LoadCorruptFile", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "cache.json")
		require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o600))
		store, err := NewLocal(path)
		require.NoError(t, err)
		_, err = store.Load(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "cache.json")
		store, err := NewLocal(path)
		require.NoError(t, err)
		assert.Equal(t, path, store.Path())

		ctx := context.Background()
		require.NoError(t, store.Save(ctx, []string{"a", "b", "c"}))
		require.NoError(t, store.Save(ctx, []string{"d"}))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"d"}, got)

		// #nosec G304 -- test reads from the controlled temp directory.
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, `["d"]`, string(raw))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp files must not be left behind")
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	empty := NewMemory()
	_, err := empty.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	seeded := NewMemory("a", "b")
	got, err := seeded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got[0] = "mutated"
	again, err := seeded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0], "Load must return a copy")

	require.NoError(t, seeded.Save(ctx, nil))
	got, err = seeded.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, seeded.Saves())
}
