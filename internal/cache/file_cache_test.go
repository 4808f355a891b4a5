package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type precipitation struct {
	Dates []string  `json:"dates"`
	Sum   []float64 `json:"sum"`
}

func TestFileCache_RoundTrip(t *testing.T) {
	fc := NewFileCacheAt[precipitation](t.TempDir())
	key := fc.GenerateKey(26.5, 87.1, "2024-07-01", "2024-08-31")

	_, ok := fc.Get(key)
	assert.False(t, ok)

	want := precipitation{Dates: []string{"2024-08-01"}, Sum: []float64{42.5}}
	require.NoError(t, fc.Set(key, want))

	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, fc.Delete(key))
	_, ok = fc.Get(key)
	assert.False(t, ok)
	assert.NoError(t, fc.Delete(key))
}

func TestFileCache_GenerateKeyIsStable(t *testing.T) {
	fc := NewFileCacheAt[int](t.TempDir())
	assert.Equal(t, fc.GenerateKey("kosi", 10), fc.GenerateKey("kosi", 10))
	assert.NotEqual(t, fc.GenerateKey("kosi", 10), fc.GenerateKey("kosi", 20))
	assert.Len(t, fc.GenerateKey(), 40)
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	fc := NewFileCacheAt[precipitation](dir)
	require.NoError(t, fc.Set("k", precipitation{Sum: []float64{1}}))

	tampered := `{"data":{"dates":null,"sum":[2]},"created_at":"2024-01-01T00:00:00Z","checksum":"deadbeef"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte(tampered), 0644))
	_, ok := fc.Get("k")
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "k.json"), []byte("{"), 0644))
	_, ok = fc.Get("k")
	assert.False(t, ok)
}

func TestFileCache_MaxAge(t *testing.T) {
	fc := NewFileCacheAt[int](t.TempDir()).WithMaxAge(time.Hour)
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	fc.now = func() time.Time { return start }
	require.NoError(t, fc.Set("k", 7))

	fc.now = func() time.Time { return start.Add(30 * time.Minute) }
	v, ok := fc.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	fc.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, ok = fc.Get("k")
	assert.False(t, ok)
}
