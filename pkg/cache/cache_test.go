package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	a := Hash([]byte("payload"))
	b := Hash([]byte("payload"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, Hash([]byte("other")))
}

func TestHashParts(t *testing.T) {
	type inputs struct {
		Records []string
		Legend  bool
	}
	a := HashParts(inputs{Records: []string{"x"}, Legend: true}, "drawio")
	b := HashParts(inputs{Records: []string{"x"}, Legend: true}, "drawio")
	assert.Equal(t, a, b)

	c := HashParts(inputs{Records: []string{"x"}, Legend: false}, "drawio")
	assert.NotEqual(t, a, c, "option changes must change the hash")
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	doc := k.DocumentKey("abc123", "drawio")
	assert.Equal(t, "doc:v1:drawio:abc123", doc)
	assert.Equal(t, "graph:v1:abc123", k.GraphKey("abc123"))
	assert.NotEqual(t, doc, k.DocumentKey("abc123", "json"))
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(nil, "tenant1:")
	assert.Equal(t, "tenant1:doc:v1:drawio:h", k.DocumentKey("h", "drawio"))
	assert.Equal(t, "tenant1:graph:v1:h", k.GraphKey("h"))
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "null cache never hits")
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestFileCacheRoundtrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "doc:v1:drawio:h", []byte("<mxfile/>"), time.Hour))
	data, ok, err := c.Get(ctx, "doc:v1:drawio:h")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("<mxfile/>"), data)

	require.NoError(t, c.Delete(ctx, "doc:v1:drawio:h"))
	_, ok, err = c.Get(ctx, "doc:v1:drawio:h")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), -time.Second))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries read as misses")
}

func TestFileCacheZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
