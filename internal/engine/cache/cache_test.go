package cache_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rnws/internal/core/domain"
	"go.trai.ch/rnws/internal/engine/cache"
)

func fingerprint(kind domain.ArtifactKind) domain.Fingerprint {
	return domain.Fingerprint{Entry: "index.ios", Platform: "ios", Dev: true, Kind: kind}
}

func TestCache_GetPut(t *testing.T) {
	c := cache.New()

	_, ok := c.Get(fingerprint(domain.KindBundle))
	assert.False(t, ok)

	want := domain.Artifact{Kind: domain.KindBundle, Bytes: []byte("var a = 1;")}
	c.Put(fingerprint(domain.KindBundle), want)

	got, ok := c.Get(fingerprint(domain.KindBundle))
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = c.Get(fingerprint(domain.KindSourceMap))
	assert.False(t, ok, "sibling fingerprint must be a distinct key")
}

func TestCache_PutOverwrites(t *testing.T) {
	c := cache.New()
	fp := fingerprint(domain.KindBundle)

	c.Put(fp, domain.Artifact{Bytes: []byte("a")})
	c.Put(fp, domain.Artifact{Bytes: []byte("b")})

	got, ok := c.Get(fp)
	require.True(t, ok)
	assert.Equal(t, []byte("b"), got.Bytes)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Clear(t *testing.T) {
	c := cache.New()
	c.Put(fingerprint(domain.KindBundle), domain.Artifact{})
	c.Put(fingerprint(domain.KindSourceMap), domain.Artifact{})
	require.Equal(t, 2, c.Len())

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(fingerprint(domain.KindBundle))
	assert.False(t, ok)
}

func TestCache_PutIfCurrent(t *testing.T) {
	c := cache.New()
	fp := fingerprint(domain.KindBundle)

	gen := c.Generation()
	assert.True(t, c.PutIfCurrent(gen, fp, domain.Artifact{Bytes: []byte("fresh")}))

	c.Clear()
	assert.False(t, c.PutIfCurrent(gen, fp, domain.Artifact{Bytes: []byte("stale")}))
	assert.Equal(t, 0, c.Len())

	assert.True(t, c.PutIfCurrent(c.Generation(), fp, domain.Artifact{Bytes: []byte("fresh")}))
	assert.Equal(t, 1, c.Len())
}

func TestCache_Concurrency(t *testing.T) {
	c := cache.New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fp := domain.Fingerprint{Entry: fmt.Sprintf("entry-%d", i), Platform: "ios"}
			c.Put(fp, domain.Artifact{Bytes: []byte{byte(i)}})
			got, ok := c.Get(fp)
			assert.True(t, ok)
			assert.Equal(t, []byte{byte(i)}, got.Bytes)
			if i%10 == 0 {
				c.Clear()
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
