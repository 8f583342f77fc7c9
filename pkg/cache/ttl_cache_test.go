package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetGet(t *testing.T) {
	req := require.New(t)

	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	v, ok := c.Get("a")
	req.True(ok)
	req.Equal(1, v)

	_, ok = c.Get("missing")
	req.False(ok)
}

func TestTTLCache_Expiry(t *testing.T) {
	req := require.New(t)

	c := New[string, string](10*time.Millisecond, time.Minute)
	defer c.Close()

	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")
	req.False(ok, "süresi dolan entry okunamaz")
}

func TestTTLCache_Delete(t *testing.T) {
	req := require.New(t)

	c := New[string, int](time.Minute, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	req.False(ok)
	req.Zero(c.Len())
}

func TestTTLCache_SetOverwritesAndRenewsTTL(t *testing.T) {
	req := require.New(t)

	c := New[string, int](30*time.Millisecond, time.Minute)
	defer c.Close()

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	c.Set("a", 2)
	time.Sleep(20 * time.Millisecond)

	// İkinci Set TTL'i yeniledi — entry hâlâ okunabilir
	v, ok := c.Get("a")
	req.True(ok)
	req.Equal(2, v)
}
