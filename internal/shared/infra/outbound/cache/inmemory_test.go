package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type item struct {
	Nome string `json:"nome"`
}

func TestInMemoryCache_SetGetDelete(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewInMemoryCache(time.Minute, time.Minute)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "pessoa:1", item{Nome: "Ana"}, 0))

	var got item
	hit, err := c.Get(ctx, "pessoa:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Ana", got.Nome)

	require.NoError(t, c.Delete(ctx, "pessoa:1"))
	hit, err = c.Get(ctx, "pessoa:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestInMemoryCache_Expired(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewInMemoryCache(time.Nanosecond, time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", item{Nome: "x"}, 0))
	time.Sleep(time.Millisecond)

	var got item
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
