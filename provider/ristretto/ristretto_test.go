package ristretto

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, Metrics: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRoundTripAfterWait(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	val := []byte("frame")
	ok, err := p.Set(ctx, "k", val, int64(len(val)), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	p.Wait()

	got, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, val, got)
	require.NotNil(t, p.Metrics())

	require.NoError(t, p.Del(ctx, "k"))
	p.Wait()
	_, ok, _ = p.Get(ctx, "k")
	require.False(t, ok)
}

func TestUnexpectedValueShapeIsDropped(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	p.c.Set("odd", 42, 1)
	p.Wait()
	_, ok, err := p.Get(ctx, "odd")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConfigValidation(t *testing.T) {
	_, err := New(Config{NumCounters: 10})
	require.Error(t, err)
}
