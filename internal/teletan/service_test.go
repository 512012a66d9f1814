package teletan

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewService(NewRedisStore(client, "test:teletan:"), ttl), m
}

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Len(t, code, 10)
		assert.True(t, IsWellFormed(code), "generated code %q fails its own format check", code)
	}
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, IsWellFormed("R3ZNUEV9JA"))

	for _, bad := range []string{
		"",
		"R3ZNUEV9J",    // too short
		"R3ZNUEV9JAA",  // too long
		"r3znuev9ja",   // lowercase
		"R3ZNUEV9J0",   // ambiguous 0
		"R3ZNUEV9JO",   // ambiguous O
		"R3ZNUEV9JI",   // ambiguous I
		"R3ZNUEV9JL",   // ambiguous L
		"R3ZN UEV9J",   // whitespace
		"ABCD-1234",    // wrong shape entirely
	} {
		assert.False(t, IsWellFormed(bad), "input %q", bad)
	}
}

func TestService_MintValidateRedeem(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	code, err := svc.GenerateTeleTan(ctx)
	require.NoError(t, err)

	ok, err := svc.IsValid(ctx, code)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Redeem(ctx, code))

	// consumed codes are no longer valid
	ok, err = svc.IsValid(ctx, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_UnknownCodeInvalid(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	ok, err := svc.IsValid(context.Background(), "R3ZNUEV9JA")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_MalformedCodeSkipsStore(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	ok, err := svc.IsValid(context.Background(), "abcd-1234!")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_TTLExpiry(t *testing.T) {
	svc, m := newTestService(t, time.Second)
	ctx := context.Background()

	code, err := svc.GenerateTeleTan(ctx)
	require.NoError(t, err)

	ok, err := svc.IsValid(ctx, code)
	require.NoError(t, err)
	assert.True(t, ok)

	// advance miniredis clock past TTL
	m.FastForward(2 * time.Second)

	ok, err = svc.IsValid(ctx, code)
	require.NoError(t, err)
	assert.False(t, ok)
}
