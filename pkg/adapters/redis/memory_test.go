package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisMemory_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunMemoryStoreContract(t, redis.NewMemory(client, ""))
}

func TestRedisMemory_TTL(t *testing.T) {
	mr, client := newClient(t)
	mem := redis.NewMemory(client, "test:mem:")
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "token", "abc", 10*time.Second))
	assert.True(t, mr.Exists("test:mem:token"))
	assert.Equal(t, 10*time.Second, mr.TTL("test:mem:token"))

	mr.FastForward(11 * time.Second)

	_, ok, err := mem.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMemory_NumbersComeBackAsFloat(t *testing.T) {
	_, client := newClient(t)
	mem := redis.NewMemory(client, "")
	ctx := context.Background()

	require.NoError(t, mem.Set(ctx, "n", 3, 0))
	v, ok, err := mem.Get(ctx, "n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(3), v)
}
