package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewPIIMiddleware([]string{"(?i)password", "(?i)ssn"})(underlying)

	ctx := context.Background()
	snap := domain.NewSnapshot("pii", "", domain.NewStore(map[string]any{
		"username":      "jdoe",
		"user_password": "secret123",
		"details": map[string]any{
			"address":    "123 St",
			"ssn_number": "999-99-9999",
		},
	}))

	require.NoError(t, secure.Save(ctx, "pii", snap))

	// the live snapshot is untouched
	assert.Equal(t, "secret123", snap.Store["user_password"])
	assert.Equal(t, "999-99-9999", snap.Store["details"].(map[string]any)["ssn_number"])

	stored, err := underlying.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.Store["username"])
	assert.Equal(t, "***", stored.Store["user_password"])
	details := stored.Store["details"].(map[string]any)
	assert.Equal(t, "***", details["ssn_number"])
	assert.Equal(t, "123 St", details["address"])
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	underlying := memory.NewStore()
	key := generateKey(t)

	// masking runs before sealing, so the decrypted copy is masked too
	store := middleware.Chain(underlying,
		middleware.NewPIIMiddleware([]string{"token"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "r", domain.NewSnapshot("r", "", domain.NewStore(map[string]any{"token": "abc"}))))

	raw, err := underlying.Load(ctx, "r")
	require.NoError(t, err)
	assert.Contains(t, raw.Store, "__encrypted__")

	loaded, err := store.Load(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.Store["token"])
}
