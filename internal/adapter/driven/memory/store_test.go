package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/peerportal/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

func TestCredentialStore_ReadEmpty(t *testing.T) {
	store := NewStores().ForSession("s1")

	snap, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.CredentialSnapshot{TokenType: model.DefaultTokenType}, snap)
}

func TestCredentialStore_WriteMerges(t *testing.T) {
	ctx := context.Background()
	store := NewStores().ForSession("s1")

	require.NoError(t, store.Write(ctx, model.CredentialUpdate{Token: ptr("t1"), Role: ptr(model.RoleTeacher), UserID: ptr("u1")}))
	require.NoError(t, store.Write(ctx, model.CredentialUpdate{DisplayName: ptr("Amy")}))

	snap, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CredentialSnapshot{
		TokenType:   model.DefaultTokenType,
		Token:       "t1",
		Role:        model.RoleTeacher,
		UserID:      "u1",
		DisplayName: "Amy",
	}, snap)
}

func TestCredentialStore_ClearIsolatedPerSession(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()
	a, b := stores.ForSession("a"), stores.ForSession("b")

	require.NoError(t, a.Write(ctx, model.CredentialUpdate{Token: ptr("ta")}))
	require.NoError(t, b.Write(ctx, model.CredentialUpdate{Token: ptr("tb")}))
	require.NoError(t, a.Clear(ctx))

	snapA, err := a.Read(ctx)
	require.NoError(t, err)
	snapB, err := b.Read(ctx)
	require.NoError(t, err)

	assert.Empty(t, snapA.Token)
	assert.Equal(t, "tb", snapB.Token)
	assert.Equal(t, 1, stores.Len())
}

func TestCredentialStore_EmptyUpdateCreatesNothing(t *testing.T) {
	stores := NewStores()
	require.NoError(t, stores.ForSession("s1").Write(context.Background(), model.CredentialUpdate{}))
	assert.Zero(t, stores.Len())
}

func TestCredentialStore_ConcurrentWriteClearRead(t *testing.T) {
	ctx := context.Background()
	store := NewStores().ForSession("s1")

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines * 3)

	for range goroutines {
		go func() {
			defer wg.Done()
			_ = store.Write(ctx, model.CredentialUpdate{Token: ptr("t1"), Role: ptr(model.RoleStudent), UserID: ptr("S01")})
		}()
		go func() {
			defer wg.Done()
			_ = store.Clear(ctx)
		}()
		go func() {
			defer wg.Done()
			snap, err := store.Read(ctx)
			assert.NoError(t, err)
			// A read sees a whole write or nothing, never a partial one.
			if snap.Token != "" {
				assert.Equal(t, "S01", snap.UserID)
			}
		}()
	}

	wg.Wait()
}
