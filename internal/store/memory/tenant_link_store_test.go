package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

func TestMemoryTenantLinkStore_Create(t *testing.T) {
	t.Run("create new link", func(t *testing.T) {
		st := NewTenantLinkStore()
		ctx := context.Background()

		link := &models.TenantLink{
			LinkID:     uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
			OrgID:      uuid.Must(uuid.NewV7()),
			Role:       models.TenantRoleAdmin,
			CreatedAt:  time.Now(),
		}
		require.NoError(t, st.Create(ctx, link))

		retrieved, err := st.GetByIdentity(ctx, link.IdentityID)
		require.NoError(t, err)
		require.Equal(t, link.OrgID, retrieved.OrgID)
		require.Equal(t, models.TenantRoleAdmin, retrieved.Role)
	})

	t.Run("second link for same identity returns error", func(t *testing.T) {
		st := NewTenantLinkStore()
		ctx := context.Background()

		identityID := uuid.Must(uuid.NewV7())

		link := &models.TenantLink{
			LinkID:     uuid.Must(uuid.NewV7()),
			IdentityID: identityID,
			OrgID:      uuid.Must(uuid.NewV7()),
			Role:       models.TenantRoleAdmin,
		}
		require.NoError(t, st.Create(ctx, link))

		second := &models.TenantLink{
			LinkID:     uuid.Must(uuid.NewV7()),
			IdentityID: identityID,
			OrgID:      uuid.Must(uuid.NewV7()),
			Role:       models.TenantRoleAgent,
		}
		err := st.Create(ctx, second)
		require.ErrorIs(t, err, store.ErrTenantLinkAlreadyExists)
	})
}

func TestMemoryTenantLinkStore_GetByIdentity(t *testing.T) {
	st := NewTenantLinkStore()
	ctx := context.Background()

	_, err := st.GetByIdentity(ctx, uuid.Must(uuid.NewV7()))
	require.ErrorIs(t, err, store.ErrTenantLinkNotFound)
}
