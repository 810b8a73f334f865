package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/models"
)

type RegisterOrgCmd struct {
	Name    string `help:"agency name" required:""`
	CNPJ    string `help:"company registry number" required:""`
	Phone   string `help:"contact phone"`
	Email   string `help:"contact email" required:""`
	Address string `help:"street address"`
	CRECI   string `help:"realtor registry number"`

	Auth  AuthFlags  `embed:""`
	Store StoreFlags `embed:""`
}

func (c *RegisterOrgCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	st, err := buildStores(ctx, c.Store)
	if err != nil {
		return err
	}
	defer st.close()

	manager, err := startSession(ctx, c.Auth, st)
	if err != nil {
		return err
	}
	defer manager.Stop()

	snap := manager.Snapshot()
	if snap.Identity == nil {
		return errors.New("sign in before registering an organization")
	}
	if snap.Org != nil {
		return fmt.Errorf("already registered with %s", snap.Org.Name)
	}

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      c.Name,
		CNPJ:      c.CNPJ,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CRECI:     c.CRECI,
		Status:    models.OrganizationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.orgs.Create(ctx, org); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	link := &models.TenantLink{
		LinkID:     uuid.Must(uuid.NewV7()),
		IdentityID: snap.Identity.ID,
		OrgID:      org.OrgID,
		Role:       models.TenantRoleAdmin,
		CreatedAt:  now,
	}
	if err := st.links.Create(ctx, link); err != nil {
		return fmt.Errorf("failed to link identity to organization: %w", err)
	}

	fmt.Printf("Registered %s (%s). Status: %s\n", org.Name, org.OrgID, org.Status)
	fmt.Println("Publishing unlocks once the registration is approved.")
	return nil
}
