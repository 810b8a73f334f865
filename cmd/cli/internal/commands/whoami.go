package commands

import (
	"context"
	"fmt"

	"github.com/imovia/imovia/internal/authz"
	"github.com/imovia/imovia/internal/logger"
)

type WhoamiCmd struct {
	Auth  AuthFlags  `embed:""`
	Store StoreFlags `embed:""`
}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
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
		fmt.Println("Not signed in.")
	} else {
		fmt.Printf("Signed in as %s (%s)\n", snap.Identity.Email, snap.Identity.ID)
	}

	if snap.Org != nil {
		fmt.Printf("Organization: %s (%s, status %s)\n", snap.Org.Name, snap.Org.OrgID, snap.Org.Status)
	} else if snap.Identity != nil {
		fmt.Println("Organization: none")
	}

	decision := authz.Decide(snap.Identity, snap.Org, snap.OrgState)
	fmt.Printf("Publishing: %s\n", decision.Message())
	return nil
}
