package commands

import (
	"context"
	"fmt"

	"github.com/imovia/imovia/internal/logger"
)

type SignoutCmd struct {
	Auth  AuthFlags  `embed:""`
	Store StoreFlags `embed:""`
}

func (c *SignoutCmd) Run(ctx context.Context, globals *Globals) error {
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

	if err := manager.SignOut(ctx); err != nil {
		// The local session is gone either way; the provider just was
		// not told about it.
		fmt.Println("Signed out locally, but the identity provider call failed:", err)
		return err
	}

	fmt.Println("Signed out.")
	return nil
}
