package syncs

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type DisconnectCmd struct{}

func (c *DisconnectCmd) Run(ctx *cli.Context) error {
	if err := ctx.Calendar.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	fmt.Println("Calendar disconnected; credentials and sync status cleared.")
	return nil
}
