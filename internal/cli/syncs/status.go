package syncs

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	if ctx.Calendar.Connected() {
		fmt.Println("Calendar: connected")
	} else {
		fmt.Println("Calendar: not connected")
	}

	status := ctx.Store.GetSyncStatus()
	if status == nil || status.LastSyncDate == nil {
		fmt.Println("Last sync: never")
		return nil
	}
	fmt.Printf("Last sync: %s (%d activities)\n", *status.LastSyncDate, len(status.SyncedActivityIDs))
	return nil
}
