package syncs

import (
	"context"
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type TestCmd struct{}

func (c *TestCmd) Run(ctx *cli.Context) error {
	result := ctx.Calendar.TestConnection(context.Background())
	if result.IsValid {
		fmt.Println("✓ Calendar connection OK")
		if result.Details != "" {
			fmt.Println("  " + result.Details)
		}
		return nil
	}
	fmt.Printf("✗ Calendar connection failed: %s\n", result.Error)
	if result.Details != "" {
		fmt.Println("  " + result.Details)
	}
	return nil
}
