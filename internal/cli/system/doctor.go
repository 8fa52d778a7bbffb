package system

import (
	"context"
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/keyring"
)

type DoctorCmd struct{}

// Run reports the health of every storage and integration surface.
func (c *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("planner doctor")
	fmt.Println()

	if ctx.Store.StructuredOK() {
		fmt.Println("✓ structured store: available")
		current, latest, err := ctx.Store.SchemaVersion()
		switch {
		case err != nil:
			fmt.Printf("✗ schema version: %v\n", err)
		case current < latest:
			fmt.Printf("✗ schema version: %d behind latest %d (run 'planner migrate')\n", current, latest)
		default:
			fmt.Printf("✓ schema version: %d (latest %d)\n", current, latest)
		}
	} else {
		fmt.Println("✗ structured store: unavailable (running on key-value fallback)")
	}

	// The facade guarantees reads succeed either way; exercise one
	presets := ctx.Store.GetPresets()
	fmt.Printf("✓ persistence: readable (%d presets)\n", len(presets))

	if keyring.IsAvailable() {
		fmt.Println("✓ OS keyring: available")
	} else {
		fmt.Println("✗ OS keyring: unavailable (credentials fall back to the key-value store)")
	}

	if ctx.Notifier != nil {
		if _, err := ctx.Notifier.ListPending(); err != nil {
			fmt.Printf("✗ notifier tray: %v\n", err)
		} else {
			fmt.Println("✓ notifier tray: reachable")
		}
	}

	if ctx.Calendar != nil && ctx.Calendar.Connected() {
		result := ctx.Calendar.TestConnection(context.Background())
		if result.IsValid {
			fmt.Println("✓ calendar: connected and reachable")
		} else {
			fmt.Printf("✗ calendar: %s\n", result.Error)
		}
	} else {
		fmt.Println("- calendar: not connected")
	}

	return nil
}
