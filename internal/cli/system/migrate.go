package system

import (
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
)

type MigrateCmd struct{}

// Run applies pending schema migrations and prints the resulting version.
func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if !ctx.Store.StructuredOK() {
		return fmt.Errorf("structured store unavailable; nothing to migrate")
	}

	count, err := ctx.Store.ApplyMigrations(func(msg string, keyvals ...interface{}) {
		line := msg
		for i := 0; i+1 < len(keyvals); i += 2 {
			line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
		}
		fmt.Println(line)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	current, _, err := ctx.Store.SchemaVersion()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Printf("No migrations to apply. Schema is at version %d.\n", current)
	} else {
		fmt.Printf("Applied %d migration(s). Schema is at version %d.\n", count, current)
	}
	return nil
}
