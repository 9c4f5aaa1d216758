package system

import (
	"github.com/julianstephens/tracker/internal/cli"
)

// InitCmd only reports: opening the store already created and migrated it.
type InitCmd struct{}

func (c *InitCmd) Run(ctx *cli.Context) error {
	def, err := ctx.Categories.Default()
	if err != nil {
		return err
	}
	current, _, err := ctx.Engine.SchemaVersion()
	if err != nil {
		return err
	}

	ctx.Printf("Initialized tracker storage at: %s\n", ctx.Engine.Path())
	ctx.Printf("Schema version: %d\n", current)
	ctx.Printf("Default category: %s\n", def.Title)
	return nil
}
