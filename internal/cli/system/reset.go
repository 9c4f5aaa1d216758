package system

import (
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
)

// ResetCmd deletes every completion record. Trackers and categories stay.
type ResetCmd struct{}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	n, err := ctx.Records.Count()
	if err != nil {
		return err
	}
	if n == 0 {
		ctx.Println("Nothing to reset.")
		return nil
	}

	ok, err := ctx.Ask(
		"Delete all completion history?",
		fmt.Sprintf("%d record(s) will be removed. A backup is taken first.", n),
	)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Reset cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Records.DeleteAll(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	ctx.Printf("Deleted %d record(s).\n", n)
	return nil
}
