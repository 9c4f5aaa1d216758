package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/models"
)

type InspectCmd struct {
	DBPath InspectDBPathCmd `cmd:"" name:"db-path" help:"Show database path."`
	Dump   InspectDumpCmd   `cmd:"" help:"Dump all data as JSON."`
}

type InspectDBPathCmd struct{}

func (cmd *InspectDBPathCmd) Run(ctx *cli.Context) error {
	return writeJSON(ctx, map[string]string{
		"path":  ctx.Engine.Path(),
		"prefs": ctx.Prefs.Path(),
	})
}

type dump struct {
	Categories []models.Category `json:"categories"`
	Trackers   []models.Tracker  `json:"trackers"`
	Records    []models.Record   `json:"records"`
}

type InspectDumpCmd struct{}

func (cmd *InspectDumpCmd) Run(ctx *cli.Context) error {
	var d dump
	var err error

	if d.Categories, err = ctx.Categories.List(); err != nil {
		return err
	}
	// trackers are listed on their own
	for i := range d.Categories {
		d.Categories[i].Trackers = nil
	}
	if d.Trackers, err = ctx.Trackers.List(); err != nil {
		return err
	}
	if d.Records, err = ctx.Records.ListAll(); err != nil {
		return err
	}
	return writeJSON(ctx, d)
}

func writeJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
