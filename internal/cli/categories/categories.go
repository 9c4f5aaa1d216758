package categories

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tracker/internal/cli"
	apperrors "github.com/julianstephens/tracker/internal/errors"
)

type CategoryAddCmd struct {
	Title string `arg:"" help:"Category title."`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	_, existed, err := ctx.Categories.FindByTitle(c.Title)
	if err != nil {
		return err
	}
	cat, err := ctx.Categories.Create(c.Title)
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}

	if existed {
		ctx.Printf("Category already exists: %s (ID: %d)\n", cat.Title, cat.ID)
		return nil
	}
	ctx.Printf("Added category: %s (ID: %d)\n", cat.Title, cat.ID)
	return nil
}

type CategoryRenameCmd struct {
	Category string `arg:"" help:"Category title or ID."`
	Title    string `arg:"" help:"New title."`
}

func (c *CategoryRenameCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.ResolveCategory(c.Category)
	if err != nil {
		return err
	}
	if err := ctx.Categories.Rename(cat.ID, c.Title); err != nil {
		if errors.Is(err, apperrors.ErrDefaultCategory) {
			return fmt.Errorf("%q is the default category and cannot be renamed: %w", cat.Title, err)
		}
		return fmt.Errorf("failed to rename category: %w", err)
	}

	ctx.Printf("Renamed category: %s -> %s\n", cat.Title, c.Title)
	return nil
}

type CategoryDeleteCmd struct {
	Category string `arg:"" help:"Category title or ID."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.ResolveCategory(c.Category)
	if err != nil {
		return err
	}

	if n := len(cat.Trackers); n > 0 {
		def, err := ctx.Categories.Default()
		if err != nil {
			return err
		}
		ok, err := ctx.Ask(
			fmt.Sprintf("Delete category %q?", cat.Title),
			fmt.Sprintf("%d tracker(s) will move to %q.", n, def.Title),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Categories.Delete(cat.ID); err != nil {
		if errors.Is(err, apperrors.ErrDefaultCategory) {
			return fmt.Errorf("%q is the default category and cannot be deleted", cat.Title)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	ctx.Printf("Deleted category: %s\n", cat.Title)
	return nil
}

type CategoryListCmd struct {
	ShowIDs bool `help:"Show category IDs." name:"show-ids"`
}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Categories.List()
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	ctx.Println(cli.HeaderStyle.Render("Categories:"))
	for _, cat := range list {
		id := ""
		if c.ShowIDs {
			id = fmt.Sprintf(" (ID: %d)", cat.ID)
		}
		ctx.Printf("  %s%s %s\n", cat.Title, id, cli.MutedStyle.Render(fmt.Sprintf("- %d tracker(s)", len(cat.Trackers))))
	}
	return nil
}
