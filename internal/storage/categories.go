package storage

import (
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/events"
	"github.com/julianstephens/tracker/internal/logger"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/validation"
)

// CategoryRepository manages categories. Titles are the lookup key; the
// schema has no unique constraint, so uniqueness is checked here.
type CategoryRepository struct {
	engine *Engine
}

// NewCategoryRepository makes sure the default category exists.
func NewCategoryRepository(engine *Engine) (*CategoryRepository, error) {
	r := &CategoryRepository{engine: engine}
	if err := r.EnsureDefault(); err != nil {
		return nil, err
	}
	return r, nil
}

// EnsureDefault creates the default category when no category exists and
// moves trackers without a category into the default one.
func (r *CategoryRepository) EnsureDefault() error {
	return r.engine.Save(func(u *UnitOfWork) error {
		var count int
		if err := u.QueryRow("SELECT count(*) FROM categories").Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			if _, err := u.Exec("INSERT INTO categories (title) VALUES (?)", r.engine.DefaultCategory()); err != nil {
				return fmt.Errorf("failed to create default category: %w", err)
			}
			logger.Info("Created default category", "title", r.engine.DefaultCategory())
			u.Touch(events.CategoriesChanged)
		}

		var orphans int
		if err := u.QueryRow("SELECT count(*) FROM trackers WHERE category_id IS NULL").Scan(&orphans); err != nil {
			return err
		}
		if orphans > 0 {
			id, err := r.defaultIDTx(u)
			if err != nil {
				return err
			}
			if _, err := u.Exec("UPDATE trackers SET category_id = ? WHERE category_id IS NULL", id); err != nil {
				return err
			}
			logger.Warn("Moved trackers without a category to the default category", "count", orphans)
			u.Touch(events.TrackersChanged)
		}
		return nil
	})
}

// defaultIDTx returns the id of the default category, creating it if it was
// renamed away.
func (r *CategoryRepository) defaultIDTx(u *UnitOfWork) (int64, error) {
	var id int64
	err := u.QueryRow("SELECT id FROM categories WHERE title = ? ORDER BY id LIMIT 1", r.engine.DefaultCategory()).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := u.Exec("INSERT INTO categories (title) VALUES (?)", r.engine.DefaultCategory())
	if err != nil {
		return 0, fmt.Errorf("failed to create default category: %w", err)
	}
	u.Touch(events.CategoriesChanged)
	return res.LastInsertId()
}

// Create inserts a category. If the title is taken the existing category is
// returned instead.
func (r *CategoryRepository) Create(title string) (models.Category, error) {
	if err := validation.CategoryTitle(title); err != nil {
		return models.Category{}, err
	}

	var created models.Category
	err := r.engine.Save(func(u *UnitOfWork) error {
		err := u.QueryRow("SELECT id, title FROM categories WHERE title = ? ORDER BY id LIMIT 1", title).
			Scan(&created.ID, &created.Title)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		res, err := u.Exec("INSERT INTO categories (title) VALUES (?)", title)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		created = models.Category{ID: id, Title: title}
		u.Touch(events.CategoriesChanged)
		return nil
	})
	if err != nil {
		logger.Error("Failed to create category", "title", title, "error", err)
		return models.Category{}, err
	}
	return created, nil
}

// Rename changes a category title in place. A title used by another category
// is rejected, and so is renaming the default category.
func (r *CategoryRepository) Rename(id int64, newTitle string) error {
	if err := validation.CategoryTitle(newTitle); err != nil {
		return err
	}

	return r.engine.Save(func(u *UnitOfWork) error {
		var current string
		err := u.QueryRow("SELECT title FROM categories WHERE id = ?", id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("category", fmt.Sprint(id))
		}
		if err != nil {
			return err
		}
		if current == newTitle {
			return nil
		}
		if current == r.engine.DefaultCategory() {
			return apperrors.ErrDefaultCategory
		}

		var taken int
		if err := u.QueryRow("SELECT count(*) FROM categories WHERE title = ? AND id != ?", newTitle, id).Scan(&taken); err != nil {
			return err
		}
		if taken > 0 {
			return apperrors.Duplicate("category", newTitle)
		}

		if _, err := u.Exec("UPDATE categories SET title = ? WHERE id = ?", newTitle, id); err != nil {
			return err
		}
		// section titles of the tracker list follow category titles
		u.Touch(events.CategoriesChanged, events.TrackersChanged)
		return nil
	})
}

// Delete removes a category after moving its trackers to the default
// category. The default category itself cannot be deleted.
func (r *CategoryRepository) Delete(id int64) error {
	return r.engine.Save(func(u *UnitOfWork) error {
		var title string
		err := u.QueryRow("SELECT title FROM categories WHERE id = ?", id).Scan(&title)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("category", fmt.Sprint(id))
		}
		if err != nil {
			return err
		}
		if title == r.engine.DefaultCategory() {
			return apperrors.ErrDefaultCategory
		}

		defaultID, err := r.defaultIDTx(u)
		if err != nil {
			return err
		}
		res, err := u.Exec("UPDATE trackers SET category_id = ? WHERE category_id = ?", defaultID, id)
		if err != nil {
			return err
		}
		if moved, _ := res.RowsAffected(); moved > 0 {
			logger.Info("Moved trackers to the default category", "from", title, "count", moved)
			u.Touch(events.TrackersChanged)
		}

		if _, err := u.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
			return err
		}
		u.Touch(events.CategoriesChanged)
		return nil
	})
}

// Get returns a category with its trackers.
func (r *CategoryRepository) Get(id int64) (models.Category, error) {
	var c models.Category
	err := r.engine.db.QueryRow("SELECT id, title FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, apperrors.NotFound("category", fmt.Sprint(id))
	}
	if err != nil {
		return models.Category{}, err
	}

	if c.Trackers, err = r.trackersOf(c.ID); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// FindByTitle looks a category up by exact, case-sensitive title.
func (r *CategoryRepository) FindByTitle(title string) (models.Category, bool, error) {
	var c models.Category
	err := r.engine.db.QueryRow("SELECT id, title FROM categories WHERE title = ? ORDER BY id LIMIT 1", title).
		Scan(&c.ID, &c.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, false, nil
	}
	if err != nil {
		return models.Category{}, false, err
	}

	if c.Trackers, err = r.trackersOf(c.ID); err != nil {
		return models.Category{}, false, err
	}
	return c, true, nil
}

// Default returns the default category.
func (r *CategoryRepository) Default() (models.Category, error) {
	c, ok, err := r.FindByTitle(r.engine.DefaultCategory())
	if err != nil {
		return models.Category{}, err
	}
	if !ok {
		return models.Category{}, apperrors.NotFound("category", r.engine.DefaultCategory())
	}
	return c, nil
}

// List returns all categories ordered by title, each with its trackers.
func (r *CategoryRepository) List() ([]models.Category, error) {
	rows, err := r.engine.db.Query("SELECT id, title FROM categories ORDER BY title, id")
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	index := make(map[int64]int)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			rows.Close()
			return nil, err
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trackerRows, err := r.engine.db.Query("SELECT " + trackerColumns + " FROM trackers t ORDER BY t.title, t.id")
	if err != nil {
		return nil, err
	}
	trackers, err := collectTrackers(trackerRows)
	if err != nil {
		return nil, err
	}
	for _, t := range trackers {
		if i, ok := index[t.CategoryID]; ok {
			categories[i].Trackers = append(categories[i].Trackers, t)
		}
	}

	return categories, nil
}

func (r *CategoryRepository) trackersOf(categoryID int64) ([]models.Tracker, error) {
	rows, err := r.engine.db.Query("SELECT "+trackerColumns+" FROM trackers t WHERE t.category_id = ? ORDER BY t.title, t.id", categoryID)
	if err != nil {
		return nil, err
	}
	return collectTrackers(rows)
}

// Subscribe delivers "categories changed" events through d.
func (r *CategoryRepository) Subscribe(d events.Dispatcher, fn func(events.Event)) *events.Subscription {
	return r.engine.Bus().Subscribe(d, fn, events.CategoriesChanged)
}
