package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reelvault/pkg/models"
)

type TagRepo struct {
	DB *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo {
	return &TagRepo{DB: db}
}

func (r *TagRepo) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, color, created_at
		FROM tags
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	out := make([]models.Tag, 0, 16)
	for rows.Next() {
		var (
			t       models.Tag
			created time.Time
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &created); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		t.CreatedAt = created.UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByName matches case-insensitively; returns (nil, nil) when absent.
func (r *TagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, color, created_at
		FROM tags
		WHERE name = ? COLLATE NOCASE
	`, strings.TrimSpace(name))

	var (
		t       models.Tag
		created time.Time
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Color, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag by name: %w", err)
	}
	t.CreatedAt = created.UTC()
	return &t, nil
}

func (r *TagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, name, color, created_at
		FROM tags
		WHERE id = ?
	`, id)

	var (
		t       models.Tag
		created time.Time
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Color, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	t.CreatedAt = created.UTC()
	return &t, nil
}

// Create inserts a tag and returns the stored row. Callers should check
// GetByName first; the NOCASE unique index is the backstop.
func (r *TagRepo) Create(ctx context.Context, name, color string) (*models.Tag, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO tags (name, color) VALUES (?, ?)
	`, strings.TrimSpace(name), color)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create tag id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *TagRepo) Update(ctx context.Context, id int64, patch models.TagPatch) (bool, error) {
	var set []string
	var args []any
	if patch.Name != nil {
		set = append(set, "name = ?")
		args = append(args, strings.TrimSpace(*patch.Name))
	}
	if patch.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *patch.Color)
	}
	if len(set) == 0 {
		t, err := r.GetByID(ctx, id)
		return t != nil, err
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE tags SET `+strings.Join(set, ", ")+`
		WHERE id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update tag: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes the tag; entry_tags rows cascade, detaching it from
// every entry.
func (r *TagRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete tag: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Attach links a tag to an entry; attaching twice is a no-op.
func (r *TagRepo) Attach(ctx context.Context, entryID, tagID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)
	`, entryID, tagID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

func (r *TagRepo) Detach(ctx context.Context, entryID, tagID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM entry_tags WHERE entry_id = ? AND tag_id = ?
	`, entryID, tagID)
	if err != nil {
		return false, fmt.Errorf("detach tag: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
