package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reelvault/pkg/models"
)

// EntryRepo persists catalog entries. The in-memory engine only ever sees
// what these methods confirm; on error nothing is applied upstream.
type EntryRepo struct {
	DB *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{DB: db}
}

const entryColumns = `id, path, title, year, notes, rating, watched, favorite, size, meta, created_at`

func scanEntry(row interface{ Scan(...any) error }) (models.Entry, error) {
	var (
		e       models.Entry
		created time.Time
	)
	err := row.Scan(
		&e.ID, &e.Path, &e.Title, &e.Year, &e.Notes, &e.Rating,
		&e.Watched, &e.Favorite, &e.Size, &e.Meta, &created,
	)
	if err != nil {
		return models.Entry{}, err
	}
	e.CreatedAt = created.UTC()
	e.Tags = []models.Tag{}
	return e, nil
}

// List returns every entry, newest first, with tag snapshots attached.
func (r *EntryRepo) List(ctx context.Context) ([]models.Entry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]models.Entry, 0, 64)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	byEntry, err := r.tagsByEntry(ctx, 0)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if tags, ok := byEntry[out[i].ID]; ok {
			out[i].Tags = tags
		}
	}
	return out, nil
}

// tagsByEntry loads tag snapshots grouped by entry id. entryID 0 loads
// every association.
func (r *EntryRepo) tagsByEntry(ctx context.Context, entryID int64) (map[int64][]models.Tag, error) {
	q := `
		SELECT et.entry_id, t.id, t.name, t.color, t.created_at
		FROM entry_tags et
		JOIN tags t ON t.id = et.tag_id
	`
	var args []any
	if entryID != 0 {
		q += ` WHERE et.entry_id = ?`
		args = append(args, entryID)
	}
	q += ` ORDER BY t.name COLLATE NOCASE`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list entry tags: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.Tag)
	for rows.Next() {
		var (
			eid     int64
			t       models.Tag
			created time.Time
		)
		if err := rows.Scan(&eid, &t.ID, &t.Name, &t.Color, &created); err != nil {
			return nil, fmt.Errorf("scan entry tag: %w", err)
		}
		t.CreatedAt = created.UTC()
		out[eid] = append(out[eid], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetByID returns (nil, nil) when the entry does not exist.
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*models.Entry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE id = ?
	`, id)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	byEntry, err := r.tagsByEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if tags, ok := byEntry[id]; ok {
		e.Tags = tags
	}
	return &e, nil
}

// GetByPath returns (nil, nil) when no entry has the path. Used by the
// scanner to skip files already catalogued.
func (r *EntryRepo) GetByPath(ctx context.Context, path string) (*models.Entry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE path = ?
	`, path)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get entry by path: %w", err)
	}
	return &e, nil
}

// Create inserts a new entry and returns its id.
func (r *EntryRepo) Create(ctx context.Context, e models.Entry) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO entries (path, title, year, notes, rating, watched, favorite, size, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Path, e.Title, e.Year, e.Notes, e.Rating, e.Watched, e.Favorite, e.Size, e.Meta)
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create entry id: %w", err)
	}
	return id, nil
}

// Update applies the patch's set fields. Returns false when no row
// matched; a patch with nothing set succeeds if the entry exists.
func (r *EntryRepo) Update(ctx context.Context, id int64, patch models.EntryPatch) (bool, error) {
	var set []string
	var args []any

	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Year != nil {
		add("year", *patch.Year)
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	if patch.Rating != nil {
		add("rating", *patch.Rating)
	}
	if patch.Watched != nil {
		add("watched", *patch.Watched)
	}
	if patch.Favorite != nil {
		add("favorite", *patch.Favorite)
	}
	if patch.Meta != nil {
		add("meta", *patch.Meta)
	}
	if len(set) == 0 {
		return r.exists(ctx, id)
	}

	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, `
		UPDATE entries SET `+strings.Join(set, ", ")+`
		WHERE id = ?
	`, args...)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *EntryRepo) exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM entries WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("entry exists: %w", err)
	}
	return true, nil
}

// Delete removes one entry; entry_tags rows cascade.
func (r *EntryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
