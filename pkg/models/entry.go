package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Entry is one catalogued video file. Path is the only required field;
// everything else is user-entered or filled in from an external metadata
// provider. Tags is a denormalized snapshot of the entry's tags, refreshed
// whenever the entry is reloaded from storage.
type Entry struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title,omitempty"`
	Year      int       `json:"year,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Watched   bool      `json:"watched"`
	Favorite  bool      `json:"favorite"`
	Size      int64     `json:"size,omitempty"`
	Meta      string    `json:"meta,omitempty"` // opaque provider JSON, searched as text
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayTitle falls back to the file name when no title has been set.
func (e Entry) DisplayTitle() string {
	if strings.TrimSpace(e.Title) != "" {
		return e.Title
	}
	base := filepath.Base(e.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (e Entry) HasTag(tagID int64) bool {
	for _, t := range e.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// EntryPatch is a partial update; nil fields are left untouched.
type EntryPatch struct {
	Title    *string `json:"title,omitempty"`
	Year     *int    `json:"year,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Rating   *int    `json:"rating,omitempty"`
	Watched  *bool   `json:"watched,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
	Meta     *string `json:"meta,omitempty"`
}

// Apply copies the patch's non-nil fields onto the entry.
func (p EntryPatch) Apply(e *Entry) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Year != nil {
		e.Year = *p.Year
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.Rating != nil {
		e.Rating = *p.Rating
	}
	if p.Watched != nil {
		e.Watched = *p.Watched
	}
	if p.Favorite != nil {
		e.Favorite = *p.Favorite
	}
	if p.Meta != nil {
		e.Meta = *p.Meta
	}
}
