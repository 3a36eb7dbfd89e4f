package catalog

import (
	"time"

	"reelvault/pkg/models"
)

var testEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// entry builds a test entry whose creation time increases with id, so
// ByCreatedDesc orders by descending id.
func entry(id int64, title string, tags ...models.Tag) models.Entry {
	return models.Entry{
		ID:        id,
		Path:      "/videos/" + title + ".mkv",
		Title:     title,
		Tags:      tags,
		CreatedAt: testEpoch.Add(time.Duration(id) * time.Minute),
	}
}

func tag(id int64, name string) models.Tag {
	return models.Tag{
		ID:        id,
		Name:      name,
		Color:     "#aabbcc",
		CreatedAt: testEpoch.Add(time.Duration(id) * time.Minute),
	}
}

func titles(entries []models.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}

func names(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}
