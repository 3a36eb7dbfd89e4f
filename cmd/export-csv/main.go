package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelvault/internal/storage"
	"reelvault/pkg/config"
	"reelvault/pkg/database"
)

func main() {
	var (
		entriesOut = flag.String("entries", "data/entries.csv", "output CSV path for entries")
		tagsOut    = flag.String("tags", "data/tags.csv", "output CSV path for tags")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportEntries(ctx, storage.NewEntryRepo(db), *entriesOut); err != nil {
		log.Fatalf("export entries failed: %v", err)
	}
	if err := exportTags(ctx, storage.NewTagRepo(db), *tagsOut); err != nil {
		log.Fatalf("export tags failed: %v", err)
	}

	log.Printf("exported entries to %s and tags to %s", *entriesOut, *tagsOut)
}

func exportEntries(ctx context.Context, repo *storage.EntryRepo, outPath string) error {
	entries, err := repo.List(ctx)
	if err != nil {
		return err
	}

	f, err := createOut(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "path", "title", "year", "rating", "watched", "favorite", "tags", "notes", "created_at"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		tagNames := make([]string, len(e.Tags))
		for i, t := range e.Tags {
			tagNames[i] = t.Name
		}
		rec := []string{
			strconv.FormatInt(e.ID, 10),
			e.Path,
			e.Title,
			strconv.Itoa(e.Year),
			strconv.Itoa(e.Rating),
			strconv.FormatBool(e.Watched),
			strconv.FormatBool(e.Favorite),
			strings.Join(tagNames, "|"),
			e.Notes,
			e.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func exportTags(ctx context.Context, repo *storage.TagRepo, outPath string) error {
	tags, err := repo.List(ctx)
	if err != nil {
		return err
	}

	f, err := createOut(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "color", "created_at"}); err != nil {
		return err
	}
	for _, t := range tags {
		rec := []string{
			strconv.FormatInt(t.ID, 10),
			t.Name,
			t.Color,
			t.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func createOut(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}
