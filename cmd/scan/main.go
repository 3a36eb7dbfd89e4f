package main

import (
	"context"
	"flag"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"reelvault/internal/storage"
	"reelvault/pkg/config"
	"reelvault/pkg/database"
	"reelvault/pkg/models"
)

// Recognized video container extensions, lowercase.
var videoExts = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".m4v":  true,
	".wmv":  true,
	".webm": true,
	".ts":   true,
	".mpg":  true,
	".mpeg": true,
}

type candidate struct {
	path string
	size int64
}

func main() {
	root := flag.String("root", ".", "folder to scan for video files")
	dryRun := flag.Bool("dry-run", false, "list what would be imported without writing")
	flag.Parse()

	absRoot, err := filepath.Abs(*root)
	if err != nil {
		log.Fatalf("[scan] resolve root: %v", err)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		log.Fatalf("[scan] %s is not a directory", absRoot)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("[scan] load config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[scan] db migrate failed: %v", err)
	}

	candidates, err := collect(absRoot)
	if err != nil {
		log.Fatalf("[scan] walk %s: %v", absRoot, err)
	}
	log.Printf("[scan] found %d video files under %s", len(candidates), absRoot)
	if len(candidates) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	repo := storage.NewEntryRepo(db)
	bar := progressbar.Default(int64(len(candidates)), "importing")

	var (
		added     int
		skipped   int
		failed    int
		totalSize int64
	)
	for _, c := range candidates {
		_ = bar.Add(1)

		existing, err := repo.GetByPath(ctx, c.path)
		if err != nil {
			log.Printf("[scan] lookup %s: %v", c.path, err)
			failed++
			continue
		}
		if existing != nil {
			skipped++
			continue
		}
		if *dryRun {
			added++
			totalSize += c.size
			continue
		}

		_, err = repo.Create(ctx, models.Entry{
			Path:  c.path,
			Title: titleFromPath(c.path),
			Size:  c.size,
		})
		if err != nil {
			log.Printf("[scan] insert %s: %v", c.path, err)
			failed++
			continue
		}
		added++
		totalSize += c.size
	}

	verb := "imported"
	if *dryRun {
		verb = "would import"
	}
	log.Printf("[scan] %s %d entries (%s), skipped %d already catalogued, %d failed",
		verb, added, humanize.Bytes(uint64(totalSize)), skipped, failed)
}

func collect(root string) ([]candidate, error) {
	var out []candidate
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Printf("[scan] skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			// hidden directories are never catalogued
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !videoExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, candidate{path: path, size: info.Size()})
		return nil
	})
	return out, err
}

// titleFromPath turns "/videos/The.Big.Heat.1953.mkv" into
// "The Big Heat 1953" as a starting title the user can edit later.
func titleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer(".", " ", "_", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}
