// Package main provides a tool to fill the catalog outside of the running server.
//
// It inserts the sample books and imports any JSON catalog files given as
// arguments. Run it while the server is stopped; it opens the same database
// and search index.
//
// Usage:
//
//	DATA_PATH=~/BookBuddy/data go run ./cmd/seed
//	DATA_PATH=~/BookBuddy/data go run ./cmd/seed --skip-sample books.json more.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/bookbuddy/bookbuddy-server/internal/logger"
	"github.com/bookbuddy/bookbuddy-server/internal/search"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

var skipSample = flag.Bool("skip-sample", false, "Only import files, don't insert the sample books")

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/BookBuddy/data")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}

	fmt.Printf("Opening catalog at: %s\n", dataPath)

	l := logger.New(logger.Config{Level: logger.ParseLevel("warn")})

	db, err := sqlite.Open(filepath.Join(dataPath, "bookbuddy.db"), l.Logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: dataPath, Logger: l.Logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()
	db.SetSearchIndexer(index)

	books := service.NewBookService(db, index, nil, validation.New(), l.Logger)
	ctx := context.Background()

	if !*skipSample {
		n, err := books.SeedBooks(ctx)
		if err != nil {
			log.Fatalf("Failed to seed sample books: %v", err)
		}
		fmt.Printf("Inserted %d sample books\n", n)
	}

	for _, path := range flag.Args() {
		result, err := books.ImportFile(ctx, path)
		if err != nil {
			log.Printf("Failed to import %s: %v", path, err)
			continue
		}
		fmt.Printf("%s: imported %d, rejected %d\n", path, len(result.Imported), len(result.Failed))
		for _, f := range result.Failed {
			fmt.Printf("  #%d %q: %s\n", f.Index, f.Title, f.Error)
		}
	}

	count, err := db.CountBooks(ctx)
	if err != nil {
		log.Fatalf("Failed to count books: %v", err)
	}
	fmt.Printf("\nCatalog now holds %d books\n", count)
}
