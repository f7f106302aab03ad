package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/sketchnotes"
	"github.com/aretw0/sketchnotes/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to create")
	adapter := flag.String("adapter", sketchnotes.AdapterFS, "Storage adapter: fs|sqlite|memory")
	keep := flag.Bool("keep", false, "Keep the benchmark data after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "sketchnotes_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	app, err := sketchnotes.New(benchDir, sketchnotes.WithAdapter(*adapter), sketchnotes.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer app.Close()

	ctx := context.Background()

	// Every create rewrites the whole collection, so this grows quadratically.
	fmt.Printf("Creating %d notes with the %s adapter in %s...\n", *count, *adapter, benchDir)
	start := time.Now()
	for i := 0; i < *count; i++ {
		_, err := app.Notes.Create(ctx, core.NoteInput{
			Title:       fmt.Sprintf("Note %d", i),
			Description: "benchmark note",
		})
		if err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)
	fmt.Printf("Create took: %v (%v/op)\n", elapsed, elapsed/time.Duration(max(*count, 1)))

	start = time.Now()
	notes, err := app.Notes.Load(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Load of %d notes took: %v\n", len(notes), time.Since(start))

	if len(notes) > 0 {
		start = time.Now()
		if _, err := app.Notes.ToggleDone(ctx, notes[len(notes)/2].ID); err != nil {
			panic(err)
		}
		fmt.Printf("Toggle took: %v\n", time.Since(start))
	}
}
