// Command fintrack-export reads or writes the local database without going
// through the HTTP server: export the finance data as JSON or CSV, or import
// a previously exported JSON document.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/state"
	"fintrack/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		format = flag.String("format", "json", "export format: json or csv")
		out    = flag.String("out", "", "output file (default stdout)")
		in     = flag.String("import", "", "JSON file to import instead of exporting")
		dbPath = flag.String("db", "", "database path (default from SQLITE_DB_PATH)")
	)
	flag.Parse()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if *dbPath != "" {
		cfg.SQLiteDBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fatalf("invalid configuration: %v", err)
	}

	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		fatalf("open database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	provider := state.NewProvider(ctx, store, nil)

	if *in != "" {
		runImport(ctx, provider, *in)
		return
	}
	runExport(provider, *format, *out)
}

func runImport(ctx context.Context, provider *state.Provider, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatalf("read %s: %v", path, err)
	}
	if err := provider.ImportJSON(ctx, data); err != nil {
		fatalf("import rejected: %v", err)
	}

	snap := provider.Snapshot()
	fmt.Printf("imported %d transactions, %d categories\n",
		len(snap.Transactions), len(snap.Categories))
}

func runExport(provider *state.Provider, format, out string) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = provider.ExportJSON()
	case "csv":
		data, err = provider.ExportCSV()
	default:
		fatalf("unknown format %q: must be json or csv", format)
	}
	if err != nil {
		fatalf("export: %v", err)
	}

	if out == "" {
		_, _ = os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fatalf("write %s: %v", out, err)
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), out)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
