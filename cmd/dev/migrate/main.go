package main

import (
	"context"
	"fmt"
	"os"

	"rfqapi/pkg/config"
	"rfqapi/pkg/db"
)

func main() {
	cfg := config.Load()
	if !cfg.HasDatabase() {
		fmt.Fprintln(os.Stderr, "no database configured (set DATABASE_URL or DB_HOST)")
		os.Exit(2)
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	// Uses DIRECT_URL if set (recommended when the runtime connection goes
	// through a pooler).
	if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate failed: %v\n", err)
		os.Exit(1)
	}

	// Sanity check: ensure the runtime connection can open too. No DSNs are
	// printed to avoid leaking secrets into logs.
	pool, err := db.Open(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runtime db open failed: %v\n", err)
		os.Exit(1)
	}
	pool.Close()

	fmt.Println("migrations applied")
}
