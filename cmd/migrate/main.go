// Command migrate applies the schema to the configured database. The server
// migrates on its own outside production; production deploys run this first.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"threads/internal/config"
	"threads/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("schema applied")
	case "status":
		tables, err := database.SchemaStatus(db)
		if err != nil {
			return err
		}
		for _, t := range tables {
			log.Printf("table=%s present=%t", t.Table, t.Present)
		}
	default:
		return usage()
	}
	return nil
}
