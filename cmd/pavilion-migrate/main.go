// Command pavilion-migrate applies the embedded schema migrations.
//
//	pavilion-migrate up
//	pavilion-migrate down
//	pavilion-migrate steps N
//	pavilion-migrate version
//
// The database is read from PG_DSN.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/basteen-Dev/pavilion/internal/platform/migrate"
	"github.com/basteen-Dev/pavilion/migrations"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(os.Args[1:], os.Getenv("PG_DSN"), logger); err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string, dsn string, logger *slog.Logger) error {
	if len(args) == 0 {
		return errors.New("usage: pavilion-migrate up|down|steps N|version")
	}
	if dsn == "" {
		return errors.New("PG_DSN must be set")
	}
	var steps int
	switch args[0] {
	case "up", "down", "version":
	case "steps":
		if len(args) < 2 {
			return errors.New("steps requires a count")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n == 0 {
			return fmt.Errorf("invalid step count %q", args[1])
		}
		steps = n
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	m, err := migrate.New(migrations.FS, dsn, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", slog.Any("error", err))
		}
	}()

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		return m.Steps(steps)
	default:
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d dirty=%t\n", version, dirty)
		return nil
	}
}
