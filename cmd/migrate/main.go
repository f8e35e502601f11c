// Command migrate applies, rolls back and scaffolds the HMS schema migrations.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hms/backend/internal/infrastructure/config"
	"github.com/hms/backend/internal/infrastructure/logger"
	"github.com/hms/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const scaffoldDir = "migrations"

const usage = `HMS schema migrations

Usage:
  migrate [-path dir] [-log-level level] <command> [args]

Schema commands (connect using HMS_DATABASE_* settings):
  up                    apply every pending migration
  down                  roll back every migration
  step <n>              apply n migrations, or roll back -n
  version               print the applied version
  force <version>       mark a version as applied without running it

File commands:
  create <name> [desc]  scaffold an up/down pair in -path (default ./migrations)
  list                  list migrations in -path, or the embedded set

Without -path the migrations compiled into the binary are used.

Examples:
  migrate up
  migrate step -1
  migrate create add_supplier_contacts "Store supplier contact details"`

// schemaCommand runs against a live database.
type schemaCommand struct {
	minArgs int
	run     func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var schemaCommands = map[string]schemaCommand{
	"up":   {run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }},
	"down": {run: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }},
	"step": {minArgs: 1, run: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("step count %q is not an integer", args[0])
		}
		return m.Steps(n)
	}},
	"version": {run: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("Schema has no migrations applied")
			return nil
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}},
	"force": {minArgs: 1, run: func(m *migration.Migrator, args []string, log *zap.Logger) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("version %q is not an integer", args[0])
		}
		log.Warn("Forcing schema version", zap.Int("version", v))
		return m.Force(v)
	}},
}

func main() {
	dir := flag.String("path", "", "migrations directory (default: embedded)")
	level := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      *level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if *dir != "" {
		if *dir, err = filepath.Abs(*dir); err != nil {
			log.Fatal("Invalid migrations path", zap.Error(err))
		}
	}

	if err := run(args[0], args[1:], *dir, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(name string, args []string, dir string, log *zap.Logger) error {
	switch name {
	case "create":
		return create(args, dir, log)
	case "list":
		return list(dir, log)
	}

	cmd, ok := schemaCommands[name]
	if !ok {
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}
	if len(args) < cmd.minArgs {
		return fmt.Errorf("%s needs %d argument(s)", name, cmd.minArgs)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("Running migration command",
		zap.String("command", name),
		zap.String("source", sourceName(dir)),
		zap.String("database", cfg.Database.DBName),
	)
	return cmd.run(m, args, log)
}

func create(args []string, dir string, log *zap.Logger) error {
	if len(args) == 0 {
		return errors.New("create needs a migration name")
	}
	desc := ""
	if len(args) > 1 {
		desc = args[1]
	}
	if dir == "" {
		dir = scaffoldDir
	}

	mf, err := migration.CreateMigration(dir, args[0], desc)
	if err != nil {
		return err
	}
	log.Info("Migration scaffolded; rebuild to embed it",
		zap.String("version", mf.Version),
		zap.String("up", mf.UpPath),
		zap.String("down", mf.DownPath),
	)
	return nil
}

func list(dir string, log *zap.Logger) error {
	var (
		versions []string
		err      error
	)
	if dir == "" {
		versions, err = migration.EmbeddedVersions()
	} else {
		versions, err = migration.ListMigrations(dir)
	}
	if err != nil {
		return err
	}

	log.Info("Migrations", zap.String("source", sourceName(dir)), zap.Int("count", len(versions)))
	for _, v := range versions {
		fmt.Println("  " + v)
	}
	return nil
}

func sourceName(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}
