package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"github.com/khatmdev/quadramall-sub001/pkg/config"
	"github.com/khatmdev/quadramall-sub001/pkg/db"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/migrate"
)

const serviceName = "migrate"

var errUsage = errors.New("usage")

type options struct {
	command string
	dir     string
	name    string
	version string
}

// needsDB reports whether the command talks to the database.
func (o options) needsDB() bool {
	switch o.command {
	case "create", "check":
		return false
	}
	return true
}

// preflight reports whether the migration files are checked before touching the schema.
func (o options) preflight() bool {
	return o.command == "up" || o.command == "to"
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: migrate [flags] <command>\n\nCommands:\n")
		fmt.Fprintf(fs.Output(), "  check     validate file names and that the cart and catalog tables are created\n")
		fmt.Fprintf(fs.Output(), "  create    add an empty migration named -name\n")
		fmt.Fprintf(fs.Output(), "  up        check, then apply every pending migration\n")
		fmt.Fprintf(fs.Output(), "  down      roll back the latest migration\n")
		fmt.Fprintf(fs.Output(), "  status    print applied and pending migrations\n")
		fmt.Fprintf(fs.Output(), "  to        check, then move the schema to -version\n\nFlags:\n")
		fs.PrintDefaults()
	}

	opts := options{}
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "migrations directory")
	fs.StringVar(&opts.name, "name", "", "migration name for create")
	fs.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for to")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, errUsage
	}
	opts.command = fs.Arg(0)

	switch opts.command {
	case "create":
		if opts.name == "" {
			return opts, fmt.Errorf("create needs -name")
		}
	case "to":
		if opts.version == "" {
			return opts, fmt.Errorf("to needs -version")
		}
	case "check", "up", "down", "status":
	default:
		return opts, fmt.Errorf("unknown command %q", opts.command)
	}
	return opts, nil
}

func checkFiles(dir string) error {
	if err := migrate.ValidateDir(dir); err != nil {
		return err
	}
	return migrate.RequireTables(dir, migrate.CartTables)
}

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	_ = godotenv.Load()

	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(2)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"command": opts.command,
		"dir":     opts.dir,
	})

	if !opts.needsDB() {
		if err := runOffline(opts); err != nil {
			logg.Error(ctx, "migrate."+opts.command+".failed", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(context.Background(), map[string]any{
		"command": opts.command,
		"dir":     opts.dir,
		"env":     cfg.App.Env,
	})

	if opts.preflight() {
		if err := checkFiles(opts.dir); err != nil {
			logg.Error(ctx, "migrate.preflight.failed", err)
			os.Exit(1)
		}
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to extract sql.DB", err)
		os.Exit(1)
	}

	if err := runOnline(ctx, logg, sqlDB, opts); err != nil {
		logg.Error(ctx, "migrate."+opts.command+".failed", err)
		os.Exit(1)
	}
}

func runOffline(opts options) error {
	switch opts.command {
	case "create":
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
	case "check":
		if err := checkFiles(opts.dir); err != nil {
			return err
		}
		fmt.Println("migrations ok")
	}
	return nil
}

// runOnline applies the command and logs the schema version on both sides of it.
func runOnline(ctx context.Context, logg *logger.Logger, sqlDB *sql.DB, opts options) error {
	before, err := migrate.CurrentVersion(sqlDB)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "schema_version", before), "migrate.start")

	switch opts.command {
	case "to":
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	default:
		err = migrate.Run(ctx, sqlDB, opts.dir, opts.command)
	}
	if err != nil {
		return err
	}

	after, err := migrate.CurrentVersion(sqlDB)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"schema_version":   after,
		"previous_version": before,
	}), "migrate.complete")
	return nil
}
