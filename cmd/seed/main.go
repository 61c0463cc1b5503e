// Command seed provisions department admin accounts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/config"
	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/middleware"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Load()

	var filePath string
	var reset bool
	databaseURL := cfg.DatabaseURL

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "YAML file listing admins (default: one admin per department)")
	flagSet.BoolVar(&reset, "reset", false, "delete every existing admin before seeding")
	flagSet.StringVar(&databaseURL, "database-url", databaseURL, "Postgres connection string (default: $DATABASE_URL)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	entries := defaultAdmins
	if filePath != "" {
		loaded, err := loadSeedFile(filePath)
		if err != nil {
			return err
		}
		entries = loaded
	}
	admins, err := toAdmins(entries)
	if err != nil {
		return err
	}

	middleware.InitLogger(cfg.LogLevel, "whisperbox-seed")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, databaseURL, log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	repo := repository.NewAdminRepo(pool, cfg.StoreTimeout)
	if reset {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			return err
		}
		log.Info().Int64("deleted", n).Msg("cleared existing admins")
	}

	for i := range admins {
		hash, err := auth.HashPassword(entries[i].Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", admins[i].Email, err)
		}
		admins[i].PasswordHash = hash
		err = repo.Upsert(ctx, &admins[i])
		if repository.ViolatedConstraint(err) == db.ConstraintAdminEmail {
			return fmt.Errorf("%s belongs to an admin of another department; use --reset to reassign it", admins[i].Email)
		}
		if err != nil {
			return fmt.Errorf("upsert %s: %w", admins[i].Email, err)
		}
		log.Info().
			Str("email", admins[i].Email).
			Str("department", string(admins[i].Department)).
			Msg("admin seeded")
	}

	if filePath == "" {
		fmt.Fprintf(os.Stderr, "seeded %d admins with password %q; change it before going live\n", len(admins), defaultPassword)
	}
	return nil
}
