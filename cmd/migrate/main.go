package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chrissnell/canalwatch/pkg/config"
	"github.com/chrissnell/canalwatch/pkg/migrate"
)

func main() {
	var (
		dbPath        = flag.String("db", "", "Path to the SQLite configuration database")
		command       = flag.String("command", "status", "Migration command: up, to, version, status")
		targetVersion = flag.Int("target", -1, "Target version for the to command (-1 for latest)")
		helpFlag      = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		showHelp()
		os.Exit(1)
	}

	provider, err := config.NewSQLiteProvider(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open configuration database: %v", err)
	}
	defer provider.Close()

	migrator := provider.Migrator()

	switch *command {
	case "up":
		err = migrator.MigrateUp()
	case "to":
		err = migrator.MigrateTo(*targetVersion)
	case "version":
		version, verr := migrator.GetCurrentVersion()
		if verr != nil {
			log.Fatalf("Failed to get current version: %v", verr)
		}
		fmt.Printf("Current version: %d\n", version)
		return
	case "status":
		if err := showStatus(migrator); err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", *command)
		showHelp()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}

	fmt.Println("Migration completed successfully")
}

func showStatus(migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Printf("Current version: %d\n", currentVersion)
	fmt.Printf("Pending migrations: %d\n", len(pending))

	for _, migration := range pending {
		fmt.Printf("  %d: %s\n", migration.Version, migration.Name)
	}

	return nil
}

func showHelp() {
	fmt.Println("canalwatch configuration database migrations")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  migrate -db <config.db> [-command up|to|version|status] [-target N]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up        Apply all pending migrations")
	fmt.Println("  to        Migrate up or down to -target")
	fmt.Println("  version   Show current schema version")
	fmt.Println("  status    Show current version and pending migrations (default)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  migrate -db config.db -command up")
	fmt.Println("  migrate -db config.db -command to -target 1")
}
