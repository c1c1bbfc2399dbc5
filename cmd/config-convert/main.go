package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/canalwatch/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if YAML file exists
	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	// Load YAML configuration
	configData, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
		printConfigSummary(configData)
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	if err := writeSQLite(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing SQLite configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
}

func writeSQLite(dbPath string, configData *config.ConfigData) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	provider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer provider.Close()

	pending, err := provider.Migrator().GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	fmt.Printf("  Applying %d schema migrations...\n", len(pending))

	fmt.Printf("  Inserting %d locations...\n", len(configData.Locations))
	if err := provider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Read it back so a bad conversion fails here rather than at startup
	if _, err := provider.LoadConfig(); err != nil {
		return fmt.Errorf("converted configuration does not load: %w", err)
	}
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("Service: %s (timeout %v, history limit %d)\n",
		configData.Service.BaseURL, configData.Service.Timeout, configData.Service.HistoryLimit)
	fmt.Printf("Refresh interval: %v\n", configData.Refresh.Interval)

	fmt.Printf("\nLocations (%d):\n", len(configData.Locations))
	for _, loc := range configData.Locations {
		fmt.Printf("  - %s: %s (%s)\n", loc.Key, loc.Name, loc.Color)
	}

	fmt.Printf("\nDisplay server: %s:%d\n", configData.Web.ListenAddr, configData.Web.Port)
}
