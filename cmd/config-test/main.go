package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/canalwatch/internal/types"
	"github.com/chrissnell/canalwatch/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("=============================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("===================")

	mismatches := 0
	sections := []struct {
		name       string
		yaml, sqlt interface{}
	}{
		{"service", yamlConfig.Service, sqliteConfig.Service},
		{"refresh", yamlConfig.Refresh, sqliteConfig.Refresh},
		{"charts", yamlConfig.Charts, sqliteConfig.Charts},
		{"web", yamlConfig.Web, sqliteConfig.Web},
		{"logging", yamlConfig.Logging, sqliteConfig.Logging},
	}
	for _, s := range sections {
		if reflect.DeepEqual(s.yaml, s.sqlt) {
			fmt.Printf("✓ %s matches\n", s.name)
			continue
		}
		mismatches++
		fmt.Printf("✗ %s differs\n  YAML:   %+v\n  SQLite: %+v\n", s.name, s.yaml, s.sqlt)
	}

	mismatches += compareLocations(yamlConfig.Locations, sqliteConfig.Locations)

	if mismatches > 0 {
		fmt.Printf("\n%d difference(s) found\n", mismatches)
		os.Exit(1)
	}
	fmt.Println("\nTest completed!")
}

func compareLocations(yaml, sqlite []types.Location) int {
	fmt.Printf("\nLocations - YAML: %d, SQLite: %d\n", len(yaml), len(sqlite))
	if len(yaml) != len(sqlite) {
		fmt.Println("✗ Location count mismatch")
		return 1
	}

	diffs := 0
	for i, loc := range yaml {
		other := sqlite[i]
		if loc.Key == other.Key && loc.Name == other.Name && loc.Color == other.Color &&
			loc.Match == other.Match && equalStrings(loc.Aliases, other.Aliases) {
			fmt.Printf("✓ Location %s matches\n", loc.Key)
			continue
		}
		diffs++
		fmt.Printf("✗ Location %s differs\n", loc.Key)
		printLocationDiff(loc, other)
	}
	return diffs
}

// equalStrings treats nil and empty alias lists as equal
func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func printLocationDiff(yaml, sqlite types.Location) {
	if yaml.Key != sqlite.Key {
		fmt.Printf("  Key: YAML='%s', SQLite='%s'\n", yaml.Key, sqlite.Key)
	}
	if yaml.Name != sqlite.Name {
		fmt.Printf("  Name: YAML='%s', SQLite='%s'\n", yaml.Name, sqlite.Name)
	}
	if yaml.Color != sqlite.Color {
		fmt.Printf("  Color: YAML='%s', SQLite='%s'\n", yaml.Color, sqlite.Color)
	}
	if yaml.Match != sqlite.Match {
		fmt.Printf("  Match: YAML='%s', SQLite='%s'\n", yaml.Match, sqlite.Match)
	}
	if !equalStrings(yaml.Aliases, sqlite.Aliases) {
		fmt.Printf("  Aliases: YAML=%v, SQLite=%v\n", yaml.Aliases, sqlite.Aliases)
	}
}
