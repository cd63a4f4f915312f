package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/BlackVectorOps/filesentry/internal/cli"
	"github.com/BlackVectorOps/filesentry/internal/config"
	version "github.com/BlackVectorOps/filesentry/pkg/version"
)

// Package main provides the filesentry CLI tool for on-demand malware scanning
// of local files and directories.

// -- Main Entry Point --

func main() {
	// Configure help text
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `filesentry - On-Demand File Scanner CLI

An offline signature and heuristic scanner for local files.

Usage:
  filesentry scan-file --path <file> [--heuristics on|off] [--storage json|sqlite]
  filesentry scan-dir --path <dir> [--recursive true|false] [--heuristics on|off] [--storage json|sqlite]
  filesentry update-signatures --path <update.json>
  filesentry history [--storage json|sqlite]
  filesentry version

Commands:
  scan-file          Scan a single file against the local signature set
  scan-dir           Scan every regular file in a directory
  update-signatures  Merge a signed-off update document into the signature set
  history            Show past scan reports, newest first
  version            Display CLI and engine version

Every command writes exactly one JSON document to stdout. Diagnostics go
to stderr, so output stays pipeable.

Examples:
  filesentry scan-file --path ./download.exe
  filesentry scan-dir --path /srv/uploads --recursive true --storage sqlite
  filesentry update-signatures --path feed-2026-08.json
  filesentry history --storage sqlite
`)
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(cli.ExitFailure)
	}

	cmd := os.Args[1]

	// -- Flag Definitions --

	scanFileCmd := flag.NewFlagSet("scan-file", flag.ExitOnError)
	scanFilePath := scanFileCmd.String("path", "", "File to scan (required)")
	scanFileHeuristics := scanFileCmd.String("heuristics", "on", "Enable heuristic analysis: on or off")
	scanFileStorage := scanFileCmd.String("storage", "", "History backend: json or sqlite")

	scanDirCmd, scanDirOpts := newScanDirFlags()

	updateCmd := flag.NewFlagSet("update-signatures", flag.ExitOnError)
	updatePath := updateCmd.String("path", "", "Update document to merge (required)")
	updateFile := updateCmd.String("file", "", "Alias for --path")

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	historyStorage := historyCmd.String("storage", "", "History backend: json or sqlite")

	// -- Configuration --

	cfg, err := config.Load()
	if err != nil {
		os.Exit(cli.WriteError(os.Stdout, err))
	}
	cli.SetupLogging(cfg.LogLevel)

	app := cli.NewApp(cfg, os.Stdout)
	ctx := context.Background()

	// -- Command Routing --

	switch cmd {
	case "scan-file":
		if err := scanFileCmd.Parse(os.Args[2:]); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}
		heuristics := cli.BoolFromString(*scanFileHeuristics, true)
		backend := resolveBackend(*scanFileStorage, cfg)
		if err := app.RunScanFile(ctx, *scanFilePath, heuristics, backend); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}

	case "scan-dir":
		if err := scanDirCmd.Parse(os.Args[2:]); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}
		recursive := cli.BoolFromString(*scanDirOpts.recursive, true)
		heuristics := cli.BoolFromString(*scanDirOpts.heuristics, true)
		backend := resolveBackend(*scanDirOpts.storage, cfg)
		if err := app.RunScanDir(ctx, *scanDirOpts.path, recursive, heuristics, backend); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}

	case "update-signatures":
		if err := updateCmd.Parse(os.Args[2:]); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}
		path := *updatePath
		if path == "" {
			path = *updateFile
		}
		if err := app.RunUpdate(path); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}

	case "history":
		if err := historyCmd.Parse(os.Args[2:]); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}
		backend := resolveBackend(*historyStorage, cfg)
		if err := app.RunHistory(backend); err != nil {
			os.Exit(cli.WriteError(os.Stdout, err))
		}

	case "version":
		fmt.Println("FileSentry CLI")
		// Automatically pulls the build tag, or "(devel)" if running locally
		fmt.Printf("Build: %s\n", version.EngineVersion())

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		if suggestion := cli.SuggestCommand(cmd); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		flag.Usage()
		os.Exit(cli.ExitFailure)
	}
}

// scanDirOpts holds the scan-dir flag values. All booleans are value-taking
// string flags so front-ends can pass "--recursive false" literally; a bare
// Go bool flag would swallow the "false" as a positional and silently drop
// every flag after it.
type scanDirOpts struct {
	path       *string
	recursive  *string
	heuristics *string
	storage    *string
}

func newScanDirFlags() (*flag.FlagSet, *scanDirOpts) {
	fs := flag.NewFlagSet("scan-dir", flag.ExitOnError)
	opts := &scanDirOpts{
		path:       fs.String("path", "", "Directory to scan (required)"),
		recursive:  fs.String("recursive", "true", "Descend into subdirectories: true or false"),
		heuristics: fs.String("heuristics", "on", "Enable heuristic analysis: on or off"),
		storage:    fs.String("storage", "", "History backend: json or sqlite"),
	}
	return fs, opts
}

// The flag wins over the config file when both are set.
func resolveBackend(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return cli.NormalizeStorage(flagValue)
	}
	return cli.NormalizeStorage(cfg.Storage)
}
