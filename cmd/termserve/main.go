// Copyright 2025 The TermServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the term completion server and its interactive CLI.

TermServe completes search queries written in a small sigil grammar against a
relation of (class, attribute, value) triples:

	#fvTenant@name=com

Here the class and attribute are fixed and the value is being typed, so the
completions are the values of fvTenant.name starting with "com". A term
without a sigil matches any field.

# Usage

Start the server over stdin/stdout with the relation in the config:

	termserve

Use a specific relation source and enable debug logging:

	termserve -data searchdatabase.db -d

Run the interactive shell, locally or through a spawned server:

	termserve -c -limit 10
	termserve -c -remote "termserve -data rel.tsv"

Convert any supported source into a msgpack snapshot:

	termserve -data searchdatabase.db -export rel.msgpack

# Relation sources

The source format is chosen by extension: .db and .sqlite read the avc table
of an index database, .msgpack reads a snapshot, .toml reads [[triple]]
tables and .tsv or .txt read tab separated lines.

# Configuration

Runtime configuration lives in a TOML file that is created with defaults if
it does not exist. In server mode the file is watched and the server limits
and query options apply as soon as it is saved.

# Command Line Flags

	-data string
	    Relation source (default from config)
	-config string
	    Config file path
	-d  Enable debug mode with detailed logging
	-c  Run the CLI instead of the server
	-limit int
	    Number of matches to show in the CLI
	-index string
	    Matcher kind: scan or trie
	-export string
	    Write the relation as a msgpack snapshot and exit
	-remote string
	    Server command the CLI completes through
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/termserve/internal/cli"
	"github.com/bastiangx/termserve/internal/logger"
	"github.com/bastiangx/termserve/internal/utils"
	"github.com/bastiangx/termserve/pkg/config"
	"github.com/bastiangx/termserve/pkg/match"
	"github.com/bastiangx/termserve/pkg/relation"
	"github.com/bastiangx/termserve/pkg/server"
	"github.com/bastiangx/termserve/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

const (
	Version = "0.3.0-beta"
	AppName = "termserve"
	gh      = "https://github.com/bastiangx/termserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow; server and CLI live in their packages.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	dataPath := flag.String("data", "", "Relation source (.db, .sqlite, .msgpack, .toml, .tsv)")
	configPath := flag.String("config", "", "Path to the config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing the query grammar")
	limit := flag.Int("limit", 0, "Number of matches to show (default from config)")
	index := flag.String("index", "", "Matcher kind: scan or trie (default from config)")
	export := flag.String("export", "", "Write the relation as a msgpack snapshot to this file and exit")
	remote := flag.String("remote", "", "In CLI mode, complete through this server command")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	cfg, activeConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activeConfig))
	if *index != "" {
		cfg.Relation.Index = *index
	}
	if *dataPath != "" {
		cfg.Relation.Source = *dataPath
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	source := pathResolver.GetDataPath(cfg.Relation.Source)
	load := func() (*relation.Relation, error) {
		return relation.Load(source)
	}

	ctx := context.Background()

	// a remote shell never touches the relation itself
	if *cliMode && *remote != "" {
		if err := runRemoteCLI(ctx, *remote, cliOptions(cfg, *limit)); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	rel, err := load()
	if err != nil {
		log.Warnf("Failed to load relation from %s: %v. Running with an empty relation...", source, err)
		rel = relation.Empty()
	}

	if *export != "" {
		if err := relation.SaveSnapshot(rel, *export); err != nil {
			log.Fatalf("Failed to export relation: %v", err)
		}
		log.Infof("Wrote %d triples to %s", rel.Len(), *export)
		return
	}

	if *cliMode {
		m, err := match.NewMatcher(cfg.Relation.Index, rel)
		if err != nil {
			log.Fatalf("Failed to build matcher: %v", err)
		}
		engine := match.NewEngine(m, match.WithColonAttr(cfg.Query.ColonAttr))
		if err := runCLI(ctx, engine, cliOptions(cfg, *limit)); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	srv, err := server.NewServer(rel, cfg, server.WithLoader(load))
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	showStartupInfo(rel)

	if err := serve(ctx, srv, activeConfig); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// serve runs the IPC loop next to the config watcher. The watcher stops once
// the input is closed.
func serve(ctx context.Context, srv *server.Server, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return srv.Start(gctx)
	})
	if configPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, configPath, func(cfg *config.Config) {
				if err := srv.ApplyConfig(cfg); err != nil {
					log.Warnf("Ignoring config change: %v", err)
				}
			})
		})
	}
	return g.Wait()
}

func cliOptions(cfg *config.Config, limit int) cli.Options {
	if limit < 1 {
		limit = cfg.CLI.DefaultLimit
	}
	return cli.Options{
		Limit:     limit,
		Async:     cfg.CLI.Async,
		ColonAttr: cfg.Query.ColonAttr,
	}
}

func runCLI(ctx context.Context, lookup session.Lookup, opts cli.Options) error {
	log.SetReportTimestamp(false)
	log.Debug("Input info:", "limit", opts.Limit, "async", opts.Async)
	return cli.NewInputHandler(lookup, os.Stdin, os.Stdout, opts).Start(ctx)
}

// runRemoteCLI spawns the server command and completes through its pipes.
// Remote lookups are slow enough that the shell always runs them async.
func runRemoteCLI(ctx context.Context, command string, opts cli.Options) error {
	args := strings.Fields(command)
	if len(args) == 0 {
		return fmt.Errorf("empty remote command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	log.Debugf("Spawned remote server: pid %d", cmd.Process.Pid)

	client := server.NewClient(stdout, stdin)
	if info, err := client.Relation(ctx, server.ActionGetInfo); err == nil {
		log.Debugf("Remote relation: %d triples from %s", info.Triples, info.Source)
	}

	opts.Async = true
	runErr := runCLI(ctx, client, opts)
	client.Close()
	if err := cmd.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ TermServe ] Completes class, attribute and value search terms")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
// It goes to stderr since stdout carries the protocol.
func showStartupInfo(rel *relation.Relation) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" TermServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("relation: %d triples ( %s )", rel.Len(), rel.Source())
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
