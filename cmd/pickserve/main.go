// Copyright 2025 The PickServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the people-picker suggestion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

PickServe answers "who did you mean?" queries for people pickers. Given what
the user has typed and who is already picked, it suggests everyone in its
pool whose name starts with the query, case-insensitively, and leaves out
people already picked. Answers are delivered after a fixed delay (150ms by
default) so UIs exercise their loading states the same way they would against
a real directory service.

# Usage

Start the server with the built-in people set:

	pickserve

Serve a people file and enable debug logging:

	pickserve -data people.toml -d

Run the interactive CLI:

	pickserve -c

# Data sets

People are read from a TOML file of [[people]] tables or from a msgpack
array (.bin, .msgpack, .mpk):

	[[people]]
	text = "Annie Lindqvist"
	secondary_text = "Designer"
	image_initials = "AL"

Without -data (or resolver.data_file in the config) a small built-in set is
used.

# Configuration

	[resolver]
	delay_ms = 150
	data_file = ""

	[server]
	max_query = 60
	max_selected = 256

	[cli]
	default_limit = 10

The config file is created with defaults on first run. Server mode reloads
the limits periodically without restart.

# IPC Protocol

See package server. Requests and responses are msgpack values on
stdin/stdout; every response echoes the request ID.

# Command Line Flags

	-config string
	    Path to a config file (default: user config dir)
	-data string
	    People data set, overrides resolver.data_file
	-delay duration
	    Resolve delay, overrides resolver.delay_ms
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-version
	    Show current version
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bastiangx/pickserve/internal/cli"
	"github.com/bastiangx/pickserve/internal/logger"
	"github.com/bastiangx/pickserve/pkg/config"
	"github.com/bastiangx/pickserve/pkg/dataset"
	"github.com/bastiangx/pickserve/pkg/selection"
	"github.com/bastiangx/pickserve/pkg/server"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "pickserve"
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

// main wires config, data set and resolver together, then hands off to the
// server or the CLI.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to config file")
	dataFile := flag.String("data", "", "People data set (.toml, .bin, .msgpack)")
	delay := flag.Duration("delay", -1, "Resolve delay, overrides config (e.g. 150ms)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	appConfig, usedConfigPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedConfigPath))

	source := appConfig.Resolver.DataFile
	if *dataFile != "" {
		source = *dataFile
	}
	people, err := dataset.LoadOrBuiltin(source)
	if err != nil {
		log.Fatalf("Failed to load people from %s: %v", source, err)
	}

	resolveDelay := appConfig.Resolver.Delay()
	if *delay >= 0 {
		resolveDelay = *delay
	}
	log.Debug("Init resolver", "people", len(people), "delay", resolveDelay)
	resolver := suggest.NewResolver(people, suggest.WithDelay(resolveDelay))

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		handler := cli.NewInputHandler(resolver, selection.NewSelectedList(), appConfig.CLI.DefaultLimit)
		handler.UseConfig(appConfig, usedConfigPath)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(source, len(people), resolveDelay)

	srv := server.NewServer(resolver, appConfig, usedConfigPath)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Keys["version"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ PickServe ] people suggestions for pickers")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
}

// showStartupInfo goes to stderr; stdout belongs to the IPC stream.
func showStartupInfo(source string, people int, delay time.Duration) {
	if source == "" {
		source = "built-in"
	}
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("%s %s", AppName, Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Info("people", "source", source, "count", people)
	log.Info("resolve delay", "delay", delay)
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
