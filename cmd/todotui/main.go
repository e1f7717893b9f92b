package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/idilsaglam/todotui/internal/api"
	"github.com/idilsaglam/todotui/internal/config"
	"github.com/idilsaglam/todotui/internal/logging"
	"github.com/idilsaglam/todotui/internal/store"
	"github.com/idilsaglam/todotui/internal/tui"
)

func main() {
	// .env is optional; flags and TODOTUI_* variables still apply without it.
	_ = godotenv.Load()

	apiURL := flag.String("api", "", "base URL of the todo API (overrides config)")
	userID := flag.Int("user", 0, "numeric user id owning the collection (overrides config)")
	cfgPath := flag.String("config", "", "path to config.toml (default ~/.todotui/config.toml)")
	theme := flag.String("theme", "", "ui theme: classic or mono (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	code := run(*cfgPath, *apiURL, *userID, *theme, *logLevel)
	os.Exit(code)
}

func run(cfgPath, apiURL string, userID int, theme, logLevel string) int {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if userID != 0 {
		cfg.UserID = userID
	}
	if theme != "" {
		cfg.Theme = theme
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}

	// The TUI owns stdout, so logs go to the dotfile dir.
	logPath, err := config.LogPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "log path:", err)
		return 1
	}
	logger, closer, err := logging.NewFileLogger(logPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		return 1
	}
	defer closer.Close()

	tui.ApplyTheme(cfg.Theme)

	client := api.New(strings.TrimRight(cfg.APIURL, "/"), cfg.UserID)
	st := store.New(client, store.Options{})

	logger.Info().
		Str("api", cfg.APIURL).
		Int("user", cfg.UserID).
		Msg("client starting")

	if err := tui.Run(st, logger); err != nil {
		logger.Error().Err(err).Msg("tui exited")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
