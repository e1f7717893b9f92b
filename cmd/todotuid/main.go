// todotuid is the local development server for the todo collection. It
// speaks the same REST contract as the hosted API and persists to a JSON
// file, so the client can run fully offline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/idilsaglam/todotui/internal/logging"
	"github.com/idilsaglam/todotui/internal/server"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "", "listen address (default :8080, or PORT env)")
	data := flag.String("data", "todos.json", "path to the JSON data file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	listen := *addr
	if listen == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		listen = ":" + port
	}

	logger := logging.NewConsoleLogger(os.Stdout, *logLevel)

	srv, err := server.New(*data, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
	if err := srv.Start(listen); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
