package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/folio"
	"github.com/eringen/folio/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "hash-password":
		err = runHashPassword(os.Args[2:])
	case "version":
		fmt.Printf("folio %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`folio - a portfolio site and content back office built with Go, Echo, and templ

Usage:
  folio <command> [arguments]

Commands:
  serve [-config path]          Run the site (default config folio.yaml)
  init [-config path] [-user name]
                                Write a starter config with a new admin password
  hash-password [password]      Print the bcrypt hash for admin_password_hash
  version                       Print the folio version
  help                          Show this help message

Every config key can be overridden with its FOLIO_* environment variable.`)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "folio.yaml", "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := folio.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	app := folio.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	app.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runHashPassword(args []string) error {
	var password string
	if len(args) > 0 {
		password = args[0]
	} else {
		p, err := readPassword()
		if err != nil {
			return err
		}
		password = p
	}
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := folio.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
