package main

import (
	"bufio"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/securecookie"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio"
)

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", "folio.yaml", "path of the config file to write")
	user := fs.String("user", "admin", "admin username")
	siteName := fs.String("name", "Portfolio", "site name")
	siteURL := fs.String("url", "http://localhost:3000", "public site URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*configPath); err == nil {
		return fmt.Errorf("%s already exists", *configPath)
	}

	fmt.Printf("Admin password for %q: ", *user)
	password, err := readPassword()
	if err != nil {
		return err
	}
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := folio.HashPassword(password)
	if err != nil {
		return err
	}

	data, err := starterConfig(*siteName, *siteURL, *user, hash)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*configPath, data, 0o600); err != nil {
		return err
	}
	fmt.Printf("\nWrote %s\n\nNext steps:\n  folio serve -config %s\n", *configPath, *configPath)
	return nil
}

// starterConfig renders a config file with a fresh session secret. Keys
// left at their zero value are filled in by defaults at load time.
func starterConfig(name, url, user, hash string) ([]byte, error) {
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, errors.New("could not generate a session secret")
	}
	cfg := folio.SiteConfig{
		Name:              name,
		URL:               strings.TrimRight(url, "/"),
		Driver:            folio.DriverSQLite,
		AdminUsername:     user,
		AdminPasswordHash: hash,
		SessionSecret:     base64.RawURLEncoding.EncodeToString(key),
		CookieSecure:      strings.HasPrefix(url, "https://"),
		LogLevel:          "info",
	}
	return yaml.Marshal(cfg)
}

func readPassword() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
