package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eringen/quotemill"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mint-token":
		if err := runMintToken(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("quotemill %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	app := quotemill.New(configFromEnv())
	return app.Start()
}

func runMintToken(args []string) error {
	fs := flag.NewFlagSet("mint-token", flag.ExitOnError)
	subject := fs.String("subject", "", "caller name embedded in the token (required)")
	ttl := fs.Duration("ttl", 365*24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return fmt.Errorf("mint-token: --subject is required")
	}
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return fmt.Errorf("mint-token: TOKEN_SECRET must be set")
	}
	token, err := quotemill.MintToken(secret, *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func configFromEnv() quotemill.Config {
	cfg := quotemill.Config{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		ShareRoot:     os.Getenv("SHARE_ROOT"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		CookieSecure:  strings.EqualFold(os.Getenv("COOKIE_SECURE"), "true"),
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("STUCK_RENDER_AGE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StuckRenderAge = d
		}
	}
	return cfg
}

func printUsage() {
	fmt.Println(`quotemill - share-artifact rendering pipeline for quotes

Usage:
  quotemill <command> [arguments]

Commands:
  serve                       Start the server and render worker
  mint-token --subject <who>  Mint an API bearer token (needs TOKEN_SECRET)
  version                     Print the quotemill version
  help                        Show this help message

Configuration is read from the environment: SITE_NAME, SITE_URL,
SITE_DESCRIPTION, SITE_AUTHOR, ADDR, DATABASE_PATH, SHARE_ROOT,
ADMIN_PASSWORD, ADMIN_SESSION_SECRET, TOKEN_SECRET, COOKIE_SECURE,
POLL_INTERVAL, STUCK_RENDER_AGE.`)
}
