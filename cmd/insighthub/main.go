package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eringen/insighthub"
	"github.com/eringen/insighthub/views"
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
	case "seed":
		err = runSeed(os.Args[2:])
	case "hash-password":
		err = runHashPassword()
	case "version":
		fmt.Printf("insighthub %s\n", version)
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
	fmt.Println(`insighthub - a multi-category blog with search, comments, and a newsletter

Usage:
  insighthub <command> [arguments]

Commands:
  serve [-config file]   Run the HTTP server
  seed [-config file]    Create sample categories and posts
  hash-password          Read a password from stdin and print its bcrypt hash
  version                Print the insighthub version
  help                   Show this help message

Configuration is read from the optional YAML file, a .env file, and
INSIGHTHUB_* environment variables (for example INSIGHTHUB_SESSION_SECRET).`)
}

func configFlag(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *path, nil
}

func runServe(args []string) error {
	path, err := configFlag("serve", args)
	if err != nil {
		return err
	}
	cfg, err := insighthub.LoadConfig(path)
	if err != nil {
		return err
	}
	log, err := insighthub.NewLogger(cfg.LogDir, true)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app := insighthub.New(cfg, views.Funcs(), insighthub.WithLogger(log))
	defer func() {
		if err := app.Close(); err != nil {
			log.Errorw("close failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Start(ctx) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func runSeed(args []string) error {
	path, err := configFlag("seed", args)
	if err != nil {
		return err
	}
	cfg, err := insighthub.LoadConfig(path)
	if err != nil {
		return err
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	store, err := insighthub.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	rep, err := insighthub.Seed(context.Background(), store)
	if err != nil {
		return err
	}
	log.Sugar().Infow("seed complete", "categories", rep.Categories, "posts", rep.Posts, "db", cfg.DatabasePath)
	return nil
}

func runHashPassword() error {
	var pw []byte
	var err error
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(os.Stderr, "Password: ")
		pw, err = term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
	} else {
		var line string
		_, err = fmt.Fscanln(os.Stdin, &line)
		pw = []byte(line)
	}
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	hash, err := insighthub.HashPassword(string(pw))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
