package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/autoline-panel/shop-api/internal/config"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

type command struct {
	summary string
	// args is the number of positional arguments the command needs
	args int
	// offline commands only touch the migrations directory
	offline bool
	// destructive commands are refused in production
	destructive bool
	run         func(db *sql.DB, dir string, args []string) (string, error)
}

var commands = map[string]command{
	"up": {summary: "apply all pending migrations", run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "migrations applied", goose.Up(db, dir)
	}},
	"up-by-one": {summary: "apply the next pending migration", run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "migration applied", goose.UpByOne(db, dir)
	}},
	"up-to": {summary: "apply migrations up to VERSION", args: 1, run: func(db *sql.DB, dir string, args []string) (string, error) {
		v, err := parseVersion(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("migrated up to %d", v), goose.UpTo(db, dir, v)
	}},
	"down": {summary: "roll back the latest migration", destructive: true, run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "migration rolled back", goose.Down(db, dir)
	}},
	"down-to": {summary: "roll back to VERSION", args: 1, destructive: true, run: func(db *sql.DB, dir string, args []string) (string, error) {
		v, err := parseVersion(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rolled back to %d", v), goose.DownTo(db, dir, v)
	}},
	"redo": {summary: "roll back and re-apply the latest migration", destructive: true, run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "migration re-applied", goose.Redo(db, dir)
	}},
	"reset": {summary: "roll back every migration", destructive: true, run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "all migrations rolled back", goose.Reset(db, dir)
	}},
	"status": {summary: "print applied and pending migrations", run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "", goose.Status(db, dir)
	}},
	"version": {summary: "print the current schema version", run: func(db *sql.DB, dir string, _ []string) (string, error) {
		return "", goose.Version(db, dir)
	}},
	"create": {summary: "create a new SQL migration NAME", args: 1, offline: true, run: func(db *sql.DB, dir string, args []string) (string, error) {
		return "migration created: " + args[0], goose.Create(db, dir, args[0], "sql")
	}},
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage())
	}
	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q\n%s", name, usage())
	}
	if len(rest) < cmd.args {
		return fmt.Errorf("%s needs %d argument(s)\n%s", name, cmd.args, usage())
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "./migrations"
	}

	if cmd.offline {
		msg, err := cmd.run(nil, dir, rest)
		return report(name, msg, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("sqlite databases are created from the models at startup; migrations target postgres")
	}
	if cmd.destructive && cfg.App.Environment == "production" {
		return fmt.Errorf("%s is disabled in production", name)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	msg, err := cmd.run(db, dir, rest)
	return report(name, msg, err)
}

func report(name, msg string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if msg != "" {
		fmt.Println(msg)
	}
	return nil
}

func parseVersion(raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q", raw)
	}
	return v, nil
}

func usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: migrate COMMAND [ARGS]\n\ncommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s %s\n", name, commands[name].summary)
	}
	return b.String()
}
