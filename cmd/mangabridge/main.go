// Command mangabridge talks to the manga admin backend from a terminal. Every call
// goes through the same refresh-and-retry client the dashboard uses; output is JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	mangabridge "github.com/opengovern/manga-bridge"
	"github.com/opengovern/manga-bridge/adapters"
	"github.com/opengovern/manga-bridge/api"
	"github.com/opengovern/manga-bridge/internal/config"
	"github.com/opengovern/manga-bridge/internal/logging"
)

const (
	exitOK      = 0
	exitErr     = 1
	exitUsage   = 2
	exitExpired = 3
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	cfg     config.Config
	adapter *adapters.HTTPAdapter
	client  *mangabridge.Client
	api     *api.API
	out     io.Writer

	mu       sync.Mutex
	loginURL string
}

func (a *app) SessionExpired(ctx context.Context, loginURL string, cause error) {
	a.mu.Lock()
	a.loginURL = loginURL
	a.mu.Unlock()
	slog.WarnContext(ctx, "session expired", "login_url", loginURL, "error", cause)
}

func (a *app) expired() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loginURL, a.loginURL != ""
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":      cmdLogin,
	"logout":     cmdLogout,
	"me":         cmdMe,
	"session":    cmdSession,
	"books":      cmdBooks,
	"chapters":   cmdChapters,
	"categories": cmdCategories,
	"users":      cmdUsers,
	"orders":     cmdOrders,
}

var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("mangabridge", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "", "path to a config file (yaml, json or toml)")
	baseURL := fset.String("base-url", "", "backend origin, overrides base_url")
	debug := fset.Bool("debug", false, "log every attempt")
	fset.Usage = func() { usage(stderr, fset) }
	if err := fset.Parse(args); err != nil {
		return exitUsage
	}
	if fset.NArg() == 0 {
		usage(stderr, fset)
		return exitUsage
	}
	cmd, ok := commands[fset.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fset.Arg(0))
		usage(stderr, fset)
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitErr
	}
	if *baseURL != "" {
		cfg.BaseURL = strings.TrimRight(*baseURL, "/")
	}
	level := cfg.Logging.Level
	if *debug {
		level = "debug"
	}
	slog.SetDefault(logging.New(stderr, level, cfg.Logging.Format == "json"))

	a, err := newApp(cfg, stdout, *debug)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitErr
	}

	err = cmd(ctx, a, fset.Args()[1:])
	if loginURL, ok := a.expired(); ok {
		fmt.Fprintf(stderr, "session expired, sign in again at %s\n", loginURL)
		return exitExpired
	}
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "usage: mangabridge %s\n", commandUsage[fset.Arg(0)])
		return exitUsage
	case err != nil:
		fmt.Fprintln(stderr, err)
		return exitErr
	}
	return exitOK
}

func newApp(cfg config.Config, out io.Writer, debug bool) (*app, error) {
	cc := cfg.ClientConfig()
	adapter, err := adapters.NewHTTPAdapter(cc)
	if err != nil {
		return nil, err
	}
	client, err := mangabridge.NewClient(adapter, cc)
	if err != nil {
		return nil, err
	}
	client.SetLogger(slog.Default())
	client.SetDebug(debug)

	a := &app{cfg: cfg, adapter: adapter, client: client, api: api.New(client), out: out}
	client.SetSessionExpiredHandler(a)

	var seeded []*http.Cookie
	if cfg.Session.AccessToken != "" {
		seeded = append(seeded, &http.Cookie{Name: cfg.Session.AccessCookie, Value: cfg.Session.AccessToken, Path: "/"})
	}
	if cfg.Session.RefreshToken != "" {
		seeded = append(seeded, &http.Cookie{Name: cfg.Session.RefreshCookie, Value: cfg.Session.RefreshToken, Path: "/"})
	}
	adapter.SetCookies(seeded...)
	return a, nil
}

// ensureSession logs in with the configured credentials when the jar holds no
// session yet, so one-shot commands work without a prior login.
func (a *app) ensureSession(ctx context.Context) error {
	if _, ok := a.adapter.Cookie(a.cfg.Session.AccessCookie); ok {
		return nil
	}
	if _, ok := a.adapter.Cookie(a.cfg.Session.RefreshCookie); ok {
		return nil
	}
	if a.cfg.Auth.Email == "" {
		return nil
	}
	_, err := a.api.Auth.Login(ctx, a.cfg.Auth.Email, a.cfg.Auth.Password)
	return err
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type page[T any] struct {
	Items      []T                     `json:"items"`
	Pagination *mangabridge.Pagination `json:"pagination,omitempty"`
}

var commandUsage = map[string]string{
	"login":      "login [-email E] [-password P]",
	"logout":     "logout",
	"me":         "me",
	"session":    "session",
	"books":      "books list [flags] | get <slug> | delete <id>",
	"chapters":   "chapters get <book-slug> <chapter-slug>",
	"categories": "categories list | featured | get <slug>",
	"users":      "users list [flags] | get <id> | delete <id>",
	"orders":     "orders list [flags] | get <id> | cancel <id> [-reason R]",
}

func usage(w io.Writer, fset *flag.FlagSet) {
	fmt.Fprintln(w, "usage: mangabridge [global flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commandUsage))
	for name := range commandUsage {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commandUsage[name])
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fset.PrintDefaults()
}
