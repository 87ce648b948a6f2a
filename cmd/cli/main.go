package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"vertice/internal/access"
	"vertice/internal/catalog"
	"vertice/internal/fixtures"
	"vertice/internal/library"
	"vertice/internal/session"
	"vertice/internal/storage"
	"vertice/pkg/logger"
)

// app is one local "browser": the catalog read from the data location and
// a session persisted in a JSON file.
type app struct {
	catalog *catalog.Store
	session *session.Store
	library *library.Library
}

func main() {
	global := flag.NewFlagSet("vertice", flag.ExitOnError)
	data := global.String("data", envOr("VERTICE_DATA_LOCATION", "./data"), "fixture directory or http(s) base URL")
	storagePath := global.String("storage", defaultStoragePath(), "local storage file")
	level := global.String("log-level", "warn", "log level")
	if err := global.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New("dev", *level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	store := catalog.NewStore(fixtures.New(*data), log.Named("catalog"))
	a := &app{
		catalog: store,
		session: session.NewStore(
			session.NewStorageRepo(storage.NewFile(*storagePath)),
			store,
			session.WithLogger(log.Named("session")),
		),
		library: library.New(store),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "catalog":
		err = a.handleCatalog(ctx, rest)
	case "login", "register", "logout", "whoami":
		err = a.handleSession(ctx, cmd, rest)
	case "fav", "follow":
		err = a.handleToggle(ctx, cmd, rest)
	case "library":
		err = a.handleLibrary(ctx, rest)
	case "access":
		err = a.handleAccess(ctx, rest)
	case "watch":
		cancel()
		err = handleWatch(rest)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) handleCatalog(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		fs := flag.NewFlagSet("catalog list", flag.ExitOnError)
		q := fs.String("q", "", "search title, artist or technique")
		category := fs.String("categoria", "", "category slug or id")
		sortKey := fs.String("sort", string(catalog.SortRelevance), "relevancia|precio-asc|precio-desc|anio-asc|anio-desc|popular")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		items, total := a.catalog.List(ctx, catalog.ListQuery{
			Q:        *q,
			Category: *category,
			Sort:     catalog.ParseSortKey(*sortKey),
			Limit:    *limit,
			Offset:   *offset,
		})
		for _, c := range items {
			fmt.Printf("%4d  %-28s %-22s %6d  %10.2f\n", c.ID, c.Titulo, c.Artist.Nombre, c.Anio, c.Precio)
		}
		fmt.Printf("%d of %d\n", len(items), total)
		return nil
	case "obra":
		id, err := idArg("catalog obra", args)
		if err != nil {
			return err
		}
		d := a.catalog.ArtworkDetail(ctx, id)
		if d == nil {
			return fmt.Errorf("obra %d not found", id)
		}
		return printJSON(d)
	case "artista":
		id, err := idArg("catalog artista", args)
		if err != nil {
			return err
		}
		d := a.catalog.ArtistDetail(ctx, id)
		if d == nil {
			return fmt.Errorf("artista %d not found", id)
		}
		return printJSON(d)
	case "categoria":
		fs := flag.NewFlagSet("catalog categoria", flag.ExitOnError)
		slug := fs.String("slug", "", "category slug")
		_ = fs.Parse(args)
		view := a.catalog.CategoryView(ctx, *slug)
		if view.Category == nil {
			return fmt.Errorf("categoria %q not found", *slug)
		}
		return printJSON(view)
	default:
		return errors.New("usage: vertice catalog <list|obra|artista|categoria>")
	}
}

func (a *app) handleSession(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		u, err := a.session.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", u.Nombre, u.Handle)
		return nil
	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		var in session.RegisterInput
		fs.StringVar(&in.Nombre, "nombre", "", "display name")
		fs.StringVar(&in.Email, "email", "", "email address")
		fs.StringVar(&in.Password, "password", "", "password (6+ characters)")
		fs.StringVar(&in.Rol, "rol", "", "artista|coleccionista")
		_ = fs.Parse(args)

		u, err := a.session.Register(ctx, in)
		var verr *session.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.FieldErrors() {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
		}
		if err != nil {
			return err
		}
		fmt.Printf("registered and logged in as %s (%s)\n", u.Nombre, u.Handle)
		return nil
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	default:
		u := a.session.CurrentUser(ctx)
		if u == nil {
			fmt.Println("anonymous")
			return nil
		}
		return printJSON(u.Public())
	}
}

func (a *app) handleToggle(ctx context.Context, cmd string, args []string) error {
	id, err := idArg(cmd, args)
	if err != nil {
		return err
	}
	if a.session.CurrentUser(ctx) == nil {
		return errors.New("login required")
	}

	var active bool
	if cmd == "fav" {
		if a.catalog.ArtworkDetail(ctx, id) == nil {
			return fmt.Errorf("obra %d not found", id)
		}
		active, err = a.session.ToggleFavorite(ctx, strconv.Itoa(id))
	} else {
		if a.catalog.ArtistDetail(ctx, id) == nil {
			return fmt.Errorf("artista %d not found", id)
		}
		active, err = a.session.ToggleFollow(ctx, strconv.Itoa(id))
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s %d: %t\n", cmd, id, active)
	return nil
}

func (a *app) handleLibrary(ctx context.Context, args []string) error {
	u := a.session.CurrentUser(ctx)
	if u == nil {
		return errors.New("login required")
	}
	sub := "favoritos"
	if len(args) > 0 {
		sub = args[0]
	}
	switch sub {
	case "favoritos":
		return printJSON(a.library.Favorites(ctx, u))
	case "siguiendo":
		return printJSON(a.library.Following(ctx, u))
	default:
		return errors.New("usage: vertice library <favoritos|siguiendo>")
	}
}

func (a *app) handleAccess(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("access", flag.ExitOnError)
	path := fs.String("path", "/", "page path or URL")
	_ = fs.Parse(args)

	allowed := a.session.IsAccessAllowed(ctx, *path)
	fmt.Printf("%s (%s): allowed=%t\n", access.PageID(*path), access.PolicyFor(*path), allowed)
	return nil
}

func idArg(name string, args []string) (int, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.Int("id", 0, "numeric id")
	_ = fs.Parse(args)
	if *id <= 0 {
		return 0, fmt.Errorf("%s: -id is required", name)
	}
	return *id, nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.vertice-storage.json"
	}
	return filepath.Join(home, ".vertice", "storage.json")
}

func printUsage() {
	fmt.Println("vertice [-data dir|url] [-storage file] <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  catalog list|obra|artista|categoria")
	fmt.Println("  login|register|logout|whoami")
	fmt.Println("  fav -id N | follow -id N")
	fmt.Println("  library favoritos|siguiendo")
	fmt.Println("  access -path P")
	fmt.Println("  watch -api URL")
}
