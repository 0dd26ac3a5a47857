// Package cli implements the casavia command line client: one-shot
// subcommands over a persisted session.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"casavia/internal/client"
	"casavia/internal/client/storage"
)

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

const usage = `usage: casavia-client <command> [args]

commands:
  signin <username> <password>   sign in and persist the session
  me                             show the signed-in user
  listings [-guests n] [-search s]
  listing <id>
  reviews <listing-id>
  add-listing -name .. -location-id .. [-description ..] [-price n] [-guests n]
  signout                        sign out and drop the session
`

// App runs one subcommand against the API and exits.
type App struct {
	api    *client.Client
	tokens *storage.Store
	out    io.Writer
}

// NewApp wires the API client with the durable session store.
func NewApp(ctx context.Context, out io.Writer) (*App, error) {
	baseURL := envString("CASAVIA_SERVER_URL", "http://localhost:3001")
	dbPath := envString("CASAVIA_CLIENT_DB", "casavia-session.db")

	tokens, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	api, err := client.New(baseURL, tokens, nil)
	if err != nil {
		_ = tokens.Close()
		return nil, err
	}

	return &App{api: api, tokens: tokens, out: out}, nil
}

func (a *App) Close() error {
	return a.tokens.Close()
}

// Run dispatches a subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signin":
		return a.signIn(ctx, rest)
	case "me":
		return a.me(ctx)
	case "listings":
		return a.listings(ctx, rest)
	case "listing":
		return a.listing(ctx, rest)
	case "reviews":
		return a.reviews(ctx, rest)
	case "add-listing":
		return a.addListing(ctx, rest)
	case "signout":
		return a.signOut(ctx)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) signIn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: signin <username> <password>")
	}

	user, err := a.api.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "signed in (auth enforcement is disabled on the server)")
		return nil
	}
	fmt.Fprintf(a.out, "signed in as %s (%s)\n", user.Name, user.Username)
	return nil
}

func (a *App) me(ctx context.Context) error {
	user, err := a.api.Bootstrap(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	return a.printJSON(user)
}

func (a *App) listings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("listings", flag.ContinueOnError)
	guests := fs.Int("guests", 0, "minimum guest capacity")
	search := fs.String("search", "", "substring match on name, description, or city")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.api.Bootstrap(ctx); err != nil {
		return err
	}

	all, err := a.api.Listings(ctx, client.Filter{Guests: *guests, Search: *search})
	if err != nil {
		return err
	}
	return a.printJSON(all)
}

func (a *App) listing(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: listing <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid listing id %q", args[0])
	}

	if _, err := a.api.Bootstrap(ctx); err != nil {
		return err
	}

	l, err := a.api.Listing(ctx, id)
	if err != nil {
		return err
	}
	return a.printJSON(l)
}

func (a *App) reviews(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: reviews <listing-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid listing id %q", args[0])
	}

	if _, err := a.api.Bootstrap(ctx); err != nil {
		return err
	}

	rs, err := a.api.Reviews(ctx, id)
	if err != nil {
		return err
	}
	return a.printJSON(rs)
}

func (a *App) addListing(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-listing", flag.ContinueOnError)
	name := fs.String("name", "", "listing name (required)")
	description := fs.String("description", "", "listing description")
	locationID := fs.Int64("location-id", 0, "location id (required)")
	price := fs.Int("price", 0, "price per night")
	guests := fs.Int("guests", 1, "maximum guests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.api.Bootstrap(ctx); err != nil {
		return err
	}

	created, err := a.api.CreateListing(ctx, client.CreateListingInput{
		Name:          *name,
		Description:   *description,
		LocationID:    *locationID,
		PricePerNight: *price,
		MaxGuests:     *guests,
	})
	if err != nil {
		return err
	}
	return a.printJSON(created)
}

func (a *App) signOut(ctx context.Context) error {
	if _, err := a.api.Bootstrap(ctx); err != nil {
		return err
	}
	if err := a.api.SignOut(ctx); err != nil {
		// Local state is already cleared; the server call is best-effort.
		fmt.Fprintf(a.out, "signed out locally (server unreachable: %v)\n", err)
		return nil
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Run is the entrypoint used by cmd/client.
func Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := NewApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(ctx, os.Args[1:])
}
