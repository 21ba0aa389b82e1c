// Package cli implements the tracker command line client on top of the
// transaction store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/aggregate"
	"github.com/rogerio-castellano/finance-tracker/internal/apperrors"
	"github.com/rogerio-castellano/finance-tracker/internal/gateway"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/session"
	"github.com/rogerio-castellano/finance-tracker/internal/store"
)

type Options struct {
	BaseURL   string
	TokenFile string
	Timeout   time.Duration
	RateLimit float64
	Months    int
	Logger    *applog.Logger
}

// App wires one session, gateway and store for a single CLI invocation.
type App struct {
	out     io.Writer
	gateway *gateway.Client
	manager *session.Manager
	store   *store.Store
	logger  *applog.Logger
	now     func() time.Time

	dashboardOptions aggregate.Options
}

func New(out io.Writer, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Nop()
	}
	logger = logger.WithComponent(applog.ComponentCLI)

	var tokens session.TokenStore
	if opts.TokenFile != "" {
		tokens = session.NewFileStore(opts.TokenFile)
	}
	sess := session.New(tokens)

	gwOpts := []gateway.Option{gateway.WithRateLimit(opts.RateLimit, 1)}
	if opts.Timeout > 0 {
		gwOpts = append(gwOpts, gateway.WithTimeout(opts.Timeout))
	}
	gw := gateway.New(opts.BaseURL, sess, gwOpts...)

	dash := aggregate.DefaultOptions()
	if opts.Months > 0 {
		dash.Months = opts.Months
	}

	return &App{
		out:     out,
		gateway: gw,
		manager: session.NewManager(sess, gw),
		store:   store.New(gw, sess, store.WithLogger(logger), store.WithDashboardOptions(dash)),
		logger:  logger,
		now:     time.Now,

		dashboardOptions: dash,
	}
}

type command struct {
	name    string
	usage   string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"register", "register --name NAME --email EMAIL --password PASSWORD", "create an account and sign in", (*App).register},
	{"login", "login --email EMAIL --password PASSWORD", "sign in", (*App).login},
	{"logout", "logout", "forget the stored session", (*App).logout},
	{"whoami", "whoami", "show the signed-in user", (*App).whoami},
	{"list", "list [filters] [--sort date|amount|category|description|type] [--asc]", "list transactions, newest first", (*App).list},
	{"add", "add --amount N --type income|expense --category C --description D [--date YYYY-MM-DD]", "record a transaction", (*App).add},
	{"update", "update ID [--amount N] [--type T] [--category C] [--description D] [--date YYYY-MM-DD]", "change a transaction", (*App).update},
	{"delete", "delete ID", "delete a transaction", (*App).remove},
	{"import", "import FILE.csv", "import transactions from a CSV file", (*App).importCSV},
	{"dashboard", "dashboard [filters] [--months N]", "show totals, categories and monthly trend", (*App).dashboard},
	{"categories", "categories [--type income|expense] | categories add --name NAME [--type T] [--color #RRGGBB]", "list the category catalogue", (*App).categories},
	{"health", "health", "check that the service answers", (*App).health},
}

var ErrUsage = errors.New("usage")

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.store.Close()

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.Usage()
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	a.Usage()
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (a *App) Usage() {
	fmt.Fprintln(a.out, "Usage: tracker COMMAND [flags]")
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")
	sorted := make([]command, len(commands))
	copy(sorted, commands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })
	for _, c := range sorted {
		fmt.Fprintf(a.out, "  %-11s %s\n", c.name, c.summary)
		fmt.Fprintf(a.out, "  %-11s   tracker %s\n", "", c.usage)
	}
}

// resume restores the stored session. Commands that talk to the server on
// behalf of a user fail early without one.
func (a *App) resume(ctx context.Context) error {
	_, ok, err := a.manager.Resume(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.New(apperrors.KindUnauthorized, "cli", "not signed in, run 'tracker login' first")
	}
	return nil
}

// Describe renders err for the terminal, including field errors.
func Describe(err error) string {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	msg := appErr.Message
	if msg == "" {
		msg = appErr.Error()
	}
	if len(appErr.Fields) == 0 {
		return msg
	}
	fields := make([]string, 0, len(appErr.Fields))
	for f, d := range appErr.Fields {
		fields = append(fields, fmt.Sprintf("  %s: %s", f, d))
	}
	sort.Strings(fields)
	return msg + "\n" + strings.Join(fields, "\n")
}
