package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rogerio-castellano/finance-tracker/internal/aggregate"
	"github.com/rogerio-castellano/finance-tracker/internal/filter"
	"github.com/rogerio-castellano/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password, at least 6 characters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.manager.Register(ctx, *name, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.manager.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", user.Name, user.Email)
	return nil
}

func (a *App) logout(_ context.Context, _ []string) error {
	a.manager.Logout()
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	if err := a.resume(ctx); err != nil {
		return err
	}
	user, _ := a.manager.Session().User()
	fmt.Fprintf(a.out, "%d\t%s\t%s\n", user.ID, user.Name, user.Email)
	return nil
}

func (a *App) health(ctx context.Context, _ []string) error {
	if err := a.gateway.Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

// criteriaFlags binds the filter flags shared by list and dashboard.
type criteriaFlags struct {
	from, to, typ, category, min, max, search *string
}

func bindCriteria(fs *flag.FlagSet) criteriaFlags {
	return criteriaFlags{
		from:     fs.String("from", "", "earliest date, inclusive (YYYY-MM-DD)"),
		to:       fs.String("to", "", "latest date, inclusive (YYYY-MM-DD)"),
		typ:      fs.String("type", "", "income, expense or all"),
		category: fs.String("category", "", "exact category name"),
		min:      fs.String("min", "", "minimum amount, inclusive"),
		max:      fs.String("max", "", "maximum amount, inclusive"),
		search:   fs.String("search", "", "text to find in description or category"),
	}
}

func (f criteriaFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{Type: *f.typ, Category: *f.category, Search: *f.search}
	var err error
	if c.From, err = optionalDate("from", *f.from); err != nil {
		return c, err
	}
	if c.To, err = optionalDate("to", *f.to); err != nil {
		return c, err
	}
	if c.MinAmount, err = optionalAmount("min", *f.min); err != nil {
		return c, err
	}
	if c.MaxAmount, err = optionalAmount("max", *f.max); err != nil {
		return c, err
	}
	return c, nil
}

func optionalDate(name, s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func optionalAmount(name, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: invalid amount %q", name, s)
	}
	return &d, nil
}

// loadFiltered signs in, loads the cache and applies the criteria.
func (a *App) loadFiltered(ctx context.Context, cf criteriaFlags) error {
	c, err := cf.criteria()
	if err != nil {
		return err
	}
	if err := a.resume(ctx); err != nil {
		return err
	}
	if err := a.store.ApplyFilter(c); err != nil {
		return err
	}
	return a.store.Load(ctx)
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	cf := bindCriteria(fs)
	sortBy := fs.String("sort", string(aggregate.SortByDate), "date, amount, category, description or type")
	asc := fs.Bool("asc", false, "sort ascending instead of descending")
	if err := fs.Parse(args); err != nil {
		return err
	}
	column, err := aggregate.ParseSortColumn(*sortBy)
	if err != nil {
		return fmt.Errorf("%w: --sort: %v", ErrUsage, err)
	}
	if err := a.loadFiltered(ctx, cf); err != nil {
		return err
	}

	txs := a.store.Visible()
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions")
		return nil
	}
	printTransactions(a.out, aggregate.Sort(txs, column, *asc))
	return nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	amount := fs.String("amount", "", "amount, greater than zero")
	typ := fs.String("type", string(models.Expense), "income or expense")
	category := fs.String("category", "", "category name")
	description := fs.String("description", "", "description")
	date := fs.String("date", a.now().Format(models.DateLayout), "date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amt, err := decimal.NewFromString(*amount)
	if err != nil {
		amt = decimal.Zero
	}
	if err := a.resume(ctx); err != nil {
		return err
	}

	created, err := a.store.Add(ctx, models.TransactionDraft{
		Amount:      amt,
		Type:        models.TransactionType(*typ),
		Category:    *category,
		Description: *description,
		Date:        *date,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added transaction %d\n", created.ID)
	return nil
}

func (a *App) update(ctx context.Context, args []string) error {
	fs := newFlagSet("update")
	amount := fs.String("amount", "", "new amount")
	typ := fs.String("type", "", "new type")
	category := fs.String("category", "", "new category")
	description := fs.String("description", "", "new description")
	date := fs.String("date", "", "new date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}

	var patch models.TransactionPatch
	if fs.Changed("amount") {
		amt, err := decimal.NewFromString(*amount)
		if err != nil {
			return fmt.Errorf("--amount: invalid amount %q", *amount)
		}
		patch.Amount = &amt
	}
	if fs.Changed("type") {
		t := models.TransactionType(*typ)
		patch.Type = &t
	}
	if fs.Changed("category") {
		patch.Category = category
	}
	if fs.Changed("description") {
		patch.Description = description
	}
	if fs.Changed("date") {
		patch.Date = date
	}
	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", ErrUsage)
	}

	if err := a.resume(ctx); err != nil {
		return err
	}
	if err := a.store.Load(ctx); err != nil {
		return err
	}
	updated, err := a.store.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated transaction %d\n", updated.ID)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := idArg(fs.Args())
	if err != nil {
		return err
	}

	if err := a.resume(ctx); err != nil {
		return err
	}
	if err := a.store.Load(ctx); err != nil {
		return err
	}
	if err := a.store.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted transaction %d\n", id)
	return nil
}

func (a *App) importCSV(ctx context.Context, args []string) error {
	fs := newFlagSet("import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: expected one CSV file", ErrUsage)
	}
	path := fs.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := a.resume(ctx); err != nil {
		return err
	}
	if err := a.store.Load(ctx); err != nil {
		return err
	}
	res, err := a.store.Import(ctx, path, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d transactions\n", res.Imported)
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  row %d: %s\n", e.Row, e.Message)
	}
	return nil
}

func (a *App) dashboard(ctx context.Context, args []string) error {
	fs := newFlagSet("dashboard")
	cf := bindCriteria(fs)
	months := fs.Int("months", 0, "length of the monthly trend, in months")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *months < 0 {
		return fmt.Errorf("%w: --months must be positive", ErrUsage)
	}
	if err := a.loadFiltered(ctx, cf); err != nil {
		return err
	}

	opts := a.dashboardOptions
	if *months > 0 {
		opts.Months = *months
	}
	printDashboard(a.out, a.store.DashboardWith(a.now(), opts))
	return nil
}

// categories lists the catalogue. With "add" it first appends a category;
// the catalogue lives only as long as the process, so the addition is shown
// in this listing and gone on the next run.
func (a *App) categories(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "add" {
		return a.addCategory(ctx, args[1:])
	}

	fs := newFlagSet("categories")
	typ := fs.String("type", "", "only income or expense categories")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cats := a.store.Categories()
	if *typ != "" {
		t, err := models.ParseTransactionType(*typ)
		if err != nil {
			return err
		}
		kept := cats[:0]
		for _, c := range cats {
			if c.Type == t {
				kept = append(kept, c)
			}
		}
		cats = kept
	}
	printCategories(a.out, cats)
	return nil
}

func (a *App) addCategory(_ context.Context, args []string) error {
	fs := newFlagSet("categories add")
	name := fs.String("name", "", "category name")
	typ := fs.String("type", string(models.Expense), "income or expense")
	color := fs.String("color", "", "hex colour, e.g. #10B981")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := a.store.AddCategory(*name, models.TransactionType(*typ), *color)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added category %s (%s)\n", c.Name, c.Type)
	printCategories(a.out, a.store.Categories())
	return nil
}

func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one transaction id", ErrUsage)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid transaction id %q", ErrUsage, args[0])
	}
	return id, nil
}
