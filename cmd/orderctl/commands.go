package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/haikalarif/portofolio-freelance/internal/catalog"
	"github.com/haikalarif/portofolio-freelance/internal/format"
	"github.com/haikalarif/portofolio-freelance/internal/messaging"
	"github.com/haikalarif/portofolio-freelance/internal/order"
	"github.com/haikalarif/portofolio-freelance/internal/platform/config"
	"github.com/haikalarif/portofolio-freelance/internal/platform/observability"
)

type options struct {
	catalogPath string
	destination string
	host        string
	locale      string
	symbol      string
	verbose     bool
}

func rootCmd(cfg config.Config) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "orderctl",
		Short: "Compose pricing page orders from the command line",
		Long: `Compose the same order message the pricing page sends, without a browser.

Examples:
  orderctl list
  orderctl message --package basic --addon seo
  orderctl link --package bisnis --addon seo --addon hosting
`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if !opts.verbose {
				return
			}
			core := zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())),
				zap.DebugLevel,
			)
			cmd.SetContext(observability.WithLogger(cmd.Context(), zap.New(core)))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", cfg.Site.CatalogPath, "Catalog file")
	cmd.PersistentFlags().StringVar(&opts.destination, "destination", cfg.Messaging.OrderDestination, "Order destination number")
	cmd.PersistentFlags().StringVar(&opts.host, "host", cfg.Messaging.Host, "Messaging host")
	cmd.PersistentFlags().StringVar(&opts.locale, "locale", cfg.Format.Locale, "Number formatting locale")
	cmd.PersistentFlags().StringVar(&opts.symbol, "symbol", cfg.Format.Symbol, "Currency symbol")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log skipped catalog entries")

	cmd.AddCommand(listCmd(opts), messageCmd(opts), linkCmd(opts))
	return cmd
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List packages and add-ons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			money := opts.formatter()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Packages:")
			for _, p := range cat.Packages() {
				fmt.Fprintf(out, "  %-12s %-24s %s\n", p.ID, p.Name, money.Format(p.BasePrice))
			}
			fmt.Fprintln(out, "Add-ons:")
			for _, a := range cat.Addons() {
				fmt.Fprintf(out, "  %-12s %-24s %s\n", a.ID, a.Name, money.Format(a.Price))
			}
			return nil
		},
	}
}

func messageCmd(opts *options) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Print the order message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := opts.dispatch(cmd.Context(), nil, sel)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	sel.bind(cmd)
	return cmd
}

func linkCmd(opts *options) *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Print the deep link that opens the order in the chat application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			launcher := messaging.NewLauncher(messaging.NewClient(opts.host))
			ctx := messaging.WithOpener(cmd.Context(), messaging.WriterOpener{W: cmd.OutOrStdout()})
			_, err := opts.dispatch(ctx, launcher, sel)
			return err
		},
	}
	sel.bind(cmd)
	return cmd
}

type selectionFlags struct {
	packageID string
	addons    []string
}

func (s *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.packageID, "package", "p", "", "Package id")
	cmd.Flags().StringSliceVarP(&s.addons, "addon", "a", nil, "Add-on id (repeatable)")
	_ = cmd.MarkFlagRequired("package")
}

func (o *options) formatter() *format.Formatter {
	return format.Parse(o.locale, o.symbol)
}

func (o *options) load(ctx context.Context) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(o.catalogPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		for _, issue := range cat.Skipped() {
			observability.FromContext(ctx).Warn("catalog entry skipped", zap.String("issue", issue.String()))
		}
	}
	return cat, nil
}

func (o *options) dispatch(ctx context.Context, launcher order.Launcher, sel selectionFlags) (order.Result, error) {
	cat, err := o.load(ctx)
	if err != nil {
		return order.Result{}, err
	}
	pkg, err := cat.Package(sel.packageID)
	if err != nil {
		return order.Result{}, err
	}

	reg := cat.NewRegistry()
	for _, id := range sel.addons {
		id = strings.TrimSpace(id)
		idx := reg.Index(id)
		if idx < 0 {
			return order.Result{}, fmt.Errorf("unknown add-on %q", id)
		}
		reg.Set(idx, true)
	}

	d := order.NewDispatcher(launcher, o.destination, order.WithFormatter(o.formatter()))
	return d.Dispatch(ctx, reg, order.PackageControl{
		Name:  pkg.Name,
		Price: strconv.FormatInt(pkg.BasePrice, 10),
	})
}
