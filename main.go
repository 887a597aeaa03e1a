package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"osrs_tax_columns/internal/app"
	"osrs_tax_columns/internal/columns"
	"osrs_tax_columns/internal/export"
	"osrs_tax_columns/internal/host"
	"osrs_tax_columns/internal/loop"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var storePath string

	root := &cobra.Command{
		Use:          "osrs-tax",
		Short:        "Add post-tax margin and profit columns to a Grand Exchange price table",
		SilenceUsage: true,
	}

	loadConfig := func() app.Config {
		app.SetupEnvironment()
		cfg := app.LoadConfig()
		if storePath != "" {
			cfg.StorePath = storePath
		}
		return cfg
	}

	root.PersistentFlags().StringVar(&storePath, "store", "", "preference database (overrides OSRS_STORE_PATH)")

	root.AddCommand(
		newRenderCmd(loadConfig),
		newWatchCmd(loadConfig),
		newExportCmd(loadConfig),
		newHideCmd(loadConfig),
		newUnhideAllCmd(loadConfig),
		newHiddenCmd(loadConfig),
	)
	return root
}

// sortFlags selects the initial sort the same way header clicks do.
type sortFlags struct {
	column    string
	ascending bool
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.column, "sort", "", "sort by margin or profit")
	cmd.Flags().BoolVar(&f.ascending, "asc", false, "sort ascending instead of descending")
}

func (f *sortFlags) apply(page *host.Page, s *loop.Session) error {
	if f.column == "" {
		return nil
	}
	col, ok := columns.ParseDerived(f.column)
	if !ok {
		return fmt.Errorf("unknown sort column %q (want margin or profit)", f.column)
	}
	s.SortBy(page.Document(), col)
	if f.ascending {
		s.SortBy(page.Document(), col)
	}
	return nil
}

func newRenderCmd(loadConfig func() app.Config) *cobra.Command {
	var in, out string
	var sf sortFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run one reconciliation pass over a saved page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			store := openStore(ctx, cfg)
			defer store.Close()

			output := out
			if output == "-" {
				output = ""
			}
			page, err := openPage(in, output, cmd.InOrStdin())
			if err != nil {
				return err
			}

			s := newSession(ctx, cfg, store, nil)
			res := s.Pass(page.Document())
			if !res.Found {
				log.Warn().Str("page", in).Msg("No item table found; page written unchanged")
			}
			if err := sf.apply(page, s); err != nil {
				return err
			}

			if output == "" {
				return page.Render(cmd.OutOrStdout())
			}
			if err := page.Flush(); err != nil {
				return err
			}
			log.Info().
				Int("rows", res.Rows).
				Int("skipped", res.Skipped).
				Str("out", output).
				Msg("Rendered page")
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "host page HTML file (- for stdin)")
	cmd.Flags().StringVar(&out, "out", "-", "augmented page output (- for stdout)")
	sf.register(cmd)
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newWatchCmd(loadConfig func() app.Config) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep an augmented copy of a live page up to date",
		Long: `Reconciles the page every tick and whenever it changes on disk, writing
the augmented copy to --out. Commands read from stdin act as clicks:

  sort margin|profit   click a post-tax header
  hide <item name>     click the row's hide button
  unhide-all           click the unhide-all button (asks for confirmation)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := openStore(ctx, cfg)
			defer store.Close()

			page, err := host.Open(in, out)
			if err != nil {
				return err
			}

			commands := newCommandReader(cmd.InOrStdin(), cmd.ErrOrStderr())
			runner := &loop.Runner{
				Page:     page,
				Session:  newSession(ctx, cfg, store, commands.confirm),
				Interval: cfg.TickInterval,
			}
			return runner.Run(ctx, commands.run(ctx))
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "host page HTML file")
	cmd.Flags().StringVar(&out, "out", "", "augmented page output")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newExportCmd(loadConfig func() app.Config) *cobra.Command {
	var in, xlsx string
	var sf sortFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Reconcile a saved page and export its items to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			store := openStore(ctx, cfg)
			defer store.Close()

			page, err := host.Open(in, "")
			if err != nil {
				return err
			}
			s := newSession(ctx, cfg, store, nil)
			if res := s.Pass(page.Document()); !res.Found {
				return fmt.Errorf("no item table found in %s", in)
			}
			if err := sf.apply(page, s); err != nil {
				return err
			}
			return export.WriteXLSX(xlsx, export.Rows(page.Document()))
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "host page HTML file")
	cmd.Flags().StringVar(&xlsx, "xlsx", "items.xlsx", "workbook to write")
	sf.register(cmd)
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func newHideCmd(loadConfig func() app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <item>...",
		Short: "Hide items by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			store := openStore(ctx, cfg)
			defer store.Close()

			s := newSession(ctx, cfg, store, nil)
			for _, item := range args {
				if err := s.Hidden.Add(ctx, item); err != nil {
					return err
				}
				log.Info().Str("item", item).Msg("Item hidden")
			}
			return nil
		},
	}
}

func newUnhideAllCmd(loadConfig func() app.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "unhide-all",
		Short: "Clear the hidden item list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			store := openStore(ctx, cfg)
			defer store.Close()

			confirm := promptConfirm(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr(), yes)
			s := newSession(ctx, cfg, store, confirm)
			count := s.Hidden.Len()
			if !s.Confirm(unhidePrompt) {
				log.Info().Msg("Unhide all cancelled")
				return nil
			}
			if err := s.Hidden.Clear(ctx); err != nil {
				return err
			}
			log.Info().Int("unhidden", count).Msg("All items unhidden")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newHiddenCmd(loadConfig func() app.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "hidden",
		Short: "List hidden items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			store := openStore(ctx, cfg)
			defer store.Close()

			for _, item := range newSession(ctx, cfg, store, nil).Hidden.Items() {
				fmt.Fprintln(cmd.OutOrStdout(), item)
			}
			return nil
		},
	}
}
