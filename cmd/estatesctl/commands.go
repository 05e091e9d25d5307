package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"estates_console/internal/adapters/webhook"
	"estates_console/internal/app"
	"estates_console/internal/bootstrap"
	"estates_console/internal/domain"
)

type opener func(ctx context.Context) (*bootstrap.Services, error)

// cli holds the services for the running command. They are opened in
// PersistentPreRunE; the caller closes them after Execute returns.
type cli struct {
	open opener
	svc  *bootstrap.Services
}

func (c *cli) close() {
	if c.svc == nil {
		return
	}
	if err := c.svc.Close(); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}
	c.svc = nil
}

func newRootCmd(open opener) (*cobra.Command, *cli) {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:          "estatesctl",
		Short:        "Manage the property listing collection from the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			c.svc = svc
			return nil
		},
	}

	root.AddCommand(
		c.listCmd(),
		c.showCmd(),
		c.createCmd(),
		c.updateCmd(),
		c.deleteCmd(),
		c.importCmd(),
		c.nextIDCmd(),
		c.callsCmd(),
		c.statsCmd(),
		c.settingsCmd(),
		c.probeCmd(),
	)
	return root, c
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---- listings ----

func (c *cli) listCmd() *cobra.Command {
	var q app.Query
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch the collection (falls back to the local snapshot)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ls := app.Filter(c.svc.Sync.FetchAll(cmd.Context()), q)
			if asJSON {
				return printJSON(cmd.OutOrStdout(), ls)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tLOCATION\tPRICE\tSTATUS\tFEATURES")
			for _, l := range ls {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f\t%s\t%s\n", l.ID, l.Title, l.Category, l.Location, l.Price, l.Status,
					strings.Join(l.FeatureList(), ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "match title, location or id")
	cmd.Flags().StringVarP(&q.Category, "type", "t", "all", "apartment, villa, commercial or all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print one cached listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.svc.Sync.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), l)
		},
	}
}

func readListing(path string) (domain.Listing, error) {
	var l domain.Listing
	b, err := readInput(path)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(b, &l); err != nil {
		return l, fmt.Errorf("parse %s: %w", path, err)
	}
	return l, nil
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// decodeImport accepts the same two envelopes the list webhook answers with.
func decodeImport(b []byte) ([]domain.Listing, error) {
	d, err := webhook.DecodeListings(b)
	if err != nil {
		return nil, err
	}
	return d.Listings, nil
}

func (c *cli) createCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create -f listing.json",
		Short: "Add a listing; a blank id gets the next suggested one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := readListing(file)
			if err != nil {
				return err
			}
			if l.ID == "" {
				l.ID = domain.NextID(c.svc.Sync.Snapshot())
			}
			l.CleanImages()
			if err := l.Validate(); err != nil {
				return err
			}
			if err := c.svc.Sync.Create(cmd.Context(), l); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), l.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "listing JSON file, - for stdin")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update -f listing.json",
		Short: "Replace a listing by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := readListing(file)
			if err != nil {
				return err
			}
			l.CleanImages()
			if err := l.Validate(); err != nil {
				return err
			}
			if err := c.svc.Sync.Update(cmd.Context(), l); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), l.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "listing JSON file, - for stdin")
	return cmd
}

// forEach runs fn over items with at most workers in flight and returns
// the number of failures.
func forEach[T any](ctx context.Context, workers int, items []T, fn func(T) error) (int, error) {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, it := range items {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return failed, err
		}
		wg.Add(1)
		go func(it T) {
			defer wg.Done()
			defer sem.Release(1)
			if err := fn(it); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(it)
	}
	wg.Wait()
	return failed, nil
}

func (c *cli) deleteCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove every listing carrying each id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			failed, err := forEach(ctx, workers, args, func(id string) error {
				if err := c.svc.Sync.Delete(ctx, id); err != nil {
					log.Warn().Str("id", id).Err(err).Msg("delete failed")
					return err
				}
				log.Info().Str("id", id).Msg("deleted")
				return nil
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d deletes failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent remote deletes")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import -f listings.json",
		Short: "Create many listings from a JSON array or {\"properties\": [...]}",
		Long: "Create many listings, one at a time in file order, so the local\n" +
			"collection and the remote receive them in the same order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := readInput(file)
			if err != nil {
				return err
			}
			ls, err := decodeImport(b)
			if err != nil {
				return err
			}
			existing := c.svc.Sync.Snapshot()
			for i := range ls {
				if ls[i].ID == "" {
					ls[i].ID = domain.NextID(existing)
					existing = append(existing, ls[i])
				}
				ls[i].CleanImages()
				if err := ls[i].Validate(); err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
			}

			log.Info().Int("records", len(ls)).Msg("import starting")
			failed := 0
			for _, l := range ls {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := c.svc.Sync.Create(ctx, l); err != nil {
					log.Warn().Str("id", l.ID).Err(err).Msg("import failed")
					failed++
				}
			}
			log.Info().Int("imported", len(ls)-failed).Int("failed", failed).Msg("import completed")
			if failed > 0 {
				return fmt.Errorf("%d of %d records failed", failed, len(ls))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file, - for stdin")
	return cmd
}

func (c *cli) nextIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the suggested id for a new listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), domain.NextID(c.svc.Sync.Snapshot()))
			return nil
		},
	}
}

// ---- calls, stats, settings ----

func (c *cli) callsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "List recent voice-assistant calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calls := c.svc.Calls.Recent(cmd.Context())
			if asJSON {
				return printJSON(cmd.OutOrStdout(), calls)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCUSTOMER\tSTATUS\tDURATION\tOK")
			for _, cl := range calls {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
					cl.ID, cl.CustomerNumber(), cl.Status, domain.FormatDuration(cl.Duration), cl.Succeeded())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print listing and call analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return printJSON(cmd.OutOrStdout(), app.Summarize(c.svc.Sync.FetchAll(ctx), c.svc.Calls.Recent(ctx)))
		},
	}
}

func (c *cli) settingsCmd() *cobra.Command {
	root := &cobra.Command{Use: "settings", Short: "Show or change integration settings"}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print settings with the private key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), c.svc.Settings.Load(cmd.Context()).Masked())
		},
	}

	var in domain.Settings
	set := &cobra.Command{
		Use:   "set",
		Short: "Store settings; blank keys keep their stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur := c.svc.Settings.Load(ctx).General
			f := cmd.Flags()
			if !f.Changed("company") {
				in.General.CompanyName = cur.CompanyName
			}
			if !f.Changed("admin") {
				in.General.AdminName = cur.AdminName
			}
			if !f.Changed("email") {
				in.General.Email = cur.Email
			}
			if err := c.svc.Settings.Save(ctx, in); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.svc.Settings.Load(ctx).Masked())
		},
	}
	set.Flags().StringVar(&in.Vapi.PublicKey, "public-key", "", "voice assistant public key")
	set.Flags().StringVar(&in.Vapi.AssistantID, "assistant-id", "", "voice assistant id")
	set.Flags().StringVar(&in.Vapi.PrivateKey, "private-key", "", "call log private key")
	set.Flags().StringVar(&in.General.CompanyName, "company", "", "company name")
	set.Flags().StringVar(&in.General.AdminName, "admin", "", "admin display name")
	set.Flags().StringVar(&in.General.Email, "email", "", "admin email")

	root.AddCommand(get, set)
	return root
}

func (c *cli) probeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Call the list webhook once and report the payload shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.svc.Webhook == nil {
				return fmt.Errorf("no webhook client configured")
			}
			d, err := c.svc.Webhook.ListDecoded(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shape=%s listings=%d\n", d.Shape, len(d.Listings))
			return nil
		},
	}
}
