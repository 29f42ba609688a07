package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/app"
	"github.com/MrSnakeDoc/delicious2fluid/internal/scheduler"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy every bookmark of a delicious export into FluidDB",
		Long: `Fetch all posts from the delicious API (or read --file), then create the
namespaces, tags and objects they need in FluidDB. Running it again
updates the same objects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("tag-layout") {
				cfg.FluidDB.TagLayout, _ = cmd.Flags().GetString("tag-layout")
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.Import.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
			}
			if cmd.Flags().Changed("include-private") {
				include, _ := cmd.Flags().GetBool("include-private")
				cfg.Import.SkipPrivate = !include
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := app.ImportOptions{}
			opts.File, _ = cmd.Flags().GetString("file")
			opts.Root, _ = cmd.Flags().GetString("root")
			opts.DryRun, _ = cmd.Flags().GetBool("dry-run")

			asJSON, _ := cmd.Flags().GetBool("json")
			job := func(ctx context.Context) error {
				result, runErr := a.Import(ctx, opts)
				if result != nil {
					if err := printImport(cmd.OutOrStdout(), result, asJSON); err != nil {
						return err
					}
				}
				return runErr
			}

			every, _ := cmd.Flags().GetDuration("every")
			watch, _ := cmd.Flags().GetBool("watch")
			if every == 0 && !watch {
				return job(cmd.Context())
			}

			ctx := cmd.Context()
			trigger := make(chan struct{}, 1)
			fire := func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			var changes <-chan struct{}
			if watch {
				file := opts.File
				if file == "" {
					file = cfg.Delicious.File
				}
				if file == "" {
					return errors.New("--watch needs an export file (--file or delicious.file)")
				}
				if changes, err = scheduler.WatchFile(ctx, file, a.Logger(), scheduler.DefaultDebounce); err != nil {
					return err
				}
			}

			go func() {
				for {
					select {
					case <-hup:
						fire()
					case <-changes:
						fire()
					case <-ctx.Done():
						return
					}
				}
			}()

			// Failed records are retried by the next run.
			scheduled := func(ctx context.Context) error {
				if err := job(ctx); err != nil && !errors.Is(err, app.ErrPartialImport) {
					return err
				}
				return nil
			}
			return scheduler.NewReimporter(scheduled, a.Logger(), every, trigger).Run(ctx)
		},
	}

	cmd.Flags().String("file", "", "read this export file instead of calling the delicious API")
	cmd.Flags().String("root", "", "destination root namespace (default: fluiddb username)")
	cmd.Flags().Bool("dry-run", false, "parse the export and print counts without writing to FluidDB")
	cmd.Flags().String("tag-layout", "", `where tag-name tags live: "root" or "nested"`)
	cmd.Flags().Bool("continue-on-error", false, "keep going when one bookmark fails")
	cmd.Flags().Bool("include-private", false, "also import bookmarks marked shared=no")
	cmd.Flags().Duration("every", 0, "keep running and import again at this interval (SIGHUP imports now)")
	cmd.Flags().Bool("watch", false, "keep running and import again whenever the export file changes")

	return cmd
}

func printImport(out io.Writer, r *app.ImportResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(out, "source:   %s (%s)\n", r.Source, r.Format)
	fmt.Fprintf(out, "tags:     %d\n", r.Tags)
	fmt.Fprintf(out, "records:  %d (%d private skipped)\n", r.Records, r.Skipped)
	if r.Report == nil {
		fmt.Fprintln(out, "dry run:  nothing written")
		return nil
	}

	rep := r.Report
	fmt.Fprintf(out, "root:     %s (tag layout %s)\n", rep.Root, rep.TagLayout)
	fmt.Fprintf(out, "created:  %d namespaces, %d field tags, %d tag-name tags\n",
		rep.NamespacesCreated, rep.FieldTagsCreated, rep.TagNamesCreated)
	fmt.Fprintf(out, "objects:  %d\n", len(rep.Objects))
	if len(rep.Failed) > 0 {
		fmt.Fprintf(out, "failed:   %d\n", len(rep.Failed))
		for _, u := range rep.Failed {
			fmt.Fprintf(out, "  - %s\n", u)
		}
	}
	if rep.Error != "" {
		fmt.Fprintf(out, "error:    %s\n", rep.Error)
	}
	return nil
}
