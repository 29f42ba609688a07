package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/delicious2fluid/internal/app"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last journaled import",
		Long:  "Read the run journal kept in Redis (journal.redis_addr) and print the last import into a root namespace.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := app.StatusOptions{}
			opts.Root, _ = cmd.Flags().GetString("root")
			opts.URL, _ = cmd.Flags().GetString("url")

			result, err := a.Status(cmd.Context(), opts)
			if err != nil {
				return err
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			return printStatus(cmd.OutOrStdout(), result, asJSON)
		},
	}

	cmd.Flags().String("root", "", "root namespace to report on (default: fluiddb.root)")
	cmd.Flags().String("url", "", "also print the FluidDB object id journaled for this bookmark URL")

	return cmd
}

func printStatus(out io.Writer, r *app.StatusResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if r.Report == nil {
		fmt.Fprintf(out, "no import journaled for %q\n", r.Root)
	} else {
		rep := r.Report
		state := "ok"
		if !rep.Succeeded() {
			state = "failed"
		}
		fmt.Fprintf(out, "root:      %s (tag layout %s)\n", rep.Root, rep.TagLayout)
		fmt.Fprintf(out, "finished:  %s (%s, took %s)\n",
			rep.FinishedAt.Format(time.RFC3339), state, rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
		fmt.Fprintf(out, "objects:   %d journaled\n", r.Objects)
		if len(rep.Failed) > 0 {
			fmt.Fprintf(out, "failed:    %s\n", strings.Join(rep.Failed, ", "))
		}
		if rep.Error != "" {
			fmt.Fprintf(out, "error:     %s\n", rep.Error)
		}
	}

	if r.URL != "" {
		if r.ObjectID != "" {
			fmt.Fprintf(out, "object:    %s -> %s\n", r.URL, r.ObjectID)
		} else {
			fmt.Fprintf(out, "object:    %s not journaled\n", r.URL)
		}
	}

	if len(r.Roots) > 0 {
		fmt.Fprintf(out, "known roots: %s\n", strings.Join(r.Roots, ", "))
	}
	return nil
}
