package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pbaille/coco2yolo/internal/coco"
	"github.com/pbaille/coco2yolo/internal/config"
	"github.com/pbaille/coco2yolo/internal/convert"
	"github.com/pbaille/coco2yolo/internal/domain"
	"github.com/pbaille/coco2yolo/internal/logging"
	"github.com/pbaille/coco2yolo/internal/store"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	ledgerPath string
	logLevel   string
)

func main() {
	rootCmd := newRootCmd(config.Load())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		reindex   bool
		noArchive bool
	)

	rootCmd := &cobra.Command{
		Use:   "coco2yolo <input_path> <output_path>",
		Short: "Convert a COCO segmentation dataset to YOLO format",
		Long: `Convert a COCO segmentation dataset to YOLO format.

The input directory must contain train, valid and test subdirectories, each
holding _annotations.coco.json and the .jpg images it describes. The output
directory receives the images, one .txt label file per image and data.yaml.
A zip of the output directory is written next to it.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			logger := logging.New(cmd.ErrOrStderr(), logLevel)

			var (
				s   *store.Store
				run *domain.Run
			)
			if ledgerPath != "" {
				var err error
				s, err = getStore()
				if err != nil {
					return err
				}
				defer s.Close()

				run, err = s.StartRun(input, output)
				if err != nil {
					return err
				}
			}

			conv := convert.New(afero.NewOsFs(), convert.Options{
				Reindex:   reindex,
				NoArchive: noArchive,
				Logger:    logger,
			})
			res, convErr := conv.Convert(input, output)

			if run != nil {
				if convErr != nil {
					run.Status = domain.StatusFailed
					run.Error = convErr.Error()
				} else {
					run.Status = domain.StatusSucceeded
					run.Classes = res.Classes
					run.Splits = res.Splits
				}
				if err := s.FinishRun(run); err != nil {
					logger.Warn().Err(err).Str("run", run.ID).Msg("couldn't record run")
				}
			}
			if convErr != nil {
				return convErr
			}

			out := cmd.OutOrStdout()
			for _, st := range res.Splits {
				fmt.Fprintf(out, "%-6s %4d images  %5d lines  %d unmatched  %d skipped\n",
					st.Split, st.Images, st.Lines, st.UnmatchedImages, st.SkippedAnnotations)
			}
			fmt.Fprintf(out, "Classes (%d): %s\n", len(res.Classes), strings.Join(res.Classes, ", "))
			fmt.Fprintf(out, "Output:  %s\n", res.Output)
			if res.Archive != "" {
				fmt.Fprintf(out, "Archive: %s\n", res.Archive)
			}
			if run != nil {
				fmt.Fprintf(out, "Run:     %s\n", run.ID[:8])
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", cfg.LedgerPath, "run ledger database path (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&reindex, "reindex", false, "index classes by their position in data.yaml instead of category_id - 1")
	rootCmd.Flags().BoolVar(&noArchive, "no-archive", cfg.NoArchive, "skip writing the zip archive")

	rootCmd.AddCommand(classesCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(showCmd())

	return rootCmd
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(ledgerPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return store.New(ledgerPath)
}

func classesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes <input_path>",
		Short: "List the classes data.yaml would contain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := coco.LoadSplits(afero.NewOsFs(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := convert.CollectClasses(docs)
			for i, name := range names {
				fmt.Fprintf(out, "%3d  %s\n", i, name)
			}

			misaligned := convert.CheckClassAlignment(docs, names)
			if len(misaligned) > 0 {
				fmt.Fprintf(out, "\nCategory ids not matching this order (consider --reindex):\n")
				for _, m := range misaligned {
					fmt.Fprintf(out, "  %s: id %d %q -> index %d\n", m.Split, m.CategoryID, m.Name, m.CategoryID-1)
				}
			}
			return nil
		},
	}
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent conversions from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ledgerPath == "" {
				return fmt.Errorf("no ledger configured: use --ledger or COCO2YOLO_LEDGER")
			}
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(limit, 0)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %-9s  %s -> %s\n",
					r.ID[:8], r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status,
					truncate(r.InputPath, 30), truncate(r.OutputPath, 30))
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ledgerPath == "" {
				return fmt.Errorf("no ledger configured: use --ledger or COCO2YOLO_LEDGER")
			}
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			// Find run by prefix
			runs, err := s.ListRuns(100, 0)
			if err != nil {
				return err
			}

			var found *string
			for _, r := range runs {
				if strings.HasPrefix(r.ID, args[0]) {
					found = &r.ID
					break
				}
			}

			if found == nil {
				return fmt.Errorf("run not found: %s", args[0])
			}

			run, err := s.GetRun(*found)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", run.ID)
			fmt.Fprintf(out, "Status:   %s\n", run.Status)
			fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
			if run.FinishedAt != nil {
				fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "Input:    %s\n", run.InputPath)
			fmt.Fprintf(out, "Output:   %s\n", run.OutputPath)
			if run.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", run.Error)
			}

			if len(run.Classes) > 0 {
				fmt.Fprintf(out, "\nClasses:\n")
				for i, c := range run.Classes {
					fmt.Fprintf(out, "  %d %s\n", i, c)
				}
			}

			if len(run.Splits) > 0 {
				fmt.Fprintf(out, "\nSplits:\n")
				for _, st := range run.Splits {
					fmt.Fprintf(out, "  %-6s %d images, %d lines, %d unmatched, %d skipped\n",
						st.Split, st.Images, st.Lines, st.UnmatchedImages, st.SkippedAnnotations)
				}
				tot := run.Totals()
				fmt.Fprintf(out, "  %-6s %d images, %d lines, %d unmatched, %d skipped\n",
					"total", tot.Images, tot.Lines, tot.UnmatchedImages, tot.SkippedAnnotations)
			}

			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-(max-3):]
}
