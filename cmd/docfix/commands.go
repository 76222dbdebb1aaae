package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"docfix/internal/classifier"
	"docfix/internal/config"
	"docfix/internal/report"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
	"docfix/internal/worker"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docfix",
		Short: "Label code blocks in tutorial pages for syntax highlighting",
		Long: `docfix adds class="language-*" to <pre><code> blocks that have no
class, choosing cpp, glsl, lua or plaintext from the block's content.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRewriteCmd(), newClassifyCmd(), newVerifyCmd())
	return root
}

func newRewriteCmd() *cobra.Command {
	var (
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "rewrite FILE...",
		Short: "Label unlabeled code blocks in place",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("dry-run") {
				cfg.Processor.DryRun = dryRun
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Processor.Concurrency = concurrency
			}

			repo, err := storage.Open(cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer repo.Close()

			rw := rewriter.New(classifier.NewHeuristic(), cfg.Rewriter)
			p := worker.NewProcessor(rw, repo, cfg.Rewriter, cfg.Processor)

			results, err := p.ProcessAll(cmd.Context(), args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				fmt.Fprintf(out, "%s\n", res.Run.Path)
				fmt.Fprintf(out, "  labeled %d, skipped %d, substitutions %d",
					res.Run.Labeled, res.Run.Skipped, res.Run.Substitutions)
				if res.Run.DryRun {
					fmt.Fprint(out, " (dry run)")
				}
				fmt.Fprintln(out)
				res.Report.Write(out)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "files processed in parallel")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var (
		text    string
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the label for a snippet read from --text or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet := text
			if !cmd.Flags().Changed("text") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				snippet = string(data)
			}

			out := cmd.OutOrStdout()
			if !explain {
				fmt.Fprintln(out, classifier.Classify(snippet).Label())
				return nil
			}

			v := classifier.Explain(snippet)
			fmt.Fprintf(out, "label: %s\n", v.Category.Label())
			fmt.Fprintf(out, "rule:  %s\n", v.Rule)
			if v.Override {
				return nil
			}
			for _, c := range classifier.Categories {
				fmt.Fprintf(out, "  %-10s %d\n", c, v.Scores[c])
			}
			matches := classifier.NewHeuristic().Matches(snippet)
			for _, c := range classifier.Categories {
				if m := matches[c]; len(m) > 0 {
					sort.Strings(m)
					fmt.Fprintf(out, "  %s: %s\n", c, strings.Join(m, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "snippet to classify")
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "show the deciding rule and scores")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE...",
		Short: "Report unlabeled code blocks and the label distribution",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			unlabeled := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				rep, err := report.Verify(string(data), cfg.Rewriter.Substitutions)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\n", path)
				rep.Write(out)
				fmt.Fprintln(out)
				unlabeled += rep.Unlabeled
			}

			if unlabeled > 0 {
				return fmt.Errorf("%d code blocks without language class", unlabeled)
			}
			return nil
		},
	}
}
