package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/adtech-emissions/internal/defaults"
	"github.com/rshade/adtech-emissions/internal/facts"
)

func factsCmd(opts *globalOptions) *cobra.Command {
	var dataDir string

	c := &cobra.Command{
		Use:   "facts [FACT]",
		Short: "List the sourced facts found in the data files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := facts.Collect(os.DirFS(dataDir), ".", opts.logger(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, key := range set.Keys() {
				if len(args) == 1 && key != args[0] {
					continue
				}
				fmt.Fprintf(w, "%s:\n", key)
				for _, f := range set[key] {
					fmt.Fprintf(w, "  - %s (%s)\n", f, f.URL)
				}
			}
			return nil
		},
	}

	c.Flags().StringVar(&dataDir, "data-dir", "data", "directory of company data files")
	return c
}

func computeDefaultsCmd(opts *globalOptions) *cobra.Command {
	var (
		root      string
		dataDir   string
		templates string
		outputDir string
		dryRun    bool
	)

	c := &cobra.Command{
		Use:   "compute-defaults",
		Short: "Compute template defaults from the sourced facts",
		Long:  "Compute the organization, property and atp defaults documents. Each field takes\n" +
			"the template's fact average, then the template override, then the average over\n" +
			"all facts, then the global default.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.logger(cmd)
			fsys := os.DirFS(root)
			tpls, err := defaults.LoadTemplates(fsys, templates)
			if err != nil {
				return fmt.Errorf("load templates: %w", err)
			}
			set, err := facts.Collect(fsys, dataDir, logger)
			if err != nil {
				return fmt.Errorf("collect facts: %w", err)
			}

			for _, model := range defaults.Models {
				computed, err := defaults.Compute(model, tpls, set)
				if err != nil {
					return err
				}
				out, err := computed.YAML()
				if err != nil {
					return err
				}
				if dryRun {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s-defaults.yaml\n%s", model, out)
					continue
				}
				path := filepath.Join(outputDir, model+"-defaults.yaml")
				if err := os.WriteFile(path, out, 0o644); err != nil {
					return err
				}
				logger.Info().Str("file", path).Int("templates", len(computed.Defaults)).Msg("wrote defaults")
			}
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&root, "root", ".", "repository root the other paths are relative to")
	f.StringVar(&dataDir, "data-dir", "data", "directory of company data files, relative to --root")
	f.StringVar(&templates, "templates", "templates/*.yaml", "glob of template files, relative to --root")
	f.StringVar(&outputDir, "output-dir", ".", "directory the defaults files are written to")
	f.BoolVar(&dryRun, "dry-run", false, "print the defaults instead of writing files")
	return c
}
