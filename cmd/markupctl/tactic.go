package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/seed"
)

// loadTactic reads a tactic document; .yaml and .yml files are YAML, anything else JSON.
func loadTactic(path string) (markup.Tactic, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return markup.Tactic{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return markup.DecodeTacticYAML(raw)
	default:
		return markup.DecodeTactic(raw)
	}
}

// loadMarkups reads a flat key: percentage map. JSON files parse as YAML too.
func loadMarkups(path string) (markup.PercentageSet, error) {
	set := markup.PercentageSet{}
	if path == "" {
		return set, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]float64
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse markups %s: %w", path, err)
	}
	for k, v := range values {
		if err := markup.ValidatePercentage(k, v); err != nil {
			return nil, err
		}
		set[k] = v
	}
	return set, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <tactic-file>",
		Short: "Check a tactic document for structural and reference errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTactic(args[0])
			if err != nil {
				return err
			}
			if err := t.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", t.Name)
			for _, c := range markup.Categories {
				if n := len(t.Sequence(c)); n > 0 {
					fmt.Fprintf(out, "  %-22s %d steps\n", c, n)
				}
			}
			return nil
		},
	}
}

type evalOptions struct {
	tactic   string
	markups  string
	category string
	base     float64
}

func newEvalCmd() *cobra.Command {
	var opts evalOptions
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one category of a tactic and print every step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTactic(opts.tactic)
			if err != nil {
				return err
			}
			markups, err := loadMarkups(opts.markups)
			if err != nil {
				return err
			}
			category, err := markup.ParseCategory(opts.category)
			if err != nil {
				return err
			}
			base := t.BaseCosts[category]
			if cmd.Flags().Changed("base") {
				base = opts.base
			}

			res, err := t.Evaluate(category, base, markups)
			if err != nil {
				return err
			}
			printEvaluation(cmd, t.Sequence(category), base, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.tactic, "tactic", "", "tactic document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.markups, "markups", "", "markup percentages file")
	cmd.Flags().StringVar(&opts.category, "category", "", "category to evaluate")
	cmd.Flags().Float64Var(&opts.base, "base", 0, "base amount (default: the tactic's base cost)")
	_ = cmd.MarkFlagRequired("tactic")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func parameterLabels() map[string]string {
	labels := make(map[string]string, len(seed.Parameters))
	for _, p := range seed.Parameters {
		labels[p.Key] = p.Label
	}
	return labels
}

func printEvaluation(cmd *cobra.Command, seq markup.Sequence, base float64, res markup.Result) {
	labels := parameterLabels()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tSTEP\tFORMULA\tRESULT\n")
	fmt.Fprintf(tw, "0\tbase\t\t%s\n", money(base))
	for i, step := range seq {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, step.Name, markup.FormatStep(step, labels), money(res.StepResults[i]))
	}
	tw.Flush()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "final: %s\ncoefficient: %s\n", money(res.FinalValue), humanize.FtoaWithDigits(res.Coefficient, 6))
	if len(res.MissingMarkups) > 0 {
		fmt.Fprintf(out, "missing markups (treated as 0): %s\n", strings.Join(res.MissingMarkups, ", "))
	}
}

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}
