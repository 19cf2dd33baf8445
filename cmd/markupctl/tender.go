package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Simplici0/tenderhub/internal/export"
	"github.com/Simplici0/tenderhub/internal/recalc"
	"github.com/Simplici0/tenderhub/internal/store"
)

func newRecalcCmd(c *cli) *cobra.Command {
	var (
		tenderID int64
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute commercial costs of every item of a tender",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			svc := recalc.NewService(store.New(database), c.cfg.RecalcWorkers)
			run := svc.Run
			if dryRun {
				run = svc.DryRun
			}
			report, err := run(cmd.Context(), tenderID)
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	}
	cmd.Flags().Int64Var(&tenderID, "tender", 0, "tender id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute without writing costs")
	_ = cmd.MarkFlagRequired("tender")
	return cmd
}

func printReport(cmd *cobra.Command, r recalc.Report) {
	out := cmd.OutOrStdout()
	mode := "committed"
	if r.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "tender %d, tactic %q: %d items (%s)\n", r.TenderID, r.TacticName, r.ItemCount, mode)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "CATEGORY\tITEMS\tDIRECT\tCOMMERCIAL\tCOEFFICIENT\t\n")
	for _, s := range r.Categories {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t\n", s.Category, s.Items, money(s.DirectTotal), money(s.CommercialTotal), humanize.FtoaWithDigits(s.Coefficient, 6))
	}
	direct, commercial := r.Totals()
	fmt.Fprintf(tw, "total\t%d\t%s\t%s\t\t\n", r.ItemCount, money(direct), money(commercial))
	tw.Flush()

	for _, w := range r.Warnings {
		if w.ItemID != 0 {
			fmt.Fprintf(out, "warning: item %d: %s\n", w.ItemID, w.Message)
		} else {
			fmt.Fprintf(out, "warning: %s\n", w.Message)
		}
	}
	fmt.Fprintf(out, "took %s\n", r.FinishedAt.Sub(r.StartedAt))
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		tenderID int64
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the commercial cost workbook of a tender",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			st := store.New(database)
			tender, err := st.GetTender(cmd.Context(), tenderID)
			if err != nil {
				return err
			}
			items, err := st.ListItems(cmd.Context(), tenderID)
			if err != nil {
				return err
			}
			raw, err := export.CommercialWorkbook(tender, items)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = fmt.Sprintf("tender-%d-commercial.xlsx", tenderID)
			}
			if err := os.WriteFile(outPath, raw, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d items)\n", outPath, humanize.Bytes(uint64(len(raw))), len(items))
			return nil
		},
	}
	cmd.Flags().Int64Var(&tenderID, "tender", 0, "tender id")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	_ = cmd.MarkFlagRequired("tender")
	return cmd
}
