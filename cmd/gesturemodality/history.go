package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/gesturemodality/internal/config"
	"github.com/ayusman/gesturemodality/internal/store"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recognized gestures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.DBPath()); err != nil {
				return fmt.Errorf("no history at %s: %w", cfg.DBPath(), err)
			}

			st, err := store.New(cfg.DBPath())
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			recs, err := st.Recognitions().List(limit)
			if err != nil {
				return fmt.Errorf("list recognitions: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(recs)
			}
			return writeHistory(cmd, recs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of recognitions to show, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func writeHistory(cmd *cobra.Command, recs []*store.Recognition) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no recognitions")
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tGESTURE\tCONFIDENCE\tBODY\tNOTIFIED")
	for _, rec := range recs {
		notified := "yes"
		if !rec.Notified {
			notified = "no: " + rec.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Gesture, rec.Confidence, rec.TrackingID, notified)
	}
	return tw.Flush()
}
