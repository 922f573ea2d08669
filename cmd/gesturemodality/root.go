package main

import "github.com/spf13/cobra"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gesturemodality",
		Short:         "Gesture input modality for a multimodal interaction manager",
		Long:          "gesturemodality selects the closest tracked body from a depth sensor, recognizes discrete gestures for it and forwards them to the fusion engine as MMI extension notifications.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newControlCmd(),
		newHistoryCmd(),
	)

	return rootCmd
}
