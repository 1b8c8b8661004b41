package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/gphoto"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the native library version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "libgphoto2 %s\n", gphoto.LibraryVersion(a.api))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected cameras",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cams, err := gphoto.ListCameras(a.api)
			if err != nil {
				return err
			}
			if len(cams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cameras detected")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPORT")
			for _, c := range cams {
				fmt.Fprintf(w, "%s\t%s\n", c.Model, c.Port)
			}
			return w.Flush()
		},
	}
}

func newSupportedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "supported",
		Short: "List every camera model the driver database knows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			byDriver, err := gphoto.SupportedCameras(a.api)
			if err != nil {
				return err
			}
			for driver, models := range byDriver {
				for _, m := range models {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", driver, m)
				}
			}
			return nil
		},
	}
}
