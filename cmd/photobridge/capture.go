package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/native"
)

func newCaptureCmd(a *app) *cobra.Command {
	var (
		keep   bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture one frame",
		Long: `Capture one frame. By default the image is shot to camera RAM,
downloaded, and written to the download directory. With --keep the image is
shot to the memory card and left on the camera.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			if keep {
				f, err := cam.CaptureToStorage(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), f.Path())
				return nil
			}

			data, err := cam.Capture(cmd.Context())
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				name := time.Now().Format("20060102-150405") + ".jpg"
				path = filepath.Join(a.cfg.Defaults.DownloadDir, name)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "capture to the memory card and keep the file on camera")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the image to this path")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Grab a live-view frame without firing the shutter",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			data, err := cam.Preview()
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Defaults.DownloadDir, "preview.jpg")
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the frame to this path")
	return cmd
}

func newStorageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Show the camera's storage media",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			media, err := cam.StorageInfo()
			if err != nil {
				return err
			}
			for _, m := range media {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.BaseDir, m.Label)
				if m.Fields&native.StorageFieldCapacity != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  capacity: %d KiB, free: %d KiB\n",
						m.CapacityKB, m.FreeKB)
				}
				if m.Fields&native.StorageFieldFreeImages != 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "  free images: %d\n", m.FreeImages)
				}
			}
			return nil
		},
	}
}
