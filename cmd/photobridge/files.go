package main

import (
	"fmt"
	"os"
	gopath "path"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/gphoto"
	"github.com/cjeanneret/photobridge/native"
)

func newFilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse and transfer files on the camera",
	}
	cmd.AddCommand(newFilesLsCmd(a), newFilesGetCmd(a), newFilesRmCmd(a), newFilesPutCmd(a))
	return cmd
}

func newFilesLsCmd(a *app) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List files; with no folder, walks the whole camera",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			var files []*gphoto.File
			if len(args) == 1 {
				dir, err := cam.Dir(args[0])
				if err != nil {
					return err
				}
				files, err = dir.Files()
				if err != nil {
					return err
				}
			} else {
				var err error
				if files, err = cam.ListAllFiles(); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, f := range files {
				if !long {
					fmt.Fprintln(w, f.Path())
					continue
				}
				info, err := f.Info()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", f.Path(), info.Size, info.MIMEType)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show size and MIME type")
	return cmd
}

func splitRemote(path string) (folder, name string) {
	return gopath.Dir(path), gopath.Base(path)
}

func newFilesGetCmd(a *app) *cobra.Command {
	var (
		output string
		view   string
	)
	cmd := &cobra.Command{
		Use:   "get <remote-path>",
		Short: "Download one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := native.ViewByName(view)
			if !ok {
				return fmt.Errorf("unknown view %q", view)
			}
			cam := a.openCamera()
			defer closeCamera(cam)

			folder, name := splitRemote(args[0])
			dir, err := cam.Dir(folder)
			if err != nil {
				return err
			}
			f := dir.File(name)
			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Defaults.DownloadDir, name)
			}
			if v == native.ViewNormal {
				if err := f.Save(path); err != nil {
					return err
				}
			} else {
				data, err := f.Data(v)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the file to this path")
	cmd.Flags().StringVar(&view, "view", "normal", "representation: normal, preview, raw, audio, exif, metadata")
	return cmd
}

func newFilesRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <remote-path>",
		Short: "Delete one file from the camera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)

			folder, name := splitRemote(args[0])
			dir, err := cam.Dir(folder)
			if err != nil {
				return err
			}
			return dir.File(name).Remove()
		},
	}
}

func newFilesPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-path> <remote-folder>",
		Short: "Upload a local file to a folder on the camera",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cam := a.openCamera()
			defer closeCamera(cam)

			dir, err := cam.Dir(args[1])
			if err != nil {
				return err
			}
			return dir.Upload(filepath.Base(args[0]), data)
		},
	}
}
