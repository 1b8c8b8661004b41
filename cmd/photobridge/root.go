package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/gphoto"
	"github.com/cjeanneret/photobridge/internal/config"
	"github.com/cjeanneret/photobridge/internal/logging"
	"github.com/cjeanneret/photobridge/native"
	"github.com/cjeanneret/photobridge/native/libgphoto2"
	"github.com/cjeanneret/photobridge/native/simulator"
)

// app holds what every subcommand needs: the loaded configuration, the
// logger and the native backend.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	api native.API
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		backend string
		debug   int
		a       app
	)

	root := &cobra.Command{
		Use:           "photobridge",
		Short:         "Control cameras over USB: configuration, capture, file transfer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			// CLI overrides (only non-zero values are applied)
			if backend != "" {
				cfg.Backend.Type = backend
			}
			if cmd.Flags().Changed("debug") {
				cfg.Defaults.DebugLevel = debug
			}
			a.cfg = cfg
			a.log = logging.NewStderr(cfg.Defaults.DebugLevel)

			api, err := newBackend(cfg, a.log)
			if err != nil {
				return err
			}
			a.api = api
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")
	root.PersistentFlags().StringVarP(&backend, "backend", "b", "", "backend override: libgphoto2 or simulator")
	root.PersistentFlags().IntVar(&debug, "debug", 0, "debug level 0-4")

	root.AddCommand(
		newVersionCmd(&a),
		newListCmd(&a),
		newSupportedCmd(&a),
		newConfigCmd(&a),
		newCaptureCmd(&a),
		newPreviewCmd(&a),
		newFilesCmd(&a),
		newStorageCmd(&a),
		newServeCmd(&a),
	)
	return root
}

func newBackend(cfg *config.Config, log zerolog.Logger) (native.API, error) {
	switch cfg.Backend.Type {
	case "simulator":
		return simulator.NewDefault(), nil
	case "libgphoto2":
		return libgphoto2.Open(libgphoto2.Options{
			Path:   cfg.Backend.LibraryPath,
			Logger: log,
		})
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Type)
}

// openCamera builds the camera facade from the resolved configuration.
func (a *app) openCamera() *gphoto.Camera {
	opts := []gphoto.Option{
		gphoto.WithLogger(a.log),
		gphoto.WithCaptureTimeout(a.cfg.CaptureTimeout()),
	}
	if a.cfg.PinsUSB() {
		opts = append(opts, gphoto.WithUSBAddress(a.cfg.Camera.USBBus, a.cfg.Camera.USBDevice))
	}
	return gphoto.New(a.api, opts...)
}

func closeCamera(cam *gphoto.Camera) {
	if err := cam.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: close camera: %v\n", err)
	}
}
