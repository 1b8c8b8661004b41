package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/photobridge/gphoto"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change camera settings",
	}
	cmd.AddCommand(newConfigDumpCmd(a), newConfigGetCmd(a), newConfigSetCmd(a),
		newConfigSettingsCmd(a), newConfigStatusCmd(a))
	return cmd
}

func newConfigDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the whole configuration tree",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)
			cfg, err := cam.Config()
			if err != nil {
				return err
			}
			dumpSection(cmd, cfg, "")
			return nil
		},
	}
}

func dumpSection(cmd *cobra.Command, s *gphoto.Section, indent string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s%s (%s)\n", indent, s.Name(), s.Label())
	for _, it := range s.Items() {
		ro := ""
		if it.Readonly() {
			ro = " [ro]"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s = %s%s\n", indent, it.Name(), formatValue(it), ro)
	}
	for _, sub := range s.Sections() {
		dumpSection(cmd, sub, indent+"  ")
	}
}

func formatValue(it *gphoto.Item) string { return formatAny(it.Value()) }

func formatAny(v any) string {
	switch v := v.(type) {
	case nil:
		return "<button>"
	case *bool:
		if v == nil {
			return "<n/a>"
		}
		return strconv.FormatBool(*v)
	case string:
		return v
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", v)
}

func newConfigSettingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print writable settings grouped by section",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)
			settings, err := cam.Settings()
			if err != nil {
				return err
			}
			sections := make([]string, 0, len(settings))
			for name := range settings {
				sections = append(sections, name)
			}
			sort.Strings(sections)
			for _, name := range sections {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", name)
				for _, it := range settings[name] {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s = %s\n", it.Name(), formatValue(it))
				}
			}
			return nil
		},
	}
}

func newConfigStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print read-only state values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)
			status, err := cam.Status()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(status))
			for name := range status {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, formatAny(status[name]))
			}
			return nil
		},
	}
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)
			cfg, err := cam.Config()
			if err != nil {
				return err
			}
			it, ok := cfg.Find(args[0])
			if !ok {
				return fmt.Errorf("no setting named %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(it))
			if choices := it.Choices(); len(choices) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "choices: %s\n", strings.Join(choices, ", "))
			}
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cam := a.openCamera()
			defer closeCamera(cam)
			cfg, err := cam.Config()
			if err != nil {
				return err
			}
			it, ok := cfg.Find(args[0])
			if !ok {
				return fmt.Errorf("no setting named %q", args[0])
			}
			v, err := parseValue(it, args[1])
			if err != nil {
				return err
			}
			return it.Set(v)
		},
	}
}

// parseValue converts the CLI string to the type the entry expects.
func parseValue(it *gphoto.Item, raw string) (any, error) {
	switch it.Kind() {
	case gphoto.KindRange:
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		return float32(f), nil
	case gphoto.KindToggle:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a boolean", raw)
		}
		return b, nil
	case gphoto.KindDate:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not an RFC 3339 time", raw)
		}
		return t, nil
	}
	return raw, nil
}
