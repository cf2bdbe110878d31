package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wehubfusion/Daedalus/pkg/builtin/all"
	"github.com/wehubfusion/Daedalus/pkg/discovery"
	"github.com/wehubfusion/Daedalus/pkg/events"
	"github.com/wehubfusion/Daedalus/pkg/registry"
	"go.uber.org/zap"
)

// buildRegistry loads the built-in units plus any manifest roots.
func buildRegistry(cmd *cobra.Command, logger *zap.Logger) (*registry.Registry, error) {
	config := registry.DefaultConfig()
	if natsURL != "" {
		emitter, err := events.NewNATSEmitter(cmd.Context(), events.DefaultNATSConfig(natsURL), logger)
		if err != nil {
			return nil, err
		}
		config.Emitter = emitter
	}
	reg := registry.New(config, logger)
	reg.AddSource(all.NewSource(logger))
	if len(manifestRoots) > 0 {
		reg.AddSource(discovery.NewManifestSource(manifestRoots, all.Factories(), logger))
	}
	if err := reg.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return reg, nil
}

func newListCommand(logger *zap.Logger) *cobra.Command {
	var category, tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded units",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cmd, logger)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close(cmd.Context()) }()

			var units []*registry.LoadedUnit
			switch {
			case category != "":
				units = reg.GetByCategory(category)
			case tag != "":
				units = reg.GetByTag(tag)
			default:
				units = reg.Units()
			}

			if jsonOutput {
				descriptors := make([]interface{}, 0, len(units))
				for _, u := range units {
					descriptors = append(descriptors, u.Descriptor())
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(descriptors)
			}
			for _, u := range units {
				d := u.Descriptor()
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %s\n", d.ID, d.Category, d.Description)
			}
			for _, u := range reg.DisabledUnits() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s DISABLED: %s\n",
					u.ID(), u.Descriptor().Category, u.Diagnostic())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	return cmd
}

func newSearchCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search units by id, name, description, or tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cmd, logger)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close(cmd.Context()) }()

			for _, u := range reg.Search(args[0]) {
				d := u.Descriptor()
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", d.ID, d.Description)
			}
			return nil
		},
	}
}

func newMetricsCommand(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show aggregate registry metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := buildRegistry(cmd, logger)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close(cmd.Context()) }()
			return json.NewEncoder(cmd.OutOrStdout()).Encode(reg.Metrics())
		},
	}
}
