package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// NewTypesCommand creates the types command
func NewTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types [manifest]",
		Short: "List registered data types",
		Long: `List the data types attributes can be declared with.

Without a manifest only the built-in types are shown. With a manifest, the
types it declares and the class types of its classes are listed as well.`,
		Example: `  # List built-in types
  classmeta types

  # Show accessor names under the affordance strategy
  classmeta types --accessors affordance

  # Include the types of a manifest, as YAML
  classmeta types shop.yaml --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTypesCommand,
	}
}

func runTypesCommand(cmd *cobra.Command, args []string) error {
	var reg *types.Registry
	var err error
	if len(args) == 1 {
		reg, err = loadManifest(cmd, args[0])
	} else {
		reg, err = builtinRegistry()
	}
	if err != nil {
		return err
	}

	described := metadata.DescribeTypes(reg)
	out := cmd.OutOrStdout()
	if current.format != "table" {
		return writeStructured(out, described)
	}

	ui.Header(out, fmt.Sprintf("Types (%d)", len(described)), current.noColor)
	table := ui.NewTable(out, current.noColor, "KEY", "NAME", "ACCESSORS", "ALIASES", "CHECKS", "CLASS")
	for _, t := range described {
		class := t.ClassPackage
		if class == "" {
			class = "-"
		}
		accessors := t.Strategy
		if t.Boolean {
			accessors += " (boolean)"
		}
		table.AddRow(t.Key, t.Name, accessors, list(t.Aliases), strconv.Itoa(t.Checks), class)
	}
	table.Render()
	return nil
}
