package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Load a manifest and list the classes it builds",
		Long: `Load a class manifest, build every class it declares, and list them.

Members are counted at the --visibility tier. With --format json or yaml the
full metadata snapshot is written, including types and the class dependency
graph.`,
		Example: `  # List classes
  classmeta inspect shop.yaml

  # Only classes in the Shop namespace
  classmeta inspect shop.yaml --pattern 'Shop::*'

  # Full snapshot including private members
  classmeta inspect shop.yaml --visibility private --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCommand,
	}

	cmd.Flags().String("pattern", "", "Only show classes whose package matches this glob")

	return cmd
}

func runInspectCommand(cmd *cobra.Command, args []string) error {
	if _, err := loadManifest(cmd, args[0]); err != nil {
		return err
	}

	pattern, _ := cmd.Flags().GetString("pattern")
	classes := metadata.QueryClasses()
	if pattern != "" {
		classes = metadata.QueryClassesByPattern(pattern)
	}

	out := cmd.OutOrStdout()
	if current.format != "table" {
		if pattern != "" {
			return writeStructured(out, classes)
		}
		return writeStructured(out, metadata.GetMetadata())
	}

	ui.Header(out, fmt.Sprintf("Classes (%d)", len(classes)), current.noColor)
	table := ui.NewTable(out, current.noColor, "CLASS", "KEY", "PARENTS", "ATTRIBUTES", "CONSTRUCTORS", "METHODS")
	for _, c := range classes {
		name := c.Package
		if c.Abstract {
			name += " (abstract)"
		}
		table.AddRow(name, c.Key, list(c.Parents),
			strconv.Itoa(len(c.Attributes)),
			strconv.Itoa(len(c.Constructors)),
			strconv.Itoa(len(c.Methods)))
	}
	table.Render()

	if !verbose {
		return nil
	}

	graph := metadata.GetMetadata().Dependencies
	if len(graph.Edges) == 0 {
		return nil
	}
	edges := append([]metadata.DependencyEdge(nil), graph.Edges...)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].From < edges[j].From })

	fmt.Fprintln(out)
	ui.Header(out, "Dependencies", current.noColor)
	deps := ui.NewTable(out, current.noColor, "FROM", "RELATIONSHIP", "TO", "VIA")
	for _, e := range edges {
		via := e.Via
		if via == "" {
			via = "-"
		}
		deps.AddRow(e.From, e.Relationship, e.To, via)
	}
	deps.Render()
	return nil
}
