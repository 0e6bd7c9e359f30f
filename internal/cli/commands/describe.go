package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// NewDescribeCommand creates the describe command
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <manifest> <class>",
		Short: "Show one class in detail",
		Long: `Load a class manifest and show everything the engine built for one
class: attributes with their access rules and accessor names, constructors,
methods, and the classes it depends on.

The class may be named by package identity or by registry key.`,
		Example: `  # Describe by package identity
  classmeta describe shop.yaml Shop::Book

  # Describe by key, including private members
  classmeta describe shop.yaml shop_item --visibility private`,
		Args: cobra.ExactArgs(2),
		RunE: runDescribeCommand,
	}
}

func runDescribeCommand(cmd *cobra.Command, args []string) error {
	if _, err := loadManifest(cmd, args[0]); err != nil {
		return err
	}

	class, err := metadata.QueryClass(args[1])
	if err != nil {
		var candidates []string
		for _, c := range metadata.QueryClasses() {
			candidates = append(candidates, c.Package, c.Key)
		}
		suggestions := ui.Suggest(args[1], candidates, 3)
		fmt.Fprint(cmd.ErrOrStderr(), ui.ClassNotFoundError(args[1], suggestions, current.noColor))
		return reported(err)
	}

	out := cmd.OutOrStdout()
	if current.format != "table" {
		return writeStructured(out, class)
	}

	title := class.Package
	if class.Name != "" && class.Name != class.Package {
		title += " (" + class.Name + ")"
	}
	ui.Header(out, title, current.noColor)

	kv := ui.NewKeyValueTable(out, current.noColor)
	kv.AddRow("Key", class.Key)
	if class.Description != "" {
		kv.AddRow("Description", class.Description)
	}
	kv.AddRow("Abstract", yesNo(class.Abstract))
	kv.AddRow("Parents", list(class.Parents))
	kv.AddRow("Subclasses", list(metadata.QuerySubclasses(class.Package)))
	if len(class.Trusted) > 0 {
		kv.AddRow("Trusted", list(class.Trusted))
	}
	kv.AddRow("Capabilities", list(class.Capabilities))
	kv.Render()

	if len(class.Attributes) > 0 {
		fmt.Fprintln(out)
		ui.Header(out, fmt.Sprintf("Attributes (%d)", len(class.Attributes)), current.noColor)
		table := ui.NewTable(out, current.noColor, "NAME", "TYPE", "VISIBILITY", "ACCESS", "CONTEXT", "DEFAULT", "FLAGS", "METHODS")
		for _, a := range class.Attributes {
			def := a.Default
			if def == "" {
				def = "-"
			}
			table.AddRow(a.Name, a.Type, a.Visibility, a.Authorization, a.Context, def,
				attributeFlags(a, class.Package), list(a.Methods))
		}
		table.Render()
	}

	if len(class.Constructors) > 0 {
		fmt.Fprintln(out)
		ui.Header(out, fmt.Sprintf("Constructors (%d)", len(class.Constructors)), current.noColor)
		table := ui.NewTable(out, current.noColor, "NAME", "VISIBILITY", "KIND")
		for _, k := range class.Constructors {
			kind := "custom"
			if k.Generated {
				kind = "generated"
			}
			table.AddRow(k.Name, k.Visibility, kind)
		}
		table.Render()
	}

	if len(class.Methods) > 0 {
		fmt.Fprintln(out)
		ui.Header(out, fmt.Sprintf("Methods (%d)", len(class.Methods)), current.noColor)
		table := ui.NewTable(out, current.noColor, "NAME", "VISIBILITY", "CONTEXT", "ARGS", "RETURNS", "FROM")
		for _, m := range class.Methods {
			returns := m.Returns
			if returns == "" {
				returns = "-"
			}
			table.AddRow(m.Name, m.Visibility, m.Context, list(m.Args), returns, m.DeclaredIn)
		}
		table.Render()
	}

	graph, err := metadata.QueryDependencies(class.Package, metadata.DependencyOptions{Depth: 1})
	if err == nil && len(graph.Edges) > 0 {
		fmt.Fprintln(out)
		ui.Header(out, "Dependencies", current.noColor)
		for _, e := range graph.Edges {
			if e.From != class.Package {
				continue
			}
			line := fmt.Sprintf("  %s %s", e.Relationship, e.To)
			if e.Via != "" {
				line += " via " + e.Via
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// attributeFlags summarizes the boolean properties of an attribute.
func attributeFlags(a metadata.AttributeMetadata, owner string) string {
	var flags []string
	if a.Required {
		flags = append(flags, "required")
	}
	if a.Once {
		flags = append(flags, "once")
	}
	if a.Override {
		flags = append(flags, "override")
	}
	if a.DeclaredIn != owner {
		flags = append(flags, "from "+a.DeclaredIn)
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
