package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/pkg/meta"
)

// constructedInstance is the structured output of the new command.
type constructedInstance struct {
	Class      string                 `json:"class" yaml:"class"`
	ID         string                 `json:"id" yaml:"id"`
	Attributes map[string]interface{} `json:"attributes" yaml:"attributes"`
}

// NewConstructCommand creates the new command
func NewConstructCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <manifest> <class> [attribute=value...]",
		Short: "Construct an instance and show its attribute values",
		Long: `Load a class manifest and call a constructor of one class with the given
attribute values. Values are read as YAML scalars, so 12 is an integer, 1.5 a
float, true a boolean and anything else a string.

The instance's readable attributes are shown as seen by the --as caller,
which defaults to code outside every class.`,
		Example: `  # Construct a book
  classmeta new shop.yaml Shop::Book code=ABC-1234 price=12.50

  # Read private attributes as the class itself
  classmeta new shop.yaml Shop::Book code=ABC-1234 cost=4 --as Shop::Item`,
		Args: cobra.MinimumNArgs(2),
		RunE: runConstructCommand,
	}

	cmd.Flags().String("constructor", "new", "Constructor to call")
	cmd.Flags().String("as", "", "Package identity of the calling class")

	return cmd
}

func runConstructCommand(cmd *cobra.Command, args []string) error {
	if _, err := loadManifest(cmd, args[0]); err != nil {
		return err
	}

	class, ok := meta.ForPackage(args[1])
	if !ok {
		class, ok = meta.ForKey(args[1])
	}
	if !ok {
		var candidates []string
		for _, c := range meta.Classes() {
			candidates = append(candidates, c.Package(), c.Key())
		}
		fmt.Fprint(cmd.ErrOrStderr(), ui.ClassNotFoundError(args[1], ui.Suggest(args[1], candidates, 3), current.noColor))
		return reported(fmt.Errorf("class not found: %s", args[1]))
	}

	params, err := parseAssignments(args[2:])
	if err != nil {
		return err
	}

	ctor, _ := cmd.Flags().GetString("constructor")
	as, _ := cmd.Flags().GetString("as")
	caller := meta.As(as)

	inst, err := class.Construct(caller, ctor, params)
	if err != nil {
		ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
			Context: "CONSTRUCTION FAILED",
			Problem: fmt.Sprintf("%s %s", class.Package(), ctor),
			Detail:  err.Error(),
			HelpCommands: []string{
				fmt.Sprintf("See attributes: classmeta describe %s %s", args[0], class.Package()),
			},
			NoColor: current.noColor,
		})
		return reported(err)
	}

	result := constructedInstance{
		Class:      inst.Class().Package(),
		ID:         inst.ID().String(),
		Attributes: make(map[string]interface{}),
	}
	var names []string
	for _, attr := range class.Attributes(meta.Private) {
		value, err := attr.Get(caller, inst)
		if err != nil {
			continue
		}
		result.Attributes[attr.Name()] = value
		names = append(names, attr.Name())
	}

	out := cmd.OutOrStdout()
	if current.format != "table" {
		return writeStructured(out, result)
	}

	fmt.Fprintln(out, ui.FormatSuccess("Constructed "+inst.String(), current.noColor))
	fmt.Fprintln(out)
	table := ui.NewTable(out, current.noColor, "ATTRIBUTE", "VALUE")
	for _, name := range names {
		value := result.Attributes[name]
		if value == nil {
			table.AddRow(name, "-")
			continue
		}
		table.AddRow(name, fmt.Sprintf("%v", value))
	}
	table.Render()
	return nil
}

// parseAssignments reads name=value arguments, decoding each value as a
// YAML scalar.
func parseAssignments(args []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected attribute=value", arg)
		}
		var value interface{}
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		params[name] = value
	}
	return params, nil
}
