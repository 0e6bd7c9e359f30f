package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/internal/docs"
	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// NewDocsCommand creates the docs command
func NewDocsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs <manifest>",
		Short: "Generate a Markdown class reference",
		Long: `Load a class manifest and write a Markdown reference: a README.md index
of classes and types, and one page per class named after its key.

Members are documented at the --visibility tier.`,
		Example: `  # Write docs/README.md and a page per class
  classmeta docs shop.yaml

  # Custom output directory and title
  classmeta docs shop.yaml --output reference --title "Shop Classes"`,
		Args: cobra.ExactArgs(1),
		RunE: runDocsCommand,
	}

	cmd.Flags().StringP("output", "o", "docs", "Output directory")
	cmd.Flags().String("title", "", "Title of the index page")
	cmd.Flags().String("description", "", "Text written under the index title")

	return cmd
}

func runDocsCommand(cmd *cobra.Command, args []string) error {
	if _, err := loadManifest(cmd, args[0]); err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")

	generator := docs.NewMarkdownGenerator(&docs.Config{
		Title:       title,
		Description: description,
		OutputDir:   output,
	})
	written, err := generator.Generate(metadata.GetMetadata())
	if err != nil {
		return fmt.Errorf("failed to generate documentation: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("Wrote %d files to %s", len(written), output), current.noColor))
	if verbose {
		for _, path := range written {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}
	return nil
}
