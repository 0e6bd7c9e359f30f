package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// Config controls documentation output.
type Config struct {
	// Title heads the index page
	Title string

	// Description is written under the title
	Description string

	// OutputDir receives README.md and one page per class
	OutputDir string
}

// MarkdownGenerator generates a Markdown class reference from a metadata
// snapshot.
type MarkdownGenerator struct {
	config *Config
}

// NewMarkdownGenerator creates a new Markdown generator
func NewMarkdownGenerator(config *Config) *MarkdownGenerator {
	return &MarkdownGenerator{
		config: config,
	}
}

// Generate writes the index and a page per class. It returns the paths
// written, index first.
func (g *MarkdownGenerator) Generate(m *metadata.Metadata) ([]string, error) {
	if err := os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var written []string
	path := filepath.Join(g.config.OutputDir, "README.md")
	if err := os.WriteFile(path, []byte(g.Index(m)), 0644); err != nil {
		return nil, err
	}
	written = append(written, path)

	for _, class := range m.Classes {
		path := filepath.Join(g.config.OutputDir, PageName(class))
		if err := os.WriteFile(path, []byte(g.ClassPage(class, m)), 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// PageName returns the file name of a class page.
func PageName(class metadata.ClassMetadata) string {
	return class.Key + ".md"
}

// Index renders the README page: class list and type table.
func (g *MarkdownGenerator) Index(m *metadata.Metadata) string {
	var buf strings.Builder

	title := g.config.Title
	if title == "" {
		title = "Class Reference"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if g.config.Description != "" {
		buf.WriteString(fmt.Sprintf("%s\n\n", g.config.Description))
	}
	buf.WriteString(fmt.Sprintf("**Visibility:** %s\n\n", m.Level))

	buf.WriteString("## Classes\n\n")
	if len(m.Classes) == 0 {
		buf.WriteString("No classes defined.\n\n")
	}
	for _, class := range m.Classes {
		line := fmt.Sprintf("- [%s](%s)", class.Package, PageName(class))
		if class.Abstract {
			line += " *(abstract)*"
		}
		if class.Description != "" {
			line += " - " + class.Description
		}
		buf.WriteString(line + "\n")
	}
	buf.WriteString("\n")

	buf.WriteString("## Types\n\n")
	buf.WriteString("| Key | Name | Aliases | Accessors |\n")
	buf.WriteString("|-----|------|---------|-----------|\n")
	for _, t := range m.Types {
		aliases := "-"
		if len(t.Aliases) > 0 {
			aliases = "`" + strings.Join(t.Aliases, "`, `") + "`"
		}
		buf.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s |\n", t.Key, t.Name, aliases, t.Strategy))
	}
	buf.WriteString("\n")
	return buf.String()
}

// ClassPage renders the page for one class. Parents and attribute types
// that are classes in m link to their pages.
func (g *MarkdownGenerator) ClassPage(class metadata.ClassMetadata, m *metadata.Metadata) string {
	var buf strings.Builder

	pages := make(map[string]string, len(m.Classes))
	for _, c := range m.Classes {
		pages[c.Package] = PageName(c)
	}
	classTypes := make(map[string]string)
	for _, t := range m.Types {
		if t.ClassPackage != "" {
			classTypes[t.Key] = t.ClassPackage
		}
	}
	link := func(pkg string) string {
		if page, ok := pages[pkg]; ok {
			return fmt.Sprintf("[%s](%s)", pkg, page)
		}
		return "`" + pkg + "`"
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", class.Package))
	if class.Description != "" {
		buf.WriteString(fmt.Sprintf("> %s\n\n", class.Description))
	}

	buf.WriteString(fmt.Sprintf("- **Key:** `%s`\n", class.Key))
	if class.Abstract {
		buf.WriteString("- **Abstract:** yes\n")
	}
	if len(class.Parents) > 0 {
		links := make([]string, len(class.Parents))
		for i, p := range class.Parents {
			links[i] = link(p)
		}
		buf.WriteString(fmt.Sprintf("- **Parents:** %s\n", strings.Join(links, ", ")))
	}
	if len(class.Trusted) > 0 {
		buf.WriteString(fmt.Sprintf("- **Trusted:** %s\n", strings.Join(class.Trusted, ", ")))
	}
	buf.WriteString("\n")

	buf.WriteString("## Attributes\n\n")
	if len(class.Attributes) == 0 {
		buf.WriteString("No attributes defined.\n\n")
	} else {
		buf.WriteString("| Name | Type | Visibility | Access | Context | Required | Default | Accessors | Description |\n")
		buf.WriteString("|------|------|------------|--------|---------|----------|---------|-----------|-------------|\n")
		for _, a := range class.Attributes {
			typ := "`" + a.Type + "`"
			if pkg, ok := classTypes[a.Type]; ok {
				typ = link(pkg)
			}
			required := "No"
			if a.Required {
				required = "Yes"
			}
			def := "-"
			if a.Default != "" {
				def = "`" + a.Default + "`"
			}
			accessors := "-"
			if len(a.Methods) > 0 {
				accessors = "`" + strings.Join(a.Methods, "`, `") + "`"
			}
			description := a.Description
			if a.DeclaredIn != class.Package {
				description = strings.TrimSpace(description + " (from " + a.DeclaredIn + ")")
			}
			if description == "" {
				description = "-"
			}
			buf.WriteString(fmt.Sprintf("| `%s` | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				a.Name, typ, a.Visibility, a.Authorization, a.Context, required, def, accessors, description))
		}
		buf.WriteString("\n")
	}

	if len(class.Constructors) > 0 {
		buf.WriteString("## Constructors\n\n")
		for _, k := range class.Constructors {
			kind := "custom"
			if k.Generated {
				kind = "generated"
			}
			buf.WriteString(fmt.Sprintf("- `%s` (%s, %s)", k.Name, k.Visibility, kind))
			if k.Description != "" {
				buf.WriteString(" - " + k.Description)
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	if len(class.Methods) > 0 {
		buf.WriteString("## Methods\n\n")
		for _, fn := range class.Methods {
			signature := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(fn.Args, ", "))
			if fn.Returns != "" {
				signature += " " + fn.Returns
			}
			buf.WriteString(fmt.Sprintf("### %s\n\n", fn.Name))
			buf.WriteString(fmt.Sprintf("```\n%s\n```\n\n", signature))
			buf.WriteString(fmt.Sprintf("- **Visibility:** %s\n", fn.Visibility))
			buf.WriteString(fmt.Sprintf("- **Context:** %s\n", fn.Context))
			if fn.DeclaredIn != class.Package {
				buf.WriteString(fmt.Sprintf("- **Declared in:** %s\n", link(fn.DeclaredIn)))
			}
			if fn.Description != "" {
				buf.WriteString(fmt.Sprintf("\n%s\n", fn.Description))
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
