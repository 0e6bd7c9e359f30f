package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/classmeta/internal/cli/ui"
	"github.com/conduit-lang/classmeta/internal/manifest"
	"github.com/conduit-lang/classmeta/pkg/meta"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
	"github.com/conduit-lang/classmeta/runtime/metadata"
)

// builtinRegistry returns a fresh type registry holding the built-in
// types under the configured accessor strategy.
func builtinRegistry() (*types.Registry, error) {
	reg := types.NewRegistry()
	if err := types.RegisterBuiltins(reg, current.strategy); err != nil {
		return nil, err
	}
	return reg, nil
}

// loadManifest clears the class registry, applies the manifest at path and
// publishes a snapshot of the result to the metadata registry. Method
// bindings are stubbed since the CLI carries no class code.
func loadManifest(cmd *cobra.Command, path string) (*types.Registry, error) {
	meta.Reset()
	meta.SetLogger(current.logger)
	metadata.Reset()

	reg, err := builtinRegistry()
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(path)
	if err == nil {
		loader := &manifest.Loader{Types: reg, StubUnbound: true, Logger: current.logger}
		_, err = loader.Apply(m)
	}
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ManifestError(path, err, current.noColor))
		return nil, reported(err)
	}

	metadata.RegisterLive(metadata.SnapshotOptions{Level: current.level, Types: reg})
	return reg, nil
}

// writeStructured encodes v as JSON or YAML according to --format.
func writeStructured(w io.Writer, v interface{}) error {
	switch current.format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s", current.format)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
