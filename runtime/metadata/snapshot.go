package metadata

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/classmeta/pkg/meta"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// SnapshotOptions controls what Snapshot captures.
type SnapshotOptions struct {
	// Level is the visibility tier members are filtered at.
	Level meta.Visibility
	// Types is the registry listed in the snapshot; types.Global() when nil.
	Types *types.Registry
}

// Snapshot captures every registered class, in registration order.
func Snapshot(opts SnapshotOptions) *Metadata {
	reg := opts.Types
	if reg == nil {
		reg = types.Global()
	}

	m := &Metadata{
		Version:   SchemaVersion,
		Generated: time.Now().UTC(),
		Level:     opts.Level.String(),
		Classes:   make([]ClassMetadata, 0),
		Types:     DescribeTypes(reg),
	}
	for _, c := range meta.Classes() {
		m.Classes = append(m.Classes, DescribeClass(c, opts.Level))
	}
	m.Dependencies = *BuildDependencyGraph(m)
	return m
}

// DescribeClass captures one class at the given visibility tier.
func DescribeClass(c *meta.Class, level meta.Visibility) ClassMetadata {
	cm := ClassMetadata{
		Package:      c.Package(),
		Key:          c.Key(),
		Name:         c.Name(),
		Description:  c.Description(),
		Abstract:     c.Abstract(),
		Built:        c.Built(),
		Trusted:      c.Trusted(),
		Attributes:   make([]AttributeMetadata, 0),
		Constructors: make([]ConstructorMetadata, 0),
		Methods:      make([]MethodMetadata, 0),
		Capabilities: c.Capabilities(),
	}
	for _, p := range c.Parents() {
		cm.Parents = append(cm.Parents, p.Package())
	}

	for _, a := range c.Attributes(level) {
		am := AttributeMetadata{
			Name:          a.Name(),
			Label:         a.Label(),
			Description:   a.Description(),
			Type:          a.Type().Key,
			Visibility:    a.Visibility().String(),
			Authorization: a.Authorization().String(),
			Accessors:     a.Accessors().String(),
			Context:       a.Context().String(),
			Required:      a.Required(),
			Once:          a.Once(),
			Override:      a.Override(),
			DeclaredIn:    a.Class().Package(),
			Methods:       a.AccessorNames(),
		}
		if def := a.Default(); def.IsSet() {
			if def.IsFactory() {
				am.Default = "<factory>"
			} else {
				am.Default = fmt.Sprintf("%v", def.Value())
			}
		}
		cm.Attributes = append(cm.Attributes, am)
	}

	for _, k := range c.Constructors(level) {
		cm.Constructors = append(cm.Constructors, ConstructorMetadata{
			Name:        k.Name(),
			Label:       k.Label(),
			Description: k.Description(),
			Visibility:  k.Visibility().String(),
			Generated:   k.Generated(),
		})
	}

	for _, fn := range c.Methods(level) {
		cm.Methods = append(cm.Methods, MethodMetadata{
			Name:        fn.Name(),
			Label:       fn.Label(),
			Description: fn.Description(),
			Visibility:  fn.Visibility().String(),
			Context:     fn.Context().String(),
			Args:        fn.Args(),
			Returns:     fn.Returns(),
			DeclaredIn:  fn.Class().Package(),
		})
	}
	return cm
}

// DescribeTypes lists every type in reg, sorted by key.
func DescribeTypes(reg *types.Registry) []TypeMetadata {
	keys := reg.Keys()
	result := make([]TypeMetadata, 0, len(keys))
	for _, key := range keys {
		d, ok := reg.Find(key)
		if !ok {
			continue
		}
		result = append(result, TypeMetadata{
			Key:          d.Key,
			Name:         d.Name,
			Description:  d.Description,
			Aliases:      d.Aliases,
			Strategy:     d.Strategy.String(),
			Boolean:      d.Boolean,
			ClassPackage: d.ClassPackage,
			Checks:       len(d.Checks),
		})
	}
	return result
}

// JSON renders the snapshot as indented JSON.
func (m *Metadata) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// YAML renders the snapshot as YAML.
func (m *Metadata) YAML() ([]byte, error) {
	return yaml.Marshal(m)
}

// Decode parses a snapshot previously rendered as "json" or "yaml".
func Decode(data []byte, format string) (*Metadata, error) {
	var m Metadata
	switch format {
	case "json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported metadata format %q", format)
	}
	return &m, nil
}
