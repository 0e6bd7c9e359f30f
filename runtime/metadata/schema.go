package metadata

import "time"

// SchemaVersion is the version written into every snapshot.
const SchemaVersion = "1.0"

// Metadata is the top-level container for a snapshot of the class
// registry. It is serializable to JSON and YAML.
type Metadata struct {
	Version      string          `json:"version" yaml:"version"`
	Generated    time.Time       `json:"generated" yaml:"generated"`
	Level        string          `json:"level" yaml:"level"` // Visibility tier the snapshot was taken at
	Classes      []ClassMetadata `json:"classes" yaml:"classes"`
	Types        []TypeMetadata  `json:"types" yaml:"types"`
	Dependencies DependencyGraph `json:"dependencies" yaml:"dependencies"`
}

// ClassMetadata captures the declaration of a single class.
type ClassMetadata struct {
	Package      string                `json:"package" yaml:"package"`
	Key          string                `json:"key" yaml:"key"`
	Name         string                `json:"name" yaml:"name"`
	Description  string                `json:"description,omitempty" yaml:"description,omitempty"`
	Abstract     bool                  `json:"abstract" yaml:"abstract"`
	Built        bool                  `json:"built" yaml:"built"`
	Parents      []string              `json:"parents,omitempty" yaml:"parents,omitempty"`
	Trusted      []string              `json:"trusted,omitempty" yaml:"trusted,omitempty"`
	Attributes   []AttributeMetadata   `json:"attributes" yaml:"attributes"`
	Constructors []ConstructorMetadata `json:"constructors" yaml:"constructors"`
	Methods      []MethodMetadata      `json:"methods" yaml:"methods"`
	Capabilities []string              `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}

// AttributeMetadata captures one attribute, inherited or own.
type AttributeMetadata struct {
	Name          string   `json:"name" yaml:"name"`
	Label         string   `json:"label" yaml:"label"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type          string   `json:"type" yaml:"type"`
	Visibility    string   `json:"visibility" yaml:"visibility"`
	Authorization string   `json:"authorization" yaml:"authorization"`
	Accessors     string   `json:"accessors" yaml:"accessors"`
	Context       string   `json:"context" yaml:"context"`
	Required      bool     `json:"required" yaml:"required"`
	Once          bool     `json:"once" yaml:"once"`
	Default       string   `json:"default,omitempty" yaml:"default,omitempty"` // Literal rendering, or "<factory>"
	Override      bool     `json:"override,omitempty" yaml:"override,omitempty"`
	DeclaredIn    string   `json:"declared_in" yaml:"declared_in"`
	Methods       []string `json:"methods,omitempty" yaml:"methods,omitempty"` // Installed accessor names
}

// ConstructorMetadata captures one constructor.
type ConstructorMetadata struct {
	Name        string `json:"name" yaml:"name"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Visibility  string `json:"visibility" yaml:"visibility"`
	Generated   bool   `json:"generated" yaml:"generated"`
}

// MethodMetadata captures one method, inherited or own.
type MethodMetadata struct {
	Name        string   `json:"name" yaml:"name"`
	Label       string   `json:"label" yaml:"label"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Visibility  string   `json:"visibility" yaml:"visibility"`
	Context     string   `json:"context" yaml:"context"`
	Args        []string `json:"args,omitempty" yaml:"args,omitempty"`
	Returns     string   `json:"returns,omitempty" yaml:"returns,omitempty"`
	DeclaredIn  string   `json:"declared_in" yaml:"declared_in"`
}

// TypeMetadata captures one registered data type.
type TypeMetadata struct {
	Key          string   `json:"key" yaml:"key"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Aliases      []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Strategy     string   `json:"strategy" yaml:"strategy"`
	Boolean      bool     `json:"boolean,omitempty" yaml:"boolean,omitempty"`
	ClassPackage string   `json:"class,omitempty" yaml:"class,omitempty"` // Set for class types
	Checks       int      `json:"checks" yaml:"checks"`
}

// DependencyGraph captures inheritance and attribute references between
// classes.
type DependencyGraph struct {
	Nodes map[string]*DependencyNode `json:"nodes" yaml:"nodes"` // Indexed by package identity
	Edges []DependencyEdge           `json:"edges" yaml:"edges"`
}

// DependencyNode is a class in the dependency graph.
type DependencyNode struct {
	ID   string `json:"id" yaml:"id"`
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
}

// Edge relationship names.
const (
	EdgeInherits   = "inherits"
	EdgeReferences = "references"
)

// DependencyEdge links two classes.
type DependencyEdge struct {
	From         string `json:"from" yaml:"from"`
	To           string `json:"to" yaml:"to"`
	Relationship string `json:"relationship" yaml:"relationship"` // EdgeInherits or EdgeReferences
	Via          string `json:"via,omitempty" yaml:"via,omitempty"`   // Attribute name for references
}
