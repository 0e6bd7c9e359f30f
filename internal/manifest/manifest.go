// Package manifest declares classes from YAML files.
//
// A manifest lists data types and classes. Classes are declared, their
// members added, and then built, in an order that puts every parent before
// its children. Method bodies cannot be written in YAML; a method names a
// binding that the embedding program supplies.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the root of a manifest file.
type Manifest struct {
	Types   []TypeDecl  `yaml:"types"`
	Classes []ClassDecl `yaml:"classes"`
}

// TypeDecl declares a data type derived from an existing one.
type TypeDecl struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Base        string   `yaml:"base"`    // Type whose checks are inherited
	Pattern     string   `yaml:"pattern"` // Extra regexp the string form must match
	Strategy    string   `yaml:"strategy"`
	Getter      string   `yaml:"getter"` // fmt pattern for custom naming, e.g. "fetch_%s"
	Setter      string   `yaml:"setter"`
	Aliases     []string `yaml:"aliases"`
	Boolean     bool     `yaml:"boolean"`
}

// ClassDecl declares one class.
type ClassDecl struct {
	Package      string            `yaml:"package"`
	Key          string            `yaml:"key"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Abstract     bool              `yaml:"abstract"`
	Parents      []string          `yaml:"parents"`
	Trusted      []string          `yaml:"trusted"`
	Attributes   []AttributeDecl   `yaml:"attributes"`
	Constructors []ConstructorDecl `yaml:"constructors"`
	Methods      []MethodDecl      `yaml:"methods"`
}

// AttributeDecl declares one attribute. Enumerations use their string
// names; empty strings select the zero value.
type AttributeDecl struct {
	Name          string      `yaml:"name"`
	Type          string      `yaml:"type"`
	Label         string      `yaml:"label"`
	Description   string      `yaml:"description"`
	Visibility    string      `yaml:"visibility"`
	Authorization string      `yaml:"authorization"`
	Accessors     string      `yaml:"accessors"`
	Context       string      `yaml:"context"`
	Required      bool        `yaml:"required"`
	Once          bool        `yaml:"once"`
	Default       interface{} `yaml:"default"`
	Override      bool        `yaml:"override"`
}

// ConstructorDecl declares a constructor. Without a binding the
// constructor is generated.
type ConstructorDecl struct {
	Name        string `yaml:"name"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Visibility  string `yaml:"visibility"`
	Binding     string `yaml:"binding"`
}

// MethodDecl declares a method implemented by a named binding.
type MethodDecl struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description"`
	Visibility  string   `yaml:"visibility"`
	Context     string   `yaml:"context"`
	Args        []string `yaml:"args"`
	Returns     string   `yaml:"returns"`
	Binding     string   `yaml:"binding"`
}

// Parse decodes a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data)
}
