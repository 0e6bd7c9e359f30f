package manifest

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/conduit-lang/classmeta/pkg/meta"
	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// Bindings supplies the code behind manifest methods and custom
// constructors, keyed by binding name.
type Bindings struct {
	Methods      map[string]meta.MethodFunc
	Constructors map[string]meta.ConstructorFunc
}

// Loader applies manifests to the class registry.
type Loader struct {
	// Types receives manifest types and resolves attribute types;
	// types.Global() when nil.
	Types    *types.Registry
	Bindings Bindings
	// StubUnbound installs a method that fails when called in place of a
	// missing method binding, instead of rejecting the manifest.
	StubUnbound bool
	Logger      *zap.Logger
}

// Apply registers the manifest's types, then declares and builds its
// classes with parents first. It returns the classes in build order.
func (l *Loader) Apply(m *Manifest) ([]*meta.Class, error) {
	reg := l.Types
	if reg == nil {
		reg = types.Global()
	}
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, decl := range m.Types {
		if err := registerType(reg, decl); err != nil {
			return nil, err
		}
		log.Debug("type registered", zap.String("type", decl.Key))
	}

	ordered, err := buildOrder(m.Classes)
	if err != nil {
		return nil, err
	}

	classes := make([]*meta.Class, 0, len(ordered))
	for _, decl := range ordered {
		c, err := l.declare(reg, decl)
		if err != nil {
			return classes, fmt.Errorf("class %s: %w", decl.Package, err)
		}
		if err := c.Build(); err != nil {
			return classes, fmt.Errorf("class %s: %w", decl.Package, err)
		}
		log.Debug("class loaded",
			zap.String("class", c.Package()),
			zap.Int("attributes", len(decl.Attributes)))
		classes = append(classes, c)
	}
	return classes, nil
}

// buildOrder sorts declarations so that parents declared in the same
// manifest come before their children. Parents not in the manifest must
// already be registered.
func buildOrder(decls []ClassDecl) ([]ClassDecl, error) {
	index := make(map[string]int, len(decls))
	for i, d := range decls {
		if d.Package == "" {
			return nil, fmt.Errorf("class #%d has no package", i+1)
		}
		if _, dup := index[d.Package]; dup {
			return nil, fmt.Errorf("class %s is declared twice", d.Package)
		}
		index[d.Package] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(decls))
	ordered := make([]ClassDecl, 0, len(decls))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("class %s inherits from itself", decls[i].Package)
		}
		state[i] = visiting
		for _, parent := range decls[i].Parents {
			if j, ok := index[parent]; ok {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		ordered = append(ordered, decls[i])
		return nil
	}

	for i := range decls {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func registerType(reg *types.Registry, decl TypeDecl) error {
	def := types.Definition{
		Key:         decl.Key,
		Name:        decl.Name,
		Description: decl.Description,
		Aliases:     decl.Aliases,
		Boolean:     decl.Boolean,
	}
	if def.Name == "" {
		def.Name = decl.Key
	}

	if decl.Base != "" {
		base, err := reg.Lookup(decl.Base)
		if err != nil {
			return fmt.Errorf("type %s: %w", decl.Key, err)
		}
		def.Checks = append(def.Checks, base.Checks...)
		def.Boolean = def.Boolean || base.Boolean
	}

	if decl.Pattern != "" {
		re, err := regexp.Compile(decl.Pattern)
		if err != nil {
			return fmt.Errorf("type %s: invalid pattern: %w", decl.Key, err)
		}
		def.Checks = append(def.Checks, patternCheck(def.Name, re))
	}

	if decl.Strategy != "" {
		s, err := types.ParseStrategy(decl.Strategy)
		if err != nil {
			return fmt.Errorf("type %s: %w", decl.Key, err)
		}
		def.Strategy = s
	}
	if def.Strategy == types.Custom {
		if decl.Getter == "" || decl.Setter == "" {
			return fmt.Errorf("type %s: custom strategy needs getter and setter patterns", decl.Key)
		}
		get, set := decl.Getter, decl.Setter
		def.Naming = func(attr string) (string, string) {
			return fmt.Sprintf(get, attr), fmt.Sprintf(set, attr)
		}
	}

	if _, err := reg.Register(def); err != nil {
		return fmt.Errorf("type %s: %w", decl.Key, err)
	}
	return nil
}

// patternCheck accepts strings matching re.
func patternCheck(expected string, re *regexp.Regexp) types.Check {
	return func(value interface{}, _ types.Slot, _ types.Subject) error {
		if value == nil {
			return nil
		}
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return types.Reject(value, expected)
		}
		return nil
	}
}

func (l *Loader) declare(reg *types.Registry, decl ClassDecl) (*meta.Class, error) {
	c, err := meta.NewClass(meta.ClassSpec{
		Package:     decl.Package,
		Key:         decl.Key,
		Name:        decl.Name,
		Description: decl.Description,
		Parents:     decl.Parents,
		Abstract:    decl.Abstract,
		Trusted:     decl.Trusted,
		Types:       reg,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range decl.Attributes {
		spec, err := attributeSpec(a)
		if err != nil {
			return nil, err
		}
		if _, err := c.AddAttribute(spec); err != nil {
			return nil, err
		}
	}

	for _, k := range decl.Constructors {
		vis, err := meta.ParseVisibility(k.Visibility)
		if err != nil {
			return nil, fmt.Errorf("constructor %s: %w", k.Name, err)
		}
		spec := meta.ConstructorSpec{
			Name:        k.Name,
			Label:       k.Label,
			Description: k.Description,
			Visibility:  vis,
			Create:      k.Binding == "",
		}
		if k.Binding != "" {
			fn, ok := l.Bindings.Constructors[k.Binding]
			if !ok {
				return nil, fmt.Errorf("constructor %s: no binding named %q", k.Name, k.Binding)
			}
			spec.Code = fn
		}
		if _, err := c.AddConstructor(spec); err != nil {
			return nil, err
		}
	}

	for _, m := range decl.Methods {
		vis, err := meta.ParseVisibility(m.Visibility)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		ctx, err := meta.ParseContext(m.Context)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", m.Name, err)
		}
		fn, ok := l.Bindings.Methods[m.Binding]
		if !ok {
			if !l.StubUnbound {
				return nil, fmt.Errorf("method %s: no binding named %q", m.Name, m.Binding)
			}
			fn = unbound(decl.Package, m.Name)
		}
		if _, err := c.AddMethod(meta.MethodSpec{
			Name:        m.Name,
			Label:       m.Label,
			Description: m.Description,
			Visibility:  vis,
			Context:     ctx,
			Args:        m.Args,
			Returns:     m.Returns,
			Code:        fn,
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func attributeSpec(a AttributeDecl) (meta.AttributeSpec, error) {
	spec := meta.AttributeSpec{
		Name:        a.Name,
		Type:        a.Type,
		Label:       a.Label,
		Description: a.Description,
		Required:    a.Required,
		Once:        a.Once,
		Override:    a.Override,
	}

	var err error
	if spec.Visibility, err = meta.ParseVisibility(a.Visibility); err != nil {
		return spec, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if spec.Authorization, err = meta.ParseAuthorization(a.Authorization); err != nil {
		return spec, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if spec.Accessors, err = meta.ParseAccessorMode(a.Accessors); err != nil {
		return spec, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if spec.Context, err = meta.ParseContext(a.Context); err != nil {
		return spec, fmt.Errorf("attribute %s: %w", a.Name, err)
	}
	if a.Default != nil {
		spec.Default = meta.Literal(a.Default)
	}
	return spec, nil
}

func unbound(pkg, name string) meta.MethodFunc {
	return func(meta.Caller, meta.Invocant, ...interface{}) (interface{}, error) {
		return nil, fmt.Errorf("method %s of class %s has no binding", name, pkg)
	}
}
