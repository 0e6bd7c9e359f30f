package meta

import (
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/classmeta/pkg/meta/types"
)

// classRegistry is the process-wide table of classes, looked up by package
// identity and by key. It has no locking; see the package documentation.
type classRegistry struct {
	byPackage map[string]*Class
	byKey     map[string]*Class
	order     []*Class
	sealed    bool
}

var registry = newClassRegistry()

func newClassRegistry() *classRegistry {
	return &classRegistry{
		byPackage: make(map[string]*Class),
		byKey:     make(map[string]*Class),
	}
}

func (r *classRegistry) add(c *Class) {
	r.byPackage[c.pkg] = c
	r.byKey[c.key] = c
	r.order = append(r.order, c)
}

// ForPackage returns the class registered under a package identity.
func ForPackage(pkg string) (*Class, bool) {
	c, ok := registry.byPackage[pkg]
	return c, ok
}

// ForKey returns the class registered under a key.
func ForKey(key string) (*Class, bool) {
	c, ok := registry.byKey[key]
	return c, ok
}

// ClassOf returns the class descriptor for an instance or a class.
func ClassOf(inv Invocant) *Class {
	if inv == nil {
		return nil
	}
	return inv.Class()
}

// Classes returns every registered class in registration order.
func Classes() []*Class {
	result := make([]*Class, len(registry.order))
	copy(result, registry.order)
	return result
}

// Seal rejects any further class registration. Classes already created may
// still be built.
func Seal() {
	registry.sealed = true
	logger.Debug("class registry sealed", zap.Int("classes", len(registry.order)))
}

// Sealed reports whether Seal has been called.
func Sealed() bool {
	return registry.sealed
}

// Reset clears the class registry and restores the default type registry,
// the default error handler and the no-op logger (used for testing).
func Reset() {
	registry = newClassRegistry()
	types.ResetGlobal()
	defaultHandler = passThrough
	logger = zap.NewNop()
}

// defaultKey derives a registry key from a package identity:
// "Shop::Product" and "shop.Product" both become "shop_product".
func defaultKey(pkg string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(pkg) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
