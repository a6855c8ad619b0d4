// Package controls loads control catalogs and exports control maps.
//
// A catalog is an ordered list of entries for one framework. The built-in
// NIST CSF 2.0 seed catalog is always available through a Registry; other
// catalogs are loaded from YAML files:
//
//	framework: NIST CSF 2.0
//	controls:
//	  - function: PROTECT
//	    category: PR
//	    control_id: PR.AC-01
//	    title: Identity management
//	    description: Identities are issued, managed, verified, revoked.
//
// A bare YAML list of entries is accepted as well.
package controls

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrUnknownFramework is returned when no catalog has the requested name.
var ErrUnknownFramework = errors.New("unknown framework")

// idPattern is the conventional FUNCTION.CATEGORY-NN identifier shape.
// Other identifiers are accepted with a warning.
var idPattern = regexp.MustCompile(`^[A-Z]{2}\.[A-Z]{2}-\d{2}$`)

// Entry is one control of a catalog.
type Entry struct {
	Framework   string `yaml:"framework" json:"framework"`
	Function    string `yaml:"function" json:"function"`
	Category    string `yaml:"category" json:"category"`
	ControlID   string `yaml:"control_id" json:"control_id"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Validate requires every field.
func (e Entry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Framework, validation.Required),
		validation.Field(&e.Function, validation.Required),
		validation.Field(&e.Category, validation.Required),
		validation.Field(&e.ControlID, validation.Required),
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Description, validation.Required),
	)
}

// ConventionalID reports whether ControlID has the FUNCTION.CATEGORY-NN
// shape.
func (e Entry) ConventionalID() bool {
	return idPattern.MatchString(e.ControlID)
}

// Catalog is a named, ordered set of controls. Source is the file it was
// loaded from, or "builtin:<name>".
type Catalog struct {
	Name      string
	Framework string
	Source    string
	Entries   []Entry
}

// IDs returns the set of control identifiers in c.
func (c *Catalog) IDs() map[string]bool {
	ids := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		ids[e.ControlID] = true
	}
	return ids
}

// Registry maps framework names and aliases to catalogs. A Registry is
// owned by one run; there is no package-level catalog state. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	catalogs map[string]*Catalog
	names    []string
}

// NewRegistry returns a Registry holding the built-in catalogs.
func NewRegistry() *Registry {
	r := &Registry{catalogs: make(map[string]*Catalog)}
	r.Register(NISTCSF20(), "csf", "nist-csf", "csf2")
	return r
}

// Register adds c under its name and aliases, replacing earlier
// registrations with the same keys.
func (r *Registry) Register(c *Catalog, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !slices.Contains(r.names, c.Name) {
		r.names = append(r.names, c.Name)
		slices.Sort(r.names)
	}
	for _, key := range append([]string{c.Name}, aliases...) {
		r.catalogs[normalize(key)] = c
	}
}

// Lookup returns the catalog registered under name, ignoring case.
func (r *Registry) Lookup(name string) (*Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.catalogs[normalize(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownFramework, name, strings.Join(r.names, ", "))
}

// Names lists the canonical catalog names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
