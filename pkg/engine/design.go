package engine

import (
	"fmt"

	"github.com/chazu/stitchwork/pkg/pattern"
)

// Design is everything a script defined, by name.
type Design struct {
	Panels     map[string]*pattern.Panel
	Components map[string]*pattern.Component

	// Root is the last component defined, or the last panel when the
	// script defined no components. It is nil for an empty script.
	Root pattern.Assemblable

	order []string
}

func newDesign() *Design {
	return &Design{
		Panels:     make(map[string]*pattern.Panel),
		Components: make(map[string]*pattern.Component),
	}
}

// Names returns the defined names in declaration order.
func (d *Design) Names() []string {
	return append([]string(nil), d.order...)
}

// Lookup returns the panel or component with the given name.
func (d *Design) Lookup(name string) (pattern.Assemblable, bool) {
	if p, ok := d.Panels[name]; ok {
		return p, true
	}
	if c, ok := d.Components[name]; ok {
		return c, true
	}
	return nil, false
}

func (d *Design) addPanel(p *pattern.Panel) error {
	if _, ok := d.Lookup(p.Name()); ok {
		return fmt.Errorf("name %q already defined", p.Name())
	}
	d.Panels[p.Name()] = p
	d.order = append(d.order, p.Name())
	if len(d.Components) == 0 {
		d.Root = p
	}
	return nil
}

func (d *Design) addComponent(c *pattern.Component) error {
	if _, ok := d.Lookup(c.Name()); ok {
		return fmt.Errorf("name %q already defined", c.Name())
	}
	d.Components[c.Name()] = c
	d.order = append(d.order, c.Name())
	d.Root = c
	return nil
}
