package sapling

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest describes a dynamic subtree declaratively. Class names a class
// registered with [Registry.Register]. Name renames the built node when
// set. Position is parsed with [ParsePosition] and places the node among
// its parent's children; it is ignored for the top entry.
//
//	class: level
//	name: level-1
//	children:
//	  - class: player
//	  - class: enemy
//	    name: boss
//	    position: start
type Manifest struct {
	Class    string     `yaml:"class" json:"class"`
	Name     string     `yaml:"name,omitempty" json:"name,omitempty"`
	Position string     `yaml:"position,omitempty" json:"position,omitempty"`
	Children []Manifest `yaml:"children,omitempty" json:"children,omitempty"`
}

// ParseManifest decodes a YAML (or JSON) manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("sapling: manifest: %w", err)
	}
	if m.Class == "" {
		return nil, fmt.Errorf("sapling: manifest: missing class")
	}
	return &m, nil
}

// Build creates the tree described by m. Each entry's class is loaded,
// instantiated, renamed and inited, and its children are built the same
// way and attached with AddChild. On failure the partially built tree is
// destroyed and the error is returned.
func (r *Registry) Build(ctx context.Context, m *Manifest) (Node, error) {
	if m == nil {
		return nil, &StructuralConstraintError{Op: "build", Target: "<nil>", Reason: "nil manifest"}
	}
	return r.build(ctx, m)
}

func (r *Registry) build(ctx context.Context, m *Manifest) (Node, error) {
	c, ok := r.Lookup(m.Class)
	if !ok {
		return nil, fmt.Errorf("sapling: build %q: %w", m.Class, ErrUnknownClass)
	}
	if _, err := r.Load(ctx, c); err != nil {
		return nil, err
	}
	n, err := r.New(c)
	if err != nil {
		return nil, err
	}
	nb := n.AsNode()
	if m.Name != "" {
		if err := nb.SetName(m.Name); err != nil {
			return nil, err
		}
	}
	if _, err := nb.Init(ctx); err != nil {
		return nil, err
	}

	for i := range m.Children {
		cm := &m.Children[i]
		if err := r.buildChild(ctx, nb, cm); err != nil {
			_, derr := nb.Destroy(ctx)
			return nil, errors.Join(err, derr)
		}
	}
	return n, nil
}

func (r *Registry) buildChild(ctx context.Context, parent *NodeBase, m *Manifest) error {
	pos, err := ParsePosition(m.Position)
	if err != nil {
		return err
	}
	kid, err := r.build(ctx, m)
	if err != nil {
		return err
	}
	if err := parent.AddChild(kid, "", pos); err != nil {
		_, derr := kid.AsNode().Destroy(ctx)
		return errors.Join(err, derr)
	}
	return nil
}
