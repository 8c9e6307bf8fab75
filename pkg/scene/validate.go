package scene

import (
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// Validate checks the scene without building it: names, policies, modifier
// shapes and step fields. Step targets are resolved when the steps run.
func (sc *Scene) Validate() error {
	if err := sc.Constraints.Geom().Validate(); err != nil {
		return err
	}
	if sc.Root.Virtual {
		return errors.New(errors.ErrCodeInvalidScene, "root node cannot be virtual")
	}
	names := make(map[string]bool)
	if err := validateNode(&sc.Root, names); err != nil {
		return err
	}
	for i, f := range sc.Frames {
		for j := range f.Steps {
			if err := f.Steps[j].validate(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "frame %d step %d", i, j)
			}
		}
	}
	return nil
}

func validateNode(n *Node, names map[string]bool) error {
	if n.Name != "" {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return err
		}
		if names[n.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate node name %q", n.Name)
		}
		names[n.Name] = true
	}
	label := n.Name
	if label == "" {
		label = "<unnamed>"
	}

	if n.Virtual {
		if n.Policy != "" || len(n.Modifiers) > 0 || n.Layer != nil || n.Z != 0 || n.Content != nil {
			return errors.New(errors.ErrCodeInvalidScene, "virtual node %s can only have a name and children", label)
		}
		for i := range n.Children {
			if n.Children[i].Virtual {
				return errors.New(errors.ErrCodeInvalidScene, "virtual node %s has a virtual child", label)
			}
		}
	} else {
		switch n.policy() {
		case PolicyBox:
			if _, err := geom.ParseAlignment(n.Horizontal); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %s", label)
			}
			if _, err := geom.ParseAlignment(n.Vertical); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %s", label)
			}
		case PolicyRow, PolicyColumn:
			if _, err := geom.ParseAlignment(n.Align); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %s", label)
			}
		case PolicyLeaf:
			if len(n.Children) > 0 {
				return errors.New(errors.ErrCodeInvalidScene, "leaf %s cannot have children", label)
			}
		case PolicyEmpty:
		default:
			return errors.New(errors.ErrCodeInvalidScene, "node %s has unknown policy %q", label, n.Policy)
		}
		switch n.Direction {
		case "", "ltr", "rtl":
		default:
			return errors.New(errors.ErrCodeInvalidScene, "node %s has unknown direction %q", label, n.Direction)
		}
		if n.Content != nil && (n.Content.Width < 0 || n.Content.Height < 0) {
			return errors.New(errors.ErrCodeInvalidScene, "node %s has negative content size", label)
		}
		for i := range n.Modifiers {
			if _, err := n.Modifiers[i].element(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %s modifier %d", label, i)
			}
		}
	}
	for i := range n.Children {
		if err := validateNode(&n.Children[i], names); err != nil {
			return err
		}
	}
	return nil
}

// policy resolves the implicit policy of a node.
func (n *Node) policy() string {
	if n.Policy != "" {
		return n.Policy
	}
	if n.Content != nil {
		return PolicyLeaf
	}
	return PolicyBox
}

func (s *Step) validate() error {
	needsNode := true
	switch s.Op {
	case OpContent:
		if s.Content == nil && s.Baseline == nil {
			return errors.New(errors.ErrCodeInvalidScene, "content step needs content or baseline")
		}
	case OpConstraints:
		needsNode = false
		if s.Constraints == nil {
			return errors.New(errors.ErrCodeInvalidScene, "constraints step needs constraints")
		}
		if err := s.Constraints.Geom().Validate(); err != nil {
			return err
		}
	case OpWindow:
		needsNode = false
		if s.Window == nil {
			return errors.New(errors.ErrCodeInvalidScene, "window step needs window")
		}
	case OpInsert:
		if s.Child == nil {
			return errors.New(errors.ErrCodeInvalidScene, "insert step needs child")
		}
		// Names of inserted nodes are checked against the live tree when the
		// step runs.
		if err := validateNode(s.Child, make(map[string]bool)); err != nil {
			return err
		}
	case OpRemove:
		if s.Count <= 0 {
			return errors.New(errors.ErrCodeInvalidScene, "remove step needs a positive count")
		}
	case OpMove:
		if s.Count <= 0 {
			return errors.New(errors.ErrCodeInvalidScene, "move step needs a positive count")
		}
	case OpModifiers:
		for i := range s.Modifiers {
			if _, err := s.Modifiers[i].element(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "modifier %d", i)
			}
		}
	default:
		return errors.New(errors.ErrCodeInvalidScene, "unknown op %q", s.Op)
	}
	if needsNode && s.Node == "" {
		return errors.New(errors.ErrCodeInvalidScene, "%s step needs a node", s.Op)
	}
	return nil
}
