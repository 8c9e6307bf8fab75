package scene

import (
	"context"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/layout"
)

// Apply runs steps in order as one batch of state changes. It stops at the
// first failing step. Tree edits the engine rejects are returned as errors.
func (in *Instance) Apply(steps []Step) (err error) {
	in.obs.Batch(func() {
		for i := range steps {
			if err = in.applyStep(&steps[i]); err != nil {
				err = wrap(err, "step %d (%s)", i, steps[i].Op)
				return
			}
		}
	})
	return err
}

func (in *Instance) applyStep(s *Step) (err error) {
	if err := s.validate(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
		}
	}()

	switch s.Op {
	case OpConstraints:
		return in.surface.SetConstraints(s.Constraints.Geom())
	case OpWindow:
		in.surface.SetWindow(geom.Pt(s.Window.X, s.Window.Y))
		return nil
	}

	n, ok := in.nodes[s.Node]
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "no node named %q", s.Node)
	}
	switch s.Op {
	case OpContent:
		ls, ok := in.leaves[n]
		if !ok {
			return errors.New(errors.ErrCodeInvalidScene, "node %q is not a leaf", s.Node)
		}
		if s.Content != nil {
			ls.size.Set(geom.Size{Width: s.Content.Width, Height: s.Content.Height})
		}
		if s.Baseline != nil {
			ls.first.Set(*s.Baseline)
		}
	case OpInsert:
		if s.Index < 0 || s.Index > len(n.FoldedChildren()) {
			return errors.New(errors.ErrCodeInvalidTree, "insert index %d out of range [0, %d] on %s", s.Index, len(n.FoldedChildren()), s.Node)
		}
		ch, err := in.buildNode(s.Child)
		if err != nil {
			return err
		}
		n.InsertAt(s.Index, ch)
	case OpRemove:
		folded := n.FoldedChildren()
		if s.Index >= 0 && s.Index+s.Count <= len(folded) {
			for _, ch := range folded[s.Index : s.Index+s.Count] {
				host.Walk(ch, in.forget)
			}
		}
		n.RemoveAt(s.Index, s.Count)
	case OpMove:
		n.Move(s.From, s.To, s.Count)
	case OpModifiers:
		if n.IsVirtual() {
			return errors.New(errors.ErrCodeInvalidScene, "virtual node %q has no modifiers", s.Node)
		}
		mods, err := chain(s.Modifiers, 0, nil)
		if err != nil {
			return err
		}
		n.SetModifier(mods)
	}
	return nil
}

// forget drops a removed node from the name and leaf tables.
func (in *Instance) forget(n *layout.Node) {
	if name := n.Name(); name != "" && in.nodes[name] == n {
		delete(in.nodes, name)
	}
	delete(in.leaves, n)
}

// Run draws the first frame and then one frame per scripted frame. The
// report ends with a snapshot of the final tree.
func (in *Instance) Run(ctx context.Context) (*Report, error) {
	rep := &Report{Scene: in.scene.Name}
	first, err := in.surface.Frame()
	if err != nil {
		return nil, err
	}
	rep.Frames = append(rep.Frames, FrameReport{Label: "initial", Frame: *first})

	for i, fr := range in.scene.Frames {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "scene %s frame %d", in.scene.Name, i+1)
		}
		if err := in.Apply(fr.Steps); err != nil {
			return nil, wrap(err, "frame %d", i+1)
		}
		f, err := in.surface.Frame()
		if err != nil {
			return nil, wrap(err, "frame %d", i+1)
		}
		in.logger.Debug("frame", "scene", in.scene.Name, "index", f.Index, "remeasured", len(f.Remeasured))
		rep.Frames = append(rep.Frames, FrameReport{Label: fr.Label, Frame: *f})
	}
	rep.Snapshot = in.surface.Snapshot()
	return rep, nil
}

// wrap adds context to err and keeps its code.
func wrap(err error, format string, args ...any) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, format, args...)
}
