package scene

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/policy"
	"github.com/matzehuels/lattice/pkg/state"
)

// Instance is a built scene: a live tree on a host surface, addressable by
// node name.
type Instance struct {
	scene   *Scene
	surface *host.Surface
	obs     *state.Observer
	logger  *log.Logger

	nodes  map[string]*layout.Node
	leaves map[*layout.Node]*leafState
}

// leafState is the observable content of a leaf node.
type leafState struct {
	size  *state.Value[geom.Size]
	first *state.Value[int]
	last  *state.Value[int]
}

// Build creates the scene's tree, attaches it to a new surface and applies
// the root constraints and window. No pass has run yet.
func Build(sc *Scene, opts host.Options) (*Instance, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	in := &Instance{
		scene:  sc,
		obs:    opts.Observer,
		logger: opts.Logger,
		nodes:  make(map[string]*layout.Node),
		leaves: make(map[*layout.Node]*leafState),
	}
	root, err := in.buildNode(&sc.Root)
	if err != nil {
		return nil, err
	}
	opts.Window = geom.Pt(sc.Window.X, sc.Window.Y)
	in.surface = host.New(root, opts)
	if err := in.surface.SetConstraints(sc.Constraints.Geom()); err != nil {
		in.surface.Close()
		return nil, err
	}
	in.logger.Debug("scene built", "scene", sc.Name, "nodes", len(in.nodes))
	return in, nil
}

// Scene returns the scene the instance was built from.
func (in *Instance) Scene() *Scene { return in.scene }

// Surface returns the host surface owning the tree.
func (in *Instance) Surface() *host.Surface { return in.surface }

// Node returns the live node with the given name.
func (in *Instance) Node(name string) (*layout.Node, bool) {
	n, ok := in.nodes[name]
	return n, ok
}

// Close detaches the tree.
func (in *Instance) Close() { in.surface.Close() }

func (in *Instance) buildNode(spec *Node) (*layout.Node, error) {
	var n *layout.Node
	if spec.Virtual {
		n = layout.NewVirtual()
	} else {
		p, ls, err := in.policy(spec)
		if err != nil {
			return nil, err
		}
		n = layout.New(p)
		if ls != nil {
			in.leaves[n] = ls
		}
	}
	if spec.Name != "" {
		if _, dup := in.nodes[spec.Name]; dup {
			return nil, errors.New(errors.ErrCodeInvalidScene, "duplicate node name %q", spec.Name)
		}
		n.Named(spec.Name)
		in.nodes[spec.Name] = n
	}
	if spec.Lookahead {
		n.SetLookaheadRoot(true)
	}
	if spec.Direction == "rtl" {
		n.SetDirection(layout.RightToLeft)
	}
	if !spec.Virtual {
		mods, err := chain(spec.Modifiers, spec.Z, spec.Layer)
		if err != nil {
			return nil, err
		}
		if len(mods) > 0 {
			n.SetModifier(mods)
		}
	}
	for i := range spec.Children {
		ch, err := in.buildNode(&spec.Children[i])
		if err != nil {
			return nil, err
		}
		n.Append(ch)
	}
	return n, nil
}

// policy creates the measure policy of spec. Leaves also return the state
// their content lives in.
func (in *Instance) policy(spec *Node) (layout.MeasurePolicy, *leafState, error) {
	switch spec.policy() {
	case PolicyBox:
		h, err := geom.ParseAlignment(spec.Horizontal)
		if err != nil {
			return nil, nil, err
		}
		v, err := geom.ParseAlignment(spec.Vertical)
		if err != nil {
			return nil, nil, err
		}
		return policy.Box{Horizontal: h, Vertical: v}, nil, nil
	case PolicyRow, PolicyColumn:
		a, err := geom.ParseAlignment(spec.Align)
		if err != nil {
			return nil, nil, err
		}
		if spec.policy() == PolicyRow {
			return policy.Row{Spacing: spec.Spacing, Align: a, AlignBaseline: spec.AlignBaseline}, nil, nil
		}
		return policy.Column{Spacing: spec.Spacing, Align: a}, nil, nil
	case PolicyEmpty:
		return policy.Empty, nil, nil
	case PolicyLeaf:
		ls := in.newLeafState(spec)
		return policy.Leaf(ls.size.Get, policy.WithBaseline(ls.first.Get), policy.WithLastBaseline(ls.last.Get)), ls, nil
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidScene, "unknown policy %q", spec.Policy)
}

func (in *Instance) newLeafState(spec *Node) *leafState {
	ls := &leafState{
		size:  state.NewValue(in.obs, geom.Size{}),
		first: state.NewValue(in.obs, -1),
		last:  state.NewValue(in.obs, -1),
	}
	if spec.Content != nil {
		ls.size.Set(geom.Size{Width: spec.Content.Width, Height: spec.Content.Height})
	}
	if spec.Baseline != nil {
		ls.first.Set(*spec.Baseline)
	}
	if spec.LastBaseline != nil {
		ls.last.Set(*spec.LastBaseline)
	}
	return ls
}
