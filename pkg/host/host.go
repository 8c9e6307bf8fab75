// Package host runs layout trees without a screen.
//
// A [Surface] is the [layout.Owner] of one tree. It forwards requests to the
// tree's scheduler, tracks state reads through a [state.Observer], keeps
// recording layers and counts every request per node so tests and tools can
// see exactly what a change cost.
//
//	root := layout.New(policy.Column{})
//	s := host.New(root, host.Options{})
//	defer s.Close()
//	s.SetConstraints(geom.Loose(800, 600))
//	frame, err := s.Frame()
package host

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/state"
)

// Options configure a Surface.
type Options struct {
	Layout layout.Options

	// Window is the position of the root in window coordinates.
	Window geom.Offset

	// Observer tracks the state read by measure blocks. A new one is created
	// when nil.
	Observer *state.Observer

	Logger *log.Logger
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Layout.Logger == nil {
		o.Layout.Logger = o.Logger
	}
	if o.Observer == nil {
		o.Observer = state.NewObserver()
	}
	o.Layout.SetDefaults()
}

// Validate checks the options.
func (o Options) Validate() error {
	return o.Layout.Validate()
}

// Surface is a headless owner of one layout tree.
type Surface struct {
	root   *layout.Node
	sched  *layout.Scheduler
	obs    *state.Observer
	logger *log.Logger
	window geom.Offset

	counts  Counts
	layers  []*Layer
	frames  int
	lastOps []string
}

// New attaches root to a new surface. The first Frame needs constraints set
// with SetConstraints.
func New(root *layout.Node, opts Options) *Surface {
	opts.SetDefaults()
	s := &Surface{
		root:   root,
		sched:  layout.NewScheduler(root, opts.Layout),
		obs:    opts.Observer,
		logger: opts.Logger,
		window: opts.Window,
		counts: newCounts(),
	}
	root.Attach(s)
	return s
}

func (s *Surface) Root() *layout.Node             { return s.root }
func (s *Surface) Scheduler() *layout.Scheduler   { return s.sched }
func (s *Surface) StateObserver() *state.Observer { return s.obs }
func (s *Surface) Frames() int                    { return s.frames }

// Counts returns the requests recorded since the last frame started.
func (s *Surface) Counts() Counts { return s.counts.clone() }

// Layers returns every layer created so far, destroyed ones included.
func (s *Surface) Layers() []*Layer { return s.layers }

// SetWindow moves the root inside the window.
func (s *Surface) SetWindow(o geom.Offset) { s.window = o }

// SetConstraints validates c and makes it the root's constraints.
func (s *Surface) SetConstraints(c geom.Constraints) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.sched.UpdateRootConstraints(c)
	return nil
}

// Close detaches the tree.
func (s *Surface) Close() {
	if s.root.IsAttached() {
		s.root.Detach()
	}
}

// =============================================================================
// Frames
// =============================================================================

// Frame is the outcome of one measure-and-layout pass.
type Frame struct {
	Index       int           `json:"index"`
	RootResized bool          `json:"root_resized"`
	Size        geom.Size     `json:"size"`
	Remeasured  []string      `json:"remeasured"`
	Counts      Counts        `json:"counts"`
	Ops         []string      `json:"ops,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Frame runs one pass and draws the tree. Counts cover the requests made
// since the previous frame, including the ones that caused this pass.
func (s *Surface) Frame() (*Frame, error) {
	before := make(map[*layout.Node]int)
	Walk(s.root, func(n *layout.Node) { before[n] = n.MeasureCount() })

	start := time.Now()
	resized, err := s.sched.MeasureAndLayout()
	elapsed := time.Since(start)

	size, _ := s.root.MeasuredSize()
	f := &Frame{
		Index:       s.frames,
		RootResized: resized,
		Size:        size,
		Counts:      s.counts,
		Duration:    elapsed,
	}
	s.frames++
	s.counts = newCounts()

	Walk(s.root, func(n *layout.Node) {
		if c, ok := before[n]; !ok || n.MeasureCount() > c {
			f.Remeasured = append(f.Remeasured, n.String())
		}
	})
	if err != nil {
		s.logger.Warn("frame incomplete", "frame", f.Index, "err", err)
		return f, err
	}

	cv := NewRecordingCanvas()
	s.root.Draw(cv)
	f.Ops = cv.Ops()
	s.lastOps = f.Ops
	s.logger.Debug("frame", "index", f.Index, "remeasured", len(f.Remeasured), "size", f.Size, "duration", elapsed)
	return f, nil
}

// Walk visits n and its descendants depth first, skipping virtual nodes.
func Walk(n *layout.Node, fn func(*layout.Node)) {
	fn(n)
	for _, ch := range n.Children() {
		Walk(ch, fn)
	}
}

// =============================================================================
// layout.Owner
// =============================================================================

func (s *Surface) OnRequestMeasure(n *layout.Node, lookahead, force bool) {
	s.counts.Measures[n.String()]++
	if lookahead {
		s.sched.RequestLookaheadRemeasure(n, force)
		return
	}
	s.sched.RequestRemeasure(n, force)
}

func (s *Surface) OnRequestRelayout(n *layout.Node, lookahead, force bool) {
	s.counts.Relayouts[n.String()]++
	if lookahead {
		s.sched.RequestLookaheadRelayout(n, force)
		return
	}
	s.sched.RequestRelayout(n, force)
}

func (s *Surface) OnAttach(n *layout.Node) {
	s.counts.Attached++
}

func (s *Surface) OnDetach(n *layout.Node) {
	s.counts.Detached++
	s.sched.OnNodeDetached(n)
	s.obs.ClearIf(func(scope any) bool {
		m, ok := layout.ReadScopeNode(scope)
		return ok && m == n
	})
}

func (s *Surface) OnLayoutChange(n *layout.Node) {
	s.counts.Changes[n.String()]++
}

func (s *Surface) ForceMeasureTheSubtree(n *layout.Node) { s.sched.ForceMeasureTheSubtree(n) }
func (s *Surface) MeasureIteration() int64               { return s.sched.MeasureIteration() }
func (s *Surface) Observer() layout.ReadObserver         { return s.obs }

func (s *Surface) CreateLayer(draw func(layout.Canvas), invalidateParent func()) layout.OwnedLayer {
	l := &Layer{
		ID:               len(s.layers),
		Props:            layout.DefaultLayerProperties(),
		draw:             draw,
		invalidateParent: invalidateParent,
	}
	s.layers = append(s.layers, l)
	return l
}

func (s *Surface) CalculatePositionInWindow(local geom.Offset) geom.Offset {
	return local.Add(s.window)
}

func (s *Surface) CalculateLocalPosition(window geom.Offset) geom.Offset {
	return window.Sub(s.window)
}
