package layout

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/observability"
)

// DefaultMaxIterations bounds the nodes one pass may process before it gives
// up with ErrCodeNotConverged.
const DefaultMaxIterations = 100_000

// Options configure a Scheduler.
type Options struct {
	// MaxIterations is the number of nodes a single pass may process.
	MaxIterations int `json:"max_iterations,omitempty" toml:"max_iterations"`

	// ConsistencyChecks verifies the tree after every pass and panics with a
	// tree dump when a pending node could never be reached.
	ConsistencyChecks bool `json:"consistency_checks,omitempty" toml:"consistency_checks"`

	// ExtraAssertions makes the dirty set verify node depths.
	ExtraAssertions bool `json:"extra_assertions,omitempty" toml:"extra_assertions"`

	Logger *log.Logger `json:"-" toml:"-"`
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.MaxIterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_iterations must not be negative, got %d", o.MaxIterations)
	}
	return nil
}

type requestKind int

const (
	requestRemeasure requestKind = iota
	requestLookaheadRemeasure
	requestLookaheadRelayout
)

type postponedRequest struct {
	node  *Node
	kind  requestKind
	force bool
}

// Scheduler decides which nodes of one tree are measured and laid out, and
// runs those passes. It implements the scheduling half of an [Owner]; hosts
// forward OnRequestMeasure, OnRequestRelayout, OnDetach, ForceMeasureTheSubtree
// and MeasureIteration to it.
type Scheduler struct {
	root   *Node
	opts   Options
	logger *log.Logger

	dirty      *DepthSortedSet
	postponed  []postponedRequest
	dispatcher *OnPositionedDispatcher

	draining  bool
	iteration int64

	rootConstraints    geom.Constraints
	hasRootConstraints bool
}

// NewScheduler returns a scheduler for the tree rooted at root. The root is
// attached separately, with an owner that forwards to the scheduler.
func NewScheduler(root *Node, opts Options) *Scheduler {
	opts.SetDefaults()
	return &Scheduler{
		root:       root,
		opts:       opts,
		logger:     opts.Logger,
		dirty:      NewDepthSortedSet(opts.ExtraAssertions),
		dispatcher: NewOnPositionedDispatcher(),
	}
}

// Root returns the root of the scheduled tree.
func (s *Scheduler) Root() *Node { return s.root }

// MeasureIteration counts nodes processed so far.
func (s *Scheduler) MeasureIteration() int64 { return s.iteration }

// HasPendingWork reports whether a pass would do anything.
func (s *Scheduler) HasPendingWork() bool {
	return !s.dirty.IsEmpty() || len(s.postponed) > 0
}

// DirtyNodes returns the nodes waiting for the next pass, shallowest first.
func (s *Scheduler) DirtyNodes() []*Node { return s.dirty.Nodes() }

// UpdateRootConstraints sets the constraints the root is measured with.
func (s *Scheduler) UpdateRootConstraints(c geom.Constraints) {
	if s.draining {
		panic(errors.New(errors.ErrCodeReentrantPass, "root constraints changed during a pass"))
	}
	if s.hasRootConstraints && s.rootConstraints == c {
		return
	}
	s.rootConstraints = c
	s.hasRootConstraints = true
	s.root.main.measurePending = true
	if s.root.lookahead != nil {
		s.root.lookahead.measurePending = true
	}
	if s.root.IsAttached() {
		s.dirty.Add(s.root)
	}
}

// RootConstraints returns the constraints the root is measured with.
func (s *Scheduler) RootConstraints() (geom.Constraints, bool) {
	return s.rootConstraints, s.hasRootConstraints
}

// =============================================================================
// Requests
// =============================================================================

// RequestRemeasure marks n as needing a committed measure. It reports whether
// the caller should schedule a pass.
func (s *Scheduler) RequestRemeasure(n *Node, force bool) bool {
	switch n.state {
	case Measuring, LookaheadMeasuring:
		return false
	case LayingOut, LookaheadLayingOut:
		s.postpone(n, requestRemeasure, force)
		return false
	}
	if n.main.measurePending && !force {
		return false
	}
	if s.draining && n.main.measuredOnce && n.main.lastMeasureIteration == s.iteration {
		s.postpone(n, requestRemeasure, force)
		return false
	}
	n.main.measurePending = true
	if n.isPlaced || s.canAffectParent(n) {
		if p := n.Parent(); p == nil || !p.main.measurePending {
			s.dirty.Add(n)
		}
	}
	return !s.draining
}

// RequestLookaheadRemeasure marks both passes of n as needing a measure.
func (s *Scheduler) RequestLookaheadRemeasure(n *Node, force bool) bool {
	if n.lookahead == nil {
		panic(errors.New(errors.ErrCodeIllegalState, "lookahead remeasure of %s outside a lookahead scope", n))
	}
	switch n.state {
	case LookaheadMeasuring:
		return false
	case Measuring, LayingOut, LookaheadLayingOut:
		s.postpone(n, requestLookaheadRemeasure, force)
		return false
	}
	if n.lookahead.measurePending && !force {
		return false
	}
	n.lookahead.measurePending = true
	n.main.measurePending = true
	if n.lookahead.isPlaced || s.canAffectParentInLookahead(n) {
		if p := n.Parent(); p == nil || !p.LookaheadMeasurePending() {
			s.dirty.Add(n)
		}
	}
	return !s.draining
}

// RequestRelayout marks n as needing to place its children again.
func (s *Scheduler) RequestRelayout(n *Node, force bool) bool {
	if n.state != Idle {
		return false
	}
	if !force && (n.main.measurePending || n.main.layoutPending) {
		return false
	}
	n.main.layoutPending = true
	if n.isPlaced {
		if p := n.Parent(); p == nil || (!p.main.layoutPending && !p.main.measurePending) {
			s.dirty.Add(n)
		}
	}
	return !s.draining
}

// RequestLookaheadRelayout marks both passes of n as needing a layout.
func (s *Scheduler) RequestLookaheadRelayout(n *Node, force bool) bool {
	if n.lookahead == nil {
		panic(errors.New(errors.ErrCodeIllegalState, "lookahead relayout of %s outside a lookahead scope", n))
	}
	switch n.state {
	case LookaheadMeasuring, LookaheadLayingOut:
		return false
	case Measuring, LayingOut:
		s.postpone(n, requestLookaheadRelayout, force)
		return false
	}
	if !force && (n.lookahead.measurePending || n.lookahead.layoutPending) {
		return false
	}
	n.lookahead.layoutPending = true
	n.main.layoutPending = true
	if n.lookahead.isPlaced {
		if p := n.Parent(); p == nil || (!p.LookaheadMeasurePending() && !p.LookaheadLayoutPending()) {
			s.dirty.Add(n)
		}
	}
	return !s.draining
}

// OnNodeDetached drops n from the pending work. Must run before the node's
// depth is reset.
func (s *Scheduler) OnNodeDetached(n *Node) {
	s.dirty.Remove(n)
	s.dispatcher.remove(n)
}

func (s *Scheduler) postpone(n *Node, kind requestKind, force bool) {
	s.postponed = append(s.postponed, postponedRequest{node: n, kind: kind, force: force})
	layoutHooks().OnRequestPostponed(n.String(), n.state.String())
}

func (s *Scheduler) drainPostponed() {
	if len(s.postponed) == 0 {
		return
	}
	reqs := s.postponed
	s.postponed = nil
	s.logger.Debug("replaying postponed requests", "count", len(reqs), "iteration", s.iteration)
	for _, r := range reqs {
		if !r.node.IsAttached() {
			continue
		}
		switch r.kind {
		case requestRemeasure:
			s.RequestRemeasure(r.node, r.force)
		case requestLookaheadRemeasure:
			s.RequestLookaheadRemeasure(r.node, r.force)
		case requestLookaheadRelayout:
			s.RequestLookaheadRelayout(r.node, r.force)
		}
	}
}

func (s *Scheduler) isPostponed(n *Node) bool {
	for _, r := range s.postponed {
		if r.node == n {
			return true
		}
	}
	return false
}

// canAffectParent reports whether a pending measure of n can change its
// parent even though n is not placed.
func (s *Scheduler) canAffectParent(n *Node) bool {
	return n.main.measurePending &&
		(n.measuredByParent == InMeasureBlock || n.main.lines.required())
}

func (s *Scheduler) canAffectParentInLookahead(n *Node) bool {
	return n.LookaheadMeasurePending() &&
		(n.measuredByParentInLookahead == InMeasureBlock || n.lookahead.lines.required())
}

// =============================================================================
// Passes
// =============================================================================

// MeasureAndLayout drains the pending nodes shallowest first, then dispatches
// position callbacks. It reports whether the root changed size.
//
// It panics if the root is detached or unplaced, or when called from inside
// a pass. It returns an ErrCodeNotConverged error when the pass processed
// MaxIterations nodes without draining; the remaining nodes stay pending.
func (s *Scheduler) MeasureAndLayout() (rootResized bool, err error) {
	root := s.root
	if !root.IsAttached() {
		panic(errors.New(errors.ErrCodeNotAttached, "root %s is not attached", root))
	}
	if !root.isPlaced {
		panic(errors.New(errors.ErrCodeIllegalState, "root %s is not placed", root))
	}
	if s.draining {
		panic(errors.New(errors.ErrCodeReentrantPass, "measure and layout called during a pass"))
	}
	if !s.hasRootConstraints {
		return false, nil
	}

	start := time.Now()
	startIteration := s.iteration
	layoutHooks().OnPassStart(s.dirty.Len())
	s.logger.Debug("pass started", "dirty", s.dirty.Len(), "iteration", s.iteration)

	s.draining = true
	func() {
		defer func() { s.draining = false }()
		for s.HasPendingWork() {
			if int(s.iteration-startIteration) >= s.opts.MaxIterations {
				err = errors.New(errors.ErrCodeNotConverged,
					"layout did not converge after %d nodes, %d still pending", s.opts.MaxIterations, s.dirty.Len())
				return
			}
			n, ok := s.dirty.Pop()
			if !ok {
				s.drainPostponed()
				continue
			}
			if s.remeasureAndRelayoutIfNeeded(n) && n == root {
				rootResized = true
			}
		}
	}()

	s.dispatcher.dispatch()
	if s.opts.ConsistencyChecks {
		s.assertConsistent()
	}

	processed := int(s.iteration - startIteration)
	elapsed := time.Since(start)
	if err != nil {
		s.logger.Warn("pass did not converge", "processed", processed, "pending", s.dirty.Len())
	} else {
		s.logger.Debug("pass complete", "processed", processed, "iteration", s.iteration,
			"root_resized", rootResized, "duration", elapsed)
	}
	layoutHooks().OnPassComplete(processed, rootResized, elapsed, err)
	return rootResized, err
}

// MeasureAndLayoutNode measures n with c and lays it out, outside of the
// regular depth order. n must not be the root.
func (s *Scheduler) MeasureAndLayoutNode(n *Node, c geom.Constraints) {
	if n == s.root {
		panic(errors.New(errors.ErrCodeIllegalState, "MeasureAndLayoutNode called with the root"))
	}
	if s.draining {
		panic(errors.New(errors.ErrCodeReentrantPass, "measure and layout of %s called during a pass", n))
	}
	s.draining = true
	func() {
		defer func() { s.draining = false }()
		s.dirty.Remove(n)
		if n.lookahead != nil {
			s.doLookaheadRemeasure(n, &c)
		}
		s.doRemeasure(n, &c)
		if n.LookaheadLayoutPending() && n.lookahead.isPlaced && n.lookahead.placedOnce {
			n.lookaheadReplace()
		}
		if n.main.layoutPending && n.isPlaced {
			n.replace()
			s.dispatcher.onNodePositioned(n)
		}
	}()
	s.drainPostponed()
	if s.opts.ConsistencyChecks {
		s.assertConsistent()
	}
}

// ForceMeasureTheSubtree measures every pending child of n, recursively, that
// is still in the dirty set. Called when n was not measured again itself but
// a parent relies on its subtree being measured.
func (s *Scheduler) ForceMeasureTheSubtree(n *Node) {
	if s.dirty.IsEmpty() || !s.draining {
		return
	}
	if n.main.measurePending {
		panic(errors.New(errors.ErrCodeIllegalState, "force measuring the subtree of unmeasured %s", n))
	}
	for _, ch := range n.Children() {
		if ch.main.measurePending && s.dirty.Remove(ch) {
			s.remeasureAndRelayoutIfNeeded(ch)
		}
		if !ch.main.measurePending {
			s.ForceMeasureTheSubtree(ch)
		}
	}
	if n.main.measurePending && s.dirty.Remove(n) {
		s.remeasureAndRelayoutIfNeeded(n)
	}
}

func (s *Scheduler) remeasureAndRelayoutIfNeeded(n *Node) bool {
	sizeChanged := false
	la := n.lookahead
	if n.isPlaced || s.canAffectParent(n) ||
		(la != nil && la.isPlaced) || (la != nil && s.canAffectParentInLookahead(n)) ||
		n.main.lines.required() {
		var cons *geom.Constraints
		if n == s.root {
			cons = &s.rootConstraints
		}
		lookaheadSizeChanged := false
		if n.LookaheadMeasurePending() {
			lookaheadSizeChanged = s.doLookaheadRemeasure(n, cons)
		}
		if n.main.measurePending {
			sizeChanged = s.doRemeasure(n, cons)
		}
		if (lookaheadSizeChanged || n.LookaheadLayoutPending()) && la.isPlaced && la.placedOnce {
			n.lookaheadReplace()
		}
		if n.main.layoutPending && n.isPlaced {
			if n == s.root {
				n.placeRoot()
			} else {
				n.replace()
			}
			s.dispatcher.onNodePositioned(n)
			if s.opts.ConsistencyChecks {
				s.assertConsistent()
			}
		}
	}
	s.iteration++
	s.drainPostponed()
	return sizeChanged
}

// doRemeasure measures n and forwards a size change to the parent step that
// depends on it.
func (s *Scheduler) doRemeasure(n *Node, cons *geom.Constraints) bool {
	var changed bool
	if cons != nil {
		if n.intrinsicsUsage == NotUsed {
			n.clearSubtreeIntrinsicsUsage()
		}
		changed = n.main.remeasure(*cons)
	} else {
		changed = n.remeasure(PassMain)
	}
	parent := n.Parent()
	if !changed || parent == nil {
		return changed
	}
	switch n.measuredByParent {
	case InMeasureBlock:
		s.RequestRemeasure(parent, false)
	case InLayoutBlock:
		s.RequestRelayout(parent, false)
	}
	return changed
}

func (s *Scheduler) doLookaheadRemeasure(n *Node, cons *geom.Constraints) bool {
	var changed bool
	if cons != nil {
		changed = n.lookahead.remeasure(*cons)
	} else {
		changed = n.remeasure(PassLookahead)
	}
	parent := n.Parent()
	if !changed || parent == nil {
		return changed
	}
	switch {
	case parent.lookahead == nil:
		s.RequestRemeasure(parent, false)
	case n.measuredByParentInLookahead == InMeasureBlock:
		s.RequestLookaheadRemeasure(parent, false)
	case n.measuredByParentInLookahead == InLayoutBlock:
		s.RequestLookaheadRelayout(parent, false)
	}
	return changed
}

func layoutHooks() observability.LayoutHooks { return observability.Layout() }
