// Package fixpoint implements the core's fixpoint engine (component C5): a two-phase
// increasing/decreasing iteration over a function's WTO, performing widening-with-threshold on
// cycle heads during the increasing phase and narrowing during the decreasing phase.
package fixpoint

import (
	"strconv"

	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/internal/zlog"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/wto"
)

// Options mirrors the nested `analyzer_opts` block of the layered configuration (§6): the knobs
// that bound the fixpoint's iteration counts and enable threshold-guided widening/narrowing.
type Options struct {
	WideningDelay            int
	MaxWideningIterations    int
	MaxNarrowingIterations   int
	MaxUnrollingIterations   int
	AnalyzeWithThreshold     bool
}

// DefaultOptions returns conservative defaults suitable for tests and for a first CLI run.
func DefaultOptions() Options {
	return Options{
		WideningDelay:          2,
		MaxWideningIterations:  10,
		MaxNarrowingIterations: 10,
		MaxUnrollingIterations: 0,
		AnalyzeWithThreshold:   true,
	}
}

// Transfer is the pluggable node transfer function (C6/C7 in practice): given the pre-state of
// node, compute its post-state.
type Transfer func(node frontend.Node, pre *state.State) *state.State

// EdgeTransfer is the pluggable edge transfer function: given the post-state of pred and the
// target succ, compute the contribution pred makes to succ's pre-state (this is where the
// branch-condition filter of §4.5 is applied).
type EdgeTransfer func(pred, succ frontend.Node, postPred *state.State) *state.State

// ThresholdProvider returns the harvested widening/narrowing threshold for a cycle head, if one
// was discovered (§4.4 "Threshold discovery"). post is that iteration's just-computed post-state
// for head, so a provider can look up the symbolic values its loop guard condition resolved to
// without needing its own copy of the resolver/state machinery.
type ThresholdProvider func(head frontend.Node, post *state.State) (map[numeric.ZVariable]int64, bool)

// Notifier receives the fixpoint engine's iteration notifications (§4.4 "Notifications").
type Notifier interface {
	NotifyEnterCycle(head frontend.Node)
	NotifyEachCycleIteration(head frontend.Node, iter int, increasing bool)
	NotifyExitCycle(head frontend.Node)
}

// NopNotifier implements Notifier with no-ops, for callers that do not need iteration tracing.
type NopNotifier struct{}

func (NopNotifier) NotifyEnterCycle(frontend.Node)                    {}
func (NopNotifier) NotifyEachCycleIteration(frontend.Node, int, bool) {}
func (NopNotifier) NotifyExitCycle(frontend.Node)                     {}

// Engine drives the WTO-based fixpoint for a single function.
type Engine struct {
	cfg       frontend.CFG
	wto       *wto.WTO
	bottom    *state.State
	opts      Options
	transfer  Transfer
	edge      EdgeTransfer
	threshold ThresholdProvider
	notifier  Notifier
	log       zlog.Logger

	pre  map[frontend.Node]*state.State
	post map[frontend.Node]*state.State

	// thresholdRecorded tracks, per head, whether WidenWithThreshold actually fired during the
	// increasing phase for that head -- consulted by the decreasing phase to preserve the
	// narrow/narrow-with-threshold asymmetry (SPEC_FULL §9 Open Question 2).
	thresholdRecorded map[frontend.Node]map[numeric.ZVariable]int64
}

// New constructs an Engine for cfg. bottom is the infeasible state returned for nodes that turn
// out to be unreachable given the computed invariants (e.g. inside a filtered-out branch).
func New(cfg frontend.CFG, bottom *state.State, opts Options, transfer Transfer, edge EdgeTransfer, threshold ThresholdProvider, notifier Notifier) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Engine{
		cfg:               cfg,
		wto:               wto.Build(cfg),
		bottom:            bottom,
		opts:              opts,
		transfer:          transfer,
		edge:              edge,
		threshold:         threshold,
		notifier:          notifier,
		log:               zlog.For("fixpoint"),
		pre:               map[frontend.Node]*state.State{},
		post:              map[frontend.Node]*state.State{},
		thresholdRecorded: map[frontend.Node]map[numeric.ZVariable]int64{},
	}
}

// WTO exposes the computed WTO, e.g. for §4.4's "second WTO traversal" that replays pre/post
// states for checker callbacks (performed by knightfall.Run through
// blockexec.Engine.ReplayCheckers, not here).
func (e *Engine) WTO() *wto.WTO { return e.wto }

// Pre returns the converged pre-state of node (valid only after Run has completed).
func (e *Engine) Pre(node frontend.Node) *state.State { return e.getOr(e.pre, node) }

// Post returns the converged post-state of node.
func (e *Engine) Post(node frontend.Node) *state.State { return e.getOr(e.post, node) }

func (e *Engine) getOr(m map[frontend.Node]*state.State, n frontend.Node) *state.State {
	if s, ok := m[n]; ok {
		return s
	}
	return e.bottom
}

// Run executes the fixpoint over the entire WTO of the function.
func (e *Engine) Run() {
	e.runComponents(e.wto.Components)
}

// runComponents processes a WTO component list in order, threading no extra state between
// siblings (each component independently reads whatever pre-states its predecessors already
// published into e.pre/e.post; the CFG entry node's lack of predecessors is handled directly by
// joinPreds, which seeds it with state.New() rather than the join identity e.bottom).
func (e *Engine) runComponents(components []wto.Component) {
	for _, c := range components {
		switch cc := c.(type) {
		case wto.Vertex:
			e.runVertex(cc.Node)
		case wto.Cycle:
			e.runCycle(cc)
		}
	}
}

func (e *Engine) runVertex(v frontend.Node) {
	pre := e.joinPreds(v, false)
	pre = pre.Normalize()
	e.pre[v] = pre
	e.post[v] = e.transfer(v, pre).Normalize()
}

// joinPreds computes the join of the edge-transferred post-states of v's relevant predecessors.
// When onlyBackEdges is false, this computes the "outside" contribution only (used both for plain
// vertices, where all preds are "outside" by WTO well-formedness, and for a cycle head's initial
// entry state); when onlyBackEdges is true, only loop-carried (inside-the-cycle) predecessors
// contribute.
func (e *Engine) joinPreds(v frontend.Node, onlyBackEdges bool) *state.State {
	if len(v.Predecessors()) == 0 {
		// The CFG entry node (the only node with no predecessors at all) has no outside
		// contribution to join: it starts from the fully-unconstrained state, not from e.bottom
		// (the join identity used below would otherwise leave it permanently infeasible).
		return state.New()
	}
	acc := e.bottom
	for _, p := range v.Predecessors() {
		inside := e.insideCycleOf(p, v)
		if inside != onlyBackEdges {
			continue
		}
		post, ok := e.post[p]
		if !ok {
			continue
		}
		contribution := e.edge(p, v, post)
		acc = acc.Join(contribution, nil)
	}
	return acc
}

// insideCycleOf reports whether pred is inside the cycle headed by head, i.e. head appears in
// pred's WTO nesting list. For a non-head v this is always false for any of its predecessors
// (a WTO cycle's only entry is its head), so joinPreds(v, false) naturally captures all
// predecessors of a plain vertex.
func (e *Engine) insideCycleOf(pred, head frontend.Node) bool {
	for _, h := range e.wto.Nesting(pred) {
		if h == head {
			return true
		}
	}
	return false
}

func (e *Engine) runCycle(c wto.Cycle) {
	head := c.HeadNode
	log := e.log.WithFunction("")
	e.notifier.NotifyEnterCycle(head)

	statePre := e.joinPreds(head, false)

	iter := 1
	increasing := true
	for increasing {
		e.notifier.NotifyEachCycleIteration(head, iter, true)
		e.pre[head] = statePre.Normalize()
		e.post[head] = e.transfer(head, e.pre[head]).Normalize()

		e.runComponents(c.Body)

		front := e.joinPreds(head, false)
		back := e.joinPreds(head, true)
		next := front.JoinAtLoopHead(back).Normalize()

		enlarged := e.enlarge(head, iter, statePre, next)

		converged := iter >= e.opts.MaxWideningIterations || enlarged.Leq(statePre)
		log.Debug().Str("head", nodeLabel(head)).Int("iter", iter).Bool("converged", converged).Msg("increasing iteration")
		if converged {
			statePre = enlarged
			increasing = false
			break
		}
		statePre = enlarged
		iter++
	}

	e.notifier.NotifyExitCycle(head)

	iter = 1
	for {
		e.notifier.NotifyEachCycleIteration(head, iter, false)
		e.pre[head] = statePre.Normalize()
		e.post[head] = e.transfer(head, e.pre[head]).Normalize()

		e.runComponents(c.Body)

		front := e.joinPreds(head, false)
		back := e.joinPreds(head, true)
		next := front.JoinAtLoopHead(back).Normalize()

		refined := e.refine(head, statePre, next)

		stop := iter >= e.opts.MaxNarrowingIterations || statePre.Leq(refined)
		log.Debug().Str("head", nodeLabel(head)).Int("iter", iter).Bool("stop", stop).Msg("decreasing iteration")
		if stop {
			e.pre[head] = refined.Normalize()
			break
		}
		statePre = refined
		iter++
	}
}

// enlarge implements §4.4 step 2e.
func (e *Engine) enlarge(head frontend.Node, iter int, statePre, next *state.State) *state.State {
	if iter < e.opts.WideningDelay+1 {
		return statePre.JoinConsecutiveIter(next, nil)
	}
	if e.opts.AnalyzeWithThreshold && e.threshold != nil {
		if th, ok := e.threshold(head, e.post[head]); ok {
			e.thresholdRecorded[head] = th
			return statePre.WidenWithThreshold(next, nil, th)
		}
	}
	return statePre.Widen(next, nil)
}

// refine implements §4.4 step 3, preserving the narrow/narrow-with-threshold asymmetry: threshold
// narrowing is only used when enlarge actually recorded a threshold for this head.
func (e *Engine) refine(head frontend.Node, statePre, next *state.State) *state.State {
	if th, ok := e.thresholdRecorded[head]; ok {
		return statePre.NarrowWithThreshold(next, th)
	}
	return statePre.Narrow(next)
}

func nodeLabel(n frontend.Node) string {
	if n == nil {
		return "<nil>"
	}
	return "#" + strconv.Itoa(n.ID())
}
