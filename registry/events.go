// Package registry implements the core's analysis/checker registration and event-dispatch
// pipeline (component C8), grounded on original_source/analyzer/include/analyzer/core/analysis/
// events.hpp and analyses.hpp. The C++ source builds its Kind/Name/ID/Desc tables with an
// X-macro (`events.def`, `analyses.def`) included once per enum and once per lookup function;
// Go has no preprocessor, so the same "literal table of records" idea is re-expressed as a single
// Go slice of struct literals, searched linearly by Kind on each lookup (see analysisDescriptors
// and DescribeKind in manager.go).
package registry

import (
	"github.com/knightfall/knightfall/frontend"
	"github.com/knightfall/knightfall/numeric"
	"github.com/knightfall/knightfall/state"
	"github.com/knightfall/knightfall/symbolic"
)

// EventKind enumerates the event variants a resolver (C7) may raise mid-statement for analyses to
// observe, per SPEC_FULL §4.9 and the four event shapes implied by the resolver's linear-numeric
// and pointer translations (§4.3, §4.8).
type EventKind int

const (
	EventInvalid EventKind = iota
	EventLinearNumericalAssign
	EventLinearNumericalAssumption
	EventPointerAssign
	EventPointerOrder
)

// String renders k the way get_event_name renders an EventKind in the teacher's source.
func (k EventKind) String() string {
	switch k {
	case EventLinearNumericalAssign:
		return "linear-numerical-assign"
	case EventLinearNumericalAssumption:
		return "linear-numerical-assumption"
	case EventPointerAssign:
		return "pointer-assign"
	case EventPointerOrder:
		return "pointer-order"
	default:
		return "invalid"
	}
}

// Event is the common interface every dispatched event implements.
type Event interface {
	Kind() EventKind
}

// LinearNumericalAssignEvent is raised by the resolver whenever a binary assignment's right-hand
// side lifts to a linear expression over ZVariables (§4.3 "binary_op_resolver"): `target := expr`.
type LinearNumericalAssignEvent struct {
	Target numeric.ZVariable
	Expr   numeric.ZLinearExpr
	State  *state.State
}

func (LinearNumericalAssignEvent) Kind() EventKind { return EventLinearNumericalAssign }

// LinearNumericalAssumptionEvent is raised by the branch-condition filter (§4.5/§4.6) whenever a
// branch condition lifts to a linear constraint: the constraint assumed true along the taken edge.
type LinearNumericalAssumptionEvent struct {
	Constraint numeric.ZLinearConstraint
	State      *state.State
}

func (LinearNumericalAssumptionEvent) Kind() EventKind { return EventLinearNumericalAssumption }

// PointerAssignEvent is raised by the §4.8 pointer-arithmetic extension whenever a pointer-valued
// symbolic expression is (re)assigned, e.g. `p = p + i`.
type PointerAssignEvent struct {
	Target symbolic.SymExpr
	State  *state.State
}

func (PointerAssignEvent) Kind() EventKind { return EventPointerAssign }

// PointerOrderEvent is raised when a pointer ordering comparison (`<`, `<=`, `>`, `>=`) is
// resolved between two pointers that are not known to share a region, per §4.8: the core can only
// conjure a fresh boolean for the comparison's truth value, but still announces the attempt so a
// checker (e.g. one flagging cross-object pointer comparisons) can observe it.
type PointerOrderEvent struct {
	LHS, RHS symbolic.SymExpr
	Op       frontend.BinaryOpcode
	State    *state.State
}

func (PointerOrderEvent) Kind() EventKind { return EventPointerOrder }

// Handler processes a single dispatched event.
type Handler func(Event)

// Dispatcher fans a raised event out to every handler subscribed to its kind, in registration
// order -- a synchronous, single-threaded analogue of the teacher's event-broadcast mechanism
// (§5: "event dispatch is synchronous and registration-ordered within a single TU").
type Dispatcher struct {
	handlers map[EventKind][]Handler
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[EventKind][]Handler{}}
}

// Subscribe registers fn to be invoked for every future event of kind k.
func (d *Dispatcher) Subscribe(k EventKind, fn Handler) {
	d.handlers[k] = append(d.handlers[k], fn)
}

// Dispatch invokes every handler subscribed to ev's kind, in subscription order.
func (d *Dispatcher) Dispatch(ev Event) {
	for _, h := range d.handlers[ev.Kind()] {
		h(ev)
	}
}
