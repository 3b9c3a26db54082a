package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/knightfall/knightfall/numeric"
)

func TestEventKind_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "linear-numerical-assign", EventLinearNumericalAssign.String())
	require.Equal(t, "linear-numerical-assumption", EventLinearNumericalAssumption.String())
	require.Equal(t, "pointer-assign", EventPointerAssign.String())
	require.Equal(t, "pointer-order", EventPointerOrder.String())
	require.Equal(t, "invalid", EventInvalid.String())
	require.Equal(t, "invalid", EventKind(99).String())
}

func TestDispatcher_SubscribeAndDispatch_InvokesOnlyMatchingKindInOrder(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	var order []string
	d.Subscribe(EventPointerAssign, func(Event) { order = append(order, "first") })
	d.Subscribe(EventPointerAssign, func(Event) { order = append(order, "second") })
	d.Subscribe(EventPointerOrder, func(Event) { order = append(order, "unrelated") })

	d.Dispatch(PointerAssignEvent{})

	require.Equal(t, []string{"first", "second"}, order)
}

func TestDispatcher_DispatchWithNoSubscribersIsANoOp(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	require.NotPanics(t, func() { d.Dispatch(LinearNumericalAssignEvent{}) })
}

func TestDispatcher_EachEventCarriesItsOwnKind(t *testing.T) {
	t.Parallel()

	require.Equal(t, EventLinearNumericalAssign, LinearNumericalAssignEvent{}.Kind())
	require.Equal(t, EventLinearNumericalAssumption, LinearNumericalAssumptionEvent{}.Kind())
	require.Equal(t, EventPointerAssign, PointerAssignEvent{}.Kind())
	require.Equal(t, EventPointerOrder, PointerOrderEvent{}.Kind())
}

func TestDispatcher_HandlerReceivesTheExactEventPayload(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	var got LinearNumericalAssignEvent
	d.Subscribe(EventLinearNumericalAssign, func(ev Event) {
		got = ev.(LinearNumericalAssignEvent)
	})

	want := LinearNumericalAssignEvent{Target: numeric.ZVariable(7)}
	d.Dispatch(want)

	require.Equal(t, want, got)
}
