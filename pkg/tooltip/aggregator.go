package tooltip

import (
	"slices"
	"sync"

	"github.com/go-drift/charts/pkg/interaction"
	"github.com/go-drift/charts/pkg/series"
)

// inputs are the parts of the state a Result depends on.
const inputs = interaction.AspectSeries | interaction.AspectCrosshair | interaction.AspectPointer

// Aggregator keeps the tooltip of a Store up to date.
//
// Result recomputes only when the series, crosshair or pointer changed since
// the last call, and returns the previous *Result otherwise, so callers can
// compare results by pointer.
type Aggregator struct {
	store    *interaction.Store
	onChange func(*Result)
	remove   func()

	mu     sync.Mutex
	dirty  bool
	result *Result
	seen   key
}

// key captures input identity. State values are replaced on change, so
// pointer equality is enough.
type key struct {
	crosshair *interaction.Crosshair
	pointer   *interaction.Pointer
	series    []*series.Series
}

func (k key) equal(o key) bool {
	return k.crosshair == o.crosshair && k.pointer == o.pointer && slices.Equal(k.series, o.series)
}

// NewAggregator subscribes to store. If onChange is not nil it is called with
// every new Result, on the goroutine that changed the store.
func NewAggregator(store *interaction.Store, onChange func(*Result)) *Aggregator {
	a := &Aggregator{store: store, onChange: onChange, dirty: true}
	a.remove = store.AddListener(a.changed)
	return a
}

func (a *Aggregator) changed(aspects interaction.Aspect) {
	if !aspects.Has(inputs) {
		return
	}
	a.mu.Lock()
	a.dirty = true
	a.mu.Unlock()
	if a.onChange == nil {
		return
	}
	prev := a.peek()
	if next := a.Result(); next != prev {
		a.onChange(next)
	}
}

func (a *Aggregator) peek() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Result returns the tooltip for the current store state.
func (a *Aggregator) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.dirty && a.result != nil {
		return a.result
	}
	st := a.store.Snapshot()
	k := key{crosshair: st.Crosshair, pointer: st.Pointer, series: st.Series}
	a.dirty = false
	if a.result != nil && k.equal(a.seen) {
		return a.result
	}
	a.seen = k
	a.result = Aggregate(st)
	return a.result
}

// Dispose unsubscribes from the store.
func (a *Aggregator) Dispose() {
	if a.remove != nil {
		a.remove()
		a.remove = nil
	}
}
