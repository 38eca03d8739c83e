// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

package reflist_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiroto333/references/internal/core/reflist"
)

// fakeBackend satisfies Lister and Deleter with scripted responses.
type fakeBackend struct {
	mutex       sync.Mutex
	items       []reflist.Item
	listErr     error
	deleteErr   error
	deleteCalls []string
}

func (f *fakeBackend) List(_ context.Context) ([]reflist.Item, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	items := make([]reflist.Item, len(f.items))
	copy(items, f.items)
	return items, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

// fakeClipboard records the last write.
type fakeClipboard struct {
	text     string
	writes   int
	writeErr error
}

func (f *fakeClipboard) Write(_ context.Context, text string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.text = text
	f.writes++
	return nil
}

func threeItems() []reflist.Item {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []reflist.Item{
		{ID: "c", FormattedText: "三番目の引用．", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "b", FormattedText: "二番目の引用．", CreatedAt: base.Add(time.Hour)},
		{ID: "a", FormattedText: "一番目の引用．", CreatedAt: base},
	}
}

/*
TestController_Refresh loads the backend list and clears the loading flag.
*/
func TestController_Refresh(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})

	require.NoError(t, controller.Refresh(context.Background()))

	items := controller.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.False(t, controller.Loading())
}

/*
TestController_Refresh_FailureKeepsItems checks that a failed fetch leaves
the previously loaded items visible.
*/
func TestController_Refresh_FailureKeepsItems(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))

	backend.mutex.Lock()
	backend.listErr = errors.New("connection reset")
	backend.mutex.Unlock()

	err := controller.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, controller.Items(), 3)
	assert.False(t, controller.Loading())
}

// gatedLister releases each List call only when told to, so tests can force
// a specific arrival order for concurrent refreshes.
type gatedLister struct {
	responses chan []reflist.Item
}

func (g *gatedLister) List(_ context.Context) ([]reflist.Item, error) {
	return <-g.responses, nil
}

/*
TestController_Refresh_LastArrivalWins runs two overlapping refreshes and
checks that whichever response arrives last determines the visible items,
and that the loading flag stays up until both settle.
*/
func TestController_Refresh_LastArrivalWins(t *testing.T) {
	lister := &gatedLister{responses: make(chan []reflist.Item)}
	controller := reflist.NewController(lister, &fakeBackend{}, &fakeClipboard{})

	// Either goroutine may receive either response, so completions are
	// drained from a shared channel.
	done := make(chan error, 2)
	go func() { done <- controller.Refresh(context.Background()) }()
	go func() { done <- controller.Refresh(context.Background()) }()

	// Release one response while the other is still pending.
	stale := []reflist.Item{{ID: "stale", FormattedText: "古い一覧．"}}
	lister.responses <- stale
	require.NoError(t, <-done)

	// One refresh is still in flight.
	assert.True(t, controller.Loading())

	fresh := []reflist.Item{{ID: "fresh", FormattedText: "新しい一覧．"}}
	lister.responses <- fresh
	require.NoError(t, <-done)

	items := controller.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
	assert.False(t, controller.Loading())
}

/*
TestController_Refresh_PrunesSelection checks that ids missing from a fresh
fetch are dropped from the selection.
*/
func TestController_Refresh_PrunesSelection(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))

	controller.ToggleSelect("a", true)
	controller.ToggleSelect("b", true)

	// "a" disappears server-side (deleted from another tab).
	backend.mutex.Lock()
	backend.items = backend.items[:2]
	backend.mutex.Unlock()

	require.NoError(t, controller.Refresh(context.Background()))
	assert.Equal(t, []string{"b"}, controller.SelectedIDs())
}

/*
TestController_ToggleSelect covers checkbox semantics: setting a state is
idempotent, and unknown ids are ignored.
*/
func TestController_ToggleSelect(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))

	controller.ToggleSelect("b", true)
	assert.True(t, controller.IsSelected("b"))

	// Re-checking an already selected row changes nothing.
	controller.ToggleSelect("b", true)
	assert.Equal(t, []string{"b"}, controller.SelectedIDs())

	controller.ToggleSelect("b", false)
	assert.False(t, controller.IsSelected("b"))

	// Unchecking an unselected row is a no-op too.
	controller.ToggleSelect("b", false)
	assert.Empty(t, controller.SelectedIDs())

	// Unknown ids never enter the selection.
	controller.ToggleSelect("ghost", true)
	assert.Empty(t, controller.SelectedIDs())
}

/*
TestController_ToggleSelectAll covers the header checkbox: checked selects
everything, unchecked empties the selection even when only some rows were
selected.
*/
func TestController_ToggleSelectAll(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))

	controller.ToggleSelectAll(true)
	assert.Equal(t, []string{"c", "b", "a"}, controller.SelectedIDs())

	controller.ToggleSelectAll(false)
	assert.Empty(t, controller.SelectedIDs())

	// Unchecking from a partial selection clears, never completes.
	controller.ToggleSelect("b", true)
	controller.ToggleSelectAll(false)
	assert.Empty(t, controller.SelectedIDs())

	// Checking from a partial selection picks up the rest.
	controller.ToggleSelect("b", true)
	controller.ToggleSelectAll(true)
	assert.Equal(t, []string{"c", "b", "a"}, controller.SelectedIDs())
}

/*
TestController_CopySelected checks numbering follows display order and the
payload reaches the clipboard.
*/
func TestController_CopySelected(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	clipboard := &fakeClipboard{}
	controller := reflist.NewController(backend, backend, clipboard)
	require.NoError(t, controller.Refresh(context.Background()))

	// Select in reverse display order; numbering must not follow click order.
	controller.ToggleSelect("a", true)
	controller.ToggleSelect("c", true)

	text, count, err := controller.CopySelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "[1] 三番目の引用．\n\n[2] 一番目の引用．", text)
	assert.Equal(t, text, clipboard.text)
}

/*
TestController_CopySelected_Empty checks that an empty selection writes
nothing.
*/
func TestController_CopySelected_Empty(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	clipboard := &fakeClipboard{}
	controller := reflist.NewController(backend, backend, clipboard)
	require.NoError(t, controller.Refresh(context.Background()))

	text, count, err := controller.CopySelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, "", text)
	assert.Equal(t, 0, clipboard.writes)
}

/*
TestController_CopySelected_WriteFailure checks that a failed clipboard write
surfaces an error and leaves the items and selection untouched.
*/
func TestController_CopySelected_WriteFailure(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	clipboard := &fakeClipboard{writeErr: errors.New("clipboard unavailable")}
	controller := reflist.NewController(backend, backend, clipboard)
	require.NoError(t, controller.Refresh(context.Background()))

	controller.ToggleSelect("a", true)
	controller.ToggleSelect("c", true)

	text, count, err := controller.CopySelected(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reflist_copy_failed")
	assert.Equal(t, "", text)
	assert.Equal(t, 0, count)

	// The failure is non-fatal to the view state.
	assert.Len(t, controller.Items(), 3)
	assert.Equal(t, []string{"c", "a"}, controller.SelectedIDs())
	assert.Equal(t, 0, clipboard.writes)
}

/*
TestController_DeleteOne covers local removal, selection cleanup, and the
no-backend-call guarantee for absent ids.
*/
func TestController_DeleteOne(t *testing.T) {
	backend := &fakeBackend{items: threeItems()}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))
	controller.ToggleSelect("b", true)

	require.NoError(t, controller.DeleteOne(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, backend.deleteCalls)
	assert.Len(t, controller.Items(), 2)
	assert.Empty(t, controller.SelectedIDs())

	// Second delete of the same id: gone from the list, no backend call.
	require.NoError(t, controller.DeleteOne(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, backend.deleteCalls)
}

/*
TestController_DeleteOne_FailureLeavesState checks that a failed backend
delete leaves both the items and the selection untouched.
*/
func TestController_DeleteOne_FailureLeavesState(t *testing.T) {
	backend := &fakeBackend{items: threeItems(), deleteErr: errors.New("backend down")}
	controller := reflist.NewController(backend, backend, &fakeClipboard{})
	require.NoError(t, controller.Refresh(context.Background()))
	controller.ToggleSelect("a", true)

	err := controller.DeleteOne(context.Background(), "a")
	require.Error(t, err)
	assert.Len(t, controller.Items(), 3)
	assert.Equal(t, []string{"a"}, controller.SelectedIDs())
}
