// Copyright (c) 2026 References. All rights reserved.
// Author: hiroto333

/*
Package reflist implements the client-side state machine for a reference
library view.

It tracks the fetched item list, the selection set, and the loading flag for
an embedding client (CLI, TUI, or test harness), talking to the backend only
through small interfaces.

Architecture:

  - Controller: Owns the mutable view state behind a mutex.
  - Lister / Deleter: Backend contracts, satisfied by an HTTP client or a
    fake.
  - Clipboard: Destination for the numbered copy blocks.

Concurrent refreshes are allowed; responses are applied strictly in arrival
order, so the state always reflects the most recently completed fetch.
*/
package reflist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hiroto333/references/internal/core/citation"
)

// # Contracts & Types

// Item is one row of the library view.
type Item struct {
	ID            string
	FormattedText string
	CreatedAt     time.Time
}

// Lister fetches the full library, newest first.
type Lister interface {
	List(context context.Context) ([]Item, error)
}

// Deleter removes a single owned item.
type Deleter interface {
	Delete(context context.Context, id string) error
}

// Clipboard receives the assembled copy text.
type Clipboard interface {
	Write(context context.Context, text string) error
}

// Controller owns the view state of one library screen.
//
// All exported methods are safe for concurrent use. The mutex is never held
// across a backend call, so a slow fetch cannot block selection edits.
type Controller struct {
	lister    Lister
	deleter   Deleter
	clipboard Clipboard

	mutex    sync.Mutex
	items    []Item
	selected map[string]bool
	inflight int
	loading  bool
}

// NewController constructs a [Controller] with its backend dependencies.
func NewController(lister Lister, deleter Deleter, clipboard Clipboard) *Controller {
	return &Controller{
		lister:    lister,
		deleter:   deleter,
		clipboard: clipboard,
		selected:  make(map[string]bool),
	}
}

// # Fetching

/*
Refresh fetches the library and replaces the visible items.

Description: Multiple refreshes may run concurrently; each response is
applied as it arrives, so the last arrival wins regardless of the order the
requests were issued in. The loading flag stays up until the final in-flight
refresh settles. A failed fetch leaves the previous items in place.

Parameters:
  - context: context.Context

Returns:
  - error: Backend fetch failures
*/
func (controller *Controller) Refresh(context context.Context) error {
	controller.mutex.Lock()
	controller.inflight++
	controller.loading = true
	controller.mutex.Unlock()

	// Fetch without holding the lock.
	items, err := controller.lister.List(context)

	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	controller.inflight--
	if controller.inflight == 0 {
		controller.loading = false
	}

	if err != nil {
		return fmt.Errorf("reflist_refresh_failed: %w", err)
	}

	controller.items = items
	controller.pruneSelectionLocked()
	return nil
}

// pruneSelectionLocked drops selected ids that vanished from the item list.
// Caller must hold the mutex.
func (controller *Controller) pruneSelectionLocked() {
	present := make(map[string]bool, len(controller.items))
	for _, item := range controller.items {
		present[item.ID] = true
	}
	for id := range controller.selected {
		if !present[id] {
			delete(controller.selected, id)
		}
	}
}

// # Selection

// ToggleSelect sets the selection state of one item to the checkbox value.
// Idempotent: repeating the same call changes nothing. Ids not currently in
// the list are ignored.
func (controller *Controller) ToggleSelect(id string, checked bool) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	if !controller.containsLocked(id) {
		return
	}
	if checked {
		controller.selected[id] = true
	} else {
		delete(controller.selected, id)
	}
}

// ToggleSelectAll applies the header checkbox: checked selects every item,
// unchecked empties the selection regardless of its current contents.
func (controller *Controller) ToggleSelectAll(checked bool) {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()

	if !checked {
		controller.selected = make(map[string]bool)
		return
	}
	for _, item := range controller.items {
		controller.selected[item.ID] = true
	}
}

func (controller *Controller) containsLocked(id string) bool {
	for _, item := range controller.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// # Clipboard Export

/*
CopySelected assembles the numbered copy blocks for the current selection
and writes them to the clipboard.

Description: Entries keep the list's display order, numbered from [1] and
separated by a blank line. An empty selection writes nothing and returns an
empty payload.

Parameters:
  - context: context.Context

Returns:
  - string: The text written to the clipboard
  - int: Number of entries included
  - error: Clipboard write failures
*/
func (controller *Controller) CopySelected(context context.Context) (string, int, error) {
	controller.mutex.Lock()
	lines := make([]string, 0, len(controller.selected))
	for _, item := range controller.items {
		if controller.selected[item.ID] {
			lines = append(lines, item.FormattedText)
		}
	}
	controller.mutex.Unlock()

	if len(lines) == 0 {
		return "", 0, nil
	}

	text := citation.RenderCopyBlocks(lines)
	if err := controller.clipboard.Write(context, text); err != nil {
		return "", 0, fmt.Errorf("reflist_copy_failed: %w", err)
	}

	return text, len(lines), nil
}

// # Deletion

/*
DeleteOne removes a single item from the backend and the local view.

Description: Ids not present in the list are a no-op with no backend call,
so a double-click on a just-deleted row cannot 404. When the backend delete
fails, the local state is left untouched.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Backend delete failures
*/
func (controller *Controller) DeleteOne(context context.Context, id string) error {
	controller.mutex.Lock()
	present := controller.containsLocked(id)
	controller.mutex.Unlock()

	if !present {
		return nil
	}

	if err := controller.deleter.Delete(context, id); err != nil {
		return fmt.Errorf("reflist_delete_failed: %w", err)
	}

	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	for index, item := range controller.items {
		if item.ID == id {
			controller.items = append(controller.items[:index:index], controller.items[index+1:]...)
			break
		}
	}
	delete(controller.selected, id)
	return nil
}

// # Accessors

// Items returns a copy of the visible items in display order.
func (controller *Controller) Items() []Item {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	items := make([]Item, len(controller.items))
	copy(items, controller.items)
	return items
}

// SelectedIDs returns the selected ids in display order.
func (controller *Controller) SelectedIDs() []string {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	ids := make([]string, 0, len(controller.selected))
	for _, item := range controller.items {
		if controller.selected[item.ID] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

// IsSelected reports whether the given id is currently selected.
func (controller *Controller) IsSelected(id string) bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.selected[id]
}

// Loading reports whether any refresh is still in flight.
func (controller *Controller) Loading() bool {
	controller.mutex.Lock()
	defer controller.mutex.Unlock()
	return controller.loading
}
