// Copyright (C) 2024 The Marquee Authors.
//
// This file is part of Marquee.
//
// Marquee is free software: you can redistribute it and/or modify it under the
// terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Marquee is distributed in the hope that it will be useful, but WITHOUT ANY
// WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS
// FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License for
// more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Marquee.  If not, see <https://www.gnu.org/licenses/>.

package catalog

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Source returns one server page of a listing. An empty page means the
// listing is exhausted.
type Source func(ctx context.Context, page int) ([]Item, error)

// Aggregator accumulates server pages of a listing, without duplicates, and
// pages through the derived view client side. More server pages are fetched
// only when the user nears the end of what is already loaded.
type Aggregator struct {
	mu        sync.Mutex
	group     singleflight.Group
	source    Source
	pageSize  int
	maxItems  int
	items     []Item
	seen      map[int]bool
	loaded    int // highest server page fetched
	page      int
	filter    Filter
	sort      Sort
	exhausted bool
	err       error
}

func NewAggregator(source Source, pageSize, maxItems int) *Aggregator {
	if pageSize <= 0 {
		pageSize = 8
	}
	if maxItems <= 0 {
		maxItems = 100
	}
	return &Aggregator{
		source:   source,
		pageSize: pageSize,
		maxItems: maxItems,
		items:    []Item{},
		seen:     make(map[int]bool),
		page:     1,
		sort:     DefaultSort,
	}
}

// Add appends items whose ids are not yet present, first seen wins, and
// returns how many were added.
func (a *Aggregator) Add(items []Item) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.add(items)
}

func (a *Aggregator) add(items []Item) int {
	added := 0
	for _, i := range items {
		if len(a.items) >= a.maxItems {
			break
		}
		if a.seen[i.ID] {
			continue
		}
		a.seen[i.ID] = true
		a.items = append(a.items, i)
		added++
	}
	return added
}

func (a *Aggregator) fetch(ctx context.Context, page int) (int, error) {
	v, err, _ := a.group.Do(strconv.Itoa(page), func() (interface{}, error) {
		return a.source(ctx, page)
	})
	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.err = err
		return 0, err
	}
	a.err = nil
	items, _ := v.([]Item)
	if page > a.loaded {
		a.loaded = page
	}
	if len(items) == 0 {
		a.exhausted = true
	}
	return a.add(items), nil
}

// Load fetches the first server page unless it was already loaded.
func (a *Aggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	loaded := a.loaded
	a.mu.Unlock()
	if loaded > 0 {
		return nil
	}
	_, err := a.fetch(ctx, 1)
	return err
}

// Refresh fetches the first server page again and merges anything new.
func (a *Aggregator) Refresh(ctx context.Context) (int, error) {
	return a.fetch(ctx, 1)
}

func (a *Aggregator) needsMore(f Filter, s Sort, page int) bool {
	if a.exhausted || len(a.items) >= a.maxItems {
		return false
	}
	derived := Derive(a.items, f, s)
	if len(derived) == 0 {
		return false
	}
	return page >= TotalPages(len(derived), a.pageSize)-1
}

// NeedsMore reports whether the current page is at or next to the last
// page of the derived view and more server data may exist.
func (a *Aggregator) NeedsMore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.needsMore(a.filter, a.sort, a.page)
}

func (a *Aggregator) next(ctx context.Context, f Filter, s Sort, page int) (bool, int, error) {
	a.mu.Lock()
	if !a.needsMore(f, s, page) {
		a.mu.Unlock()
		return false, 0, nil
	}
	serverPage := a.loaded + 1
	a.mu.Unlock()
	n, err := a.fetch(ctx, serverPage)
	return true, n, err
}

// Next fetches the next server page when NeedsMore. It reports whether a
// fetch was made.
func (a *Aggregator) Next(ctx context.Context) (bool, error) {
	a.mu.Lock()
	f, s, page := a.filter, a.sort, a.page
	a.mu.Unlock()
	fetched, _, err := a.next(ctx, f, s, page)
	return fetched, err
}

// FillFor loads until the view for f, s and page no longer needs more data,
// a fetch fails, or a page brings nothing new.
func (a *Aggregator) FillFor(ctx context.Context, f Filter, s Sort, page int) error {
	if err := a.Load(ctx); err != nil {
		return err
	}
	for {
		fetched, n, err := a.next(ctx, f, s, page)
		if err != nil {
			return err
		}
		if !fetched || n == 0 {
			return nil
		}
	}
}

func (a *Aggregator) Fill(ctx context.Context) error {
	a.mu.Lock()
	f, s, page := a.filter, a.sort, a.page
	a.mu.Unlock()
	return a.FillFor(ctx, f, s, page)
}

// SetFilter changes the filter and returns to the first page. Accumulated
// items are kept.
func (a *Aggregator) SetFilter(f Filter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = f
	a.page = 1
}

func (a *Aggregator) SetSort(s Sort) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sort = s
	a.page = 1
}

// SetPage moves to page n, clamped to the available pages.
func (a *Aggregator) SetPage(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := TotalPages(len(Derive(a.items, a.filter, a.sort)), a.pageSize)
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	a.page = n
}

func (a *Aggregator) CurrentPage() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.page
}

// View returns the filtered and sorted items.
func (a *Aggregator) View() []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Derive(a.items, a.filter, a.sort)
}

func (a *Aggregator) Page() []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Paginate(Derive(a.items, a.filter, a.sort), a.page, a.pageSize)
}

func (a *Aggregator) TotalPages() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return TotalPages(len(Derive(a.items, a.filter, a.sort)), a.pageSize)
}

// Items returns the accumulated items in arrival order.
func (a *Aggregator) Items() []Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]Item, len(a.items))
	copy(result, a.items)
	return result
}

// Err is the error of the last fetch, nil once a fetch succeeds.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Aggregator) Exhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exhausted
}

type Snapshot struct {
	Page  int
	Pages int
	Total int
	Items []Item
	More  bool
	Err   error
}

// SnapshotFor computes a consistent page of the view for f and s without
// changing the aggregator's own filter, sort or page.
func (a *Aggregator) SnapshotFor(f Filter, s Sort, page int) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	derived := Derive(a.items, f, s)
	pages := TotalPages(len(derived), a.pageSize)
	if page < 1 {
		page = 1
	}
	return Snapshot{
		Page:  page,
		Pages: pages,
		Total: len(derived),
		Items: Paginate(derived, page, a.pageSize),
		More:  a.needsMore(f, s, page),
		Err:   a.err,
	}
}
