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

// Package favorite keeps the user's favorite series and actors as id lists in
// the key-value store.
package favorite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/store"
	"github.com/sourcegraph/conc/pool"
)

const (
	KeyTV     = "favorite_tvs"
	KeyActor  = "favorite_actors"
	KeyDemo   = "hasSeenDemo"
	demoValue = "true"

	// SuggestionPages is how many popular pages quick add offers.
	SuggestionPages = 10

	maxLookups = 8
)

var (
	ErrKind   = errors.New("favorites hold tv series and actors only")
	ErrDetail = errors.New("favorite details unavailable")
)

// Catalog is the lookup side of catalog.Catalog used here.
type Catalog interface {
	Detail(ctx context.Context, kind catalog.Kind, id int) (catalog.Item, bool)
	Popular(ctx context.Context, kind catalog.Kind, page int) ([]catalog.Item, error)
}

// Favorites reads and writes the whole id list on every change. Writers in
// this process are serialized; concurrent writers elsewhere sharing the
// store are last writer wins.
type Favorites struct {
	mu      sync.Mutex
	store   store.Store
	catalog Catalog
	demo    map[catalog.Kind][]int
}

func NewFavorites(config *config.Config, s store.Store, c Catalog) *Favorites {
	return &Favorites{
		store:   s,
		catalog: c,
		demo: map[catalog.Kind][]int{
			catalog.KindTV:    config.Favorites.DemoTV,
			catalog.KindActor: config.Favorites.DemoActors,
		},
	}
}

func key(kind catalog.Kind) (string, error) {
	switch kind {
	case catalog.KindTV:
		return KeyTV, nil
	case catalog.KindActor:
		return KeyActor, nil
	}
	return "", ErrKind
}

func (f *Favorites) read(kind catalog.Kind) ([]int, error) {
	k, err := key(kind)
	if err != nil {
		return nil, err
	}
	var ids []int
	ok, err := store.GetJson(f.store, k, &ids)
	if err != nil {
		return nil, err
	}
	if !ok || ids == nil {
		ids = []int{}
	}
	return ids, nil
}

func (f *Favorites) write(kind catalog.Kind, ids []int) error {
	k, err := key(kind)
	if err != nil {
		return err
	}
	return store.SetJson(f.store, k, ids)
}

// seed fills empty lists with the demo ids the first time favorites are
// used. It never runs again, even after the user empties a list.
func (f *Favorites) seed() error {
	_, seen, err := f.store.Get(KeyDemo)
	if err != nil || seen {
		return err
	}
	for _, kind := range []catalog.Kind{catalog.KindTV, catalog.KindActor} {
		ids, err := f.read(kind)
		if err != nil {
			return err
		}
		if len(ids) == 0 && len(f.demo[kind]) > 0 {
			log.Printf("seeding demo %s favorites\n", kind)
			demo := append([]int{}, f.demo[kind]...)
			if err := f.write(kind, demo); err != nil {
				return err
			}
		}
	}
	return f.store.Set(KeyDemo, demoValue)
}

func (f *Favorites) load(kind catalog.Kind) ([]int, error) {
	if _, err := key(kind); err != nil {
		return nil, err
	}
	if err := f.seed(); err != nil {
		return nil, err
	}
	return f.read(kind)
}

func (f *Favorites) Get(kind catalog.Kind) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(kind)
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func (f *Favorites) Contains(kind catalog.Kind, id int) (bool, error) {
	ids, err := f.Get(kind)
	if err != nil {
		return false, err
	}
	return indexOf(ids, id) >= 0, nil
}

// Add appends id unless it is already a favorite.
func (f *Favorites) Add(kind catalog.Kind, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, err := f.load(kind)
	if err != nil {
		return err
	}
	if indexOf(ids, id) >= 0 {
		return nil
	}
	return f.write(kind, append(ids, id))
}

func (f *Favorites) Remove(kind catalog.Kind, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, err := f.load(kind)
	if err != nil {
		return err
	}
	i := indexOf(ids, id)
	if i < 0 {
		return nil
	}
	return f.write(kind, append(ids[:i], ids[i+1:]...))
}

// Toggle adds or removes id and reports whether it is now a favorite.
func (f *Favorites) Toggle(kind catalog.Kind, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, err := f.load(kind)
	if err != nil {
		return false, err
	}
	if i := indexOf(ids, id); i >= 0 {
		return false, f.write(kind, append(ids[:i], ids[i+1:]...))
	}
	return true, f.write(kind, append(ids, id))
}

// Details looks up every favorite. Either all lookups succeed or an error
// is returned.
func (f *Favorites) Details(ctx context.Context, kind catalog.Kind) ([]catalog.Item, error) {
	ids, err := f.Get(kind)
	if err != nil {
		return nil, err
	}
	items := make([]catalog.Item, len(ids))
	p := pool.New().WithMaxGoroutines(maxLookups).WithContext(ctx).WithCancelOnError()
	for i, id := range ids {
		i, id := i, id
		p.Go(func(ctx context.Context) error {
			item, ok := f.catalog.Detail(ctx, kind, id)
			if !ok {
				return fmt.Errorf("%w: %s %d", ErrDetail, kind, id)
			}
			items[i] = item
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// Suggestions is a popular page for quick add, without current favorites
// and narrowed to titles containing query when given.
func (f *Favorites) Suggestions(ctx context.Context, kind catalog.Kind, page int, query string) ([]catalog.Item, error) {
	ids, err := f.Get(kind)
	if err != nil {
		return nil, err
	}
	popular, err := f.catalog.Popular(ctx, kind, page)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	result := make([]catalog.Item, 0, len(popular))
	for _, item := range popular {
		if indexOf(ids, item.ID) >= 0 {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Title), query) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}
