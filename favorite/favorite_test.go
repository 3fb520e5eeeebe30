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

package favorite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/store"
)

type fakeCatalog struct {
	missing map[int]bool
}

func (c fakeCatalog) Detail(ctx context.Context, kind catalog.Kind, id int) (catalog.Item, bool) {
	if c.missing[id] {
		return catalog.Placeholder(kind), false
	}
	return catalog.Item{ID: id, Kind: kind, Title: "item"}, true
}

func (c fakeCatalog) Popular(ctx context.Context, kind catalog.Kind, page int) ([]catalog.Item, error) {
	return []catalog.Item{
		{ID: 1399, Title: "Game of Thrones"},
		{ID: 100, Title: "The Bear"},
		{ID: 101, Title: "Severance"},
	}, nil
}

func testFavorites(s store.Store) *Favorites {
	return NewFavorites(config.DefaultConfig(), s, fakeCatalog{})
}

func same(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDemoSeed(t *testing.T) {
	s := store.NewMemory()
	f := testFavorites(s)
	tv, err := f.Get(catalog.KindTV)
	if err != nil {
		t.Fatalf("Get %s\n", err)
	}
	if !same(tv, []int{1399, 60574, 66732}) {
		t.Errorf("tv %v\n", tv)
	}
	actors, _ := f.Get(catalog.KindActor)
	if !same(actors, []int{1245, 976, 1136406}) {
		t.Errorf("actors %v\n", actors)
	}
	if v, ok, _ := s.Get(KeyDemo); !ok || v != "true" {
		t.Errorf("demo flag %s %v\n", v, ok)
	}

	// emptied lists stay empty
	for _, id := range tv {
		f.Remove(catalog.KindTV, id)
	}
	f = testFavorites(s)
	if tv, _ = f.Get(catalog.KindTV); len(tv) != 0 {
		t.Errorf("reseeded %v\n", tv)
	}
}

func TestSeedKeepsExisting(t *testing.T) {
	s := store.NewMemory()
	s.Set(KeyTV, "[42]")
	f := testFavorites(s)
	tv, _ := f.Get(catalog.KindTV)
	if !same(tv, []int{42}) {
		t.Errorf("tv %v\n", tv)
	}
	actors, _ := f.Get(catalog.KindActor)
	if len(actors) != 3 {
		t.Errorf("actors %v\n", actors)
	}
}

func TestRoundTrip(t *testing.T) {
	s, err := store.Open(config.StoreConfig{
		Driver: config.StoreSQLite,
		Source: filepath.Join(t.TempDir(), "favorites.db"),
	})
	if err != nil {
		t.Fatalf("Open %s\n", err)
	}
	defer s.Close()
	s.Set(KeyDemo, "true")

	f := testFavorites(s)
	if err := f.Add(catalog.KindActor, 287); err != nil {
		t.Fatalf("Add %s\n", err)
	}
	f.Add(catalog.KindActor, 287)
	f.Add(catalog.KindActor, 1245)
	ids, _ := f.Get(catalog.KindActor)
	if !same(ids, []int{287, 1245}) {
		t.Errorf("ids %v\n", ids)
	}
	on, err := f.Toggle(catalog.KindActor, 287)
	if err != nil || on {
		t.Errorf("toggle off %v %v\n", on, err)
	}
	on, _ = f.Toggle(catalog.KindActor, 976)
	if !on {
		t.Errorf("toggle on\n")
	}
	if ok, _ := f.Contains(catalog.KindActor, 976); !ok {
		t.Errorf("contains 976\n")
	}
	ids, _ = testFavorites(s).Get(catalog.KindActor)
	if !same(ids, []int{1245, 976}) {
		t.Errorf("persisted %v\n", ids)
	}
}

func TestCorruptValue(t *testing.T) {
	s := store.NewMemory()
	s.Set(KeyDemo, "true")
	s.Set(KeyTV, "not json")
	ids, err := testFavorites(s).Get(catalog.KindTV)
	if err != nil || ids == nil || len(ids) != 0 {
		t.Errorf("got %v %v\n", ids, err)
	}
}

func TestKind(t *testing.T) {
	if _, err := testFavorites(store.NewMemory()).Get(catalog.KindMovie); err != ErrKind {
		t.Errorf("expected ErrKind got %v\n", err)
	}
}

func TestDetails(t *testing.T) {
	s := store.NewMemory()
	f := testFavorites(s)
	items, err := f.Details(context.Background(), catalog.KindTV)
	if err != nil {
		t.Fatalf("Details %s\n", err)
	}
	if len(items) != 3 || items[0].ID != 1399 || items[2].ID != 66732 {
		t.Errorf("items %+v\n", items)
	}

	f = NewFavorites(config.DefaultConfig(), s, fakeCatalog{missing: map[int]bool{60574: true}})
	if _, err = f.Details(context.Background(), catalog.KindTV); !errors.Is(err, ErrDetail) {
		t.Errorf("expected ErrDetail got %v\n", err)
	}
}

func TestSuggestions(t *testing.T) {
	f := testFavorites(store.NewMemory())
	items, err := f.Suggestions(context.Background(), catalog.KindTV, 1, "")
	if err != nil || len(items) != 2 {
		t.Errorf("got %+v %v\n", items, err)
	}
	items, _ = f.Suggestions(context.Background(), catalog.KindTV, 1, "sever")
	if len(items) != 1 || items[0].ID != 101 {
		t.Errorf("query %+v\n", items)
	}
}
