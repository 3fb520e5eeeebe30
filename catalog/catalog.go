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
	"errors"
	"fmt"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/tmdb"
	"github.com/sourcegraph/conc"
)

var (
	ErrInvalidPayload = errors.New("payload has neither id nor title")
)

// Catalog fetches and normalizes movies, series and actors. Movie details
// come from the backend with the metadata provider as fallback; series and
// actors come from the provider.
type Catalog struct {
	config  *config.Config
	backend *backend.Backend
	tmdb    *tmdb.TMDB
	norm    *Normalizer
}

func NewCatalog(config *config.Config) *Catalog {
	return &Catalog{
		config:  config,
		backend: backend.NewBackend(config),
		tmdb:    tmdb.NewTMDB(config),
		norm:    NewNormalizer(config.TMDB.Images),
	}
}

func (c *Catalog) Backend() *backend.Backend {
	return c.backend
}

func (c *Catalog) Normalizer() *Normalizer {
	return c.norm
}

func (c *Catalog) backendMovie(ctx context.Context, id int) (Item, error) {
	m, err := c.backend.MovieDetail(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if !m.Valid() {
		return Item{}, ErrInvalidPayload
	}
	return c.norm.FromBackendMovie(m), nil
}

func (c *Catalog) tmdbMovie(ctx context.Context, id int) (Item, error) {
	m, err := c.tmdb.MovieDetail(ctx, id)
	if err != nil {
		return Item{}, err
	}
	if m.ID == 0 && m.Title == "" {
		return Item{}, ErrInvalidPayload
	}
	return c.norm.FromTMDBMovie(m), nil
}

// MovieDetail never fails. When both sources fail the placeholder movie is
// returned.
func (c *Catalog) MovieDetail(ctx context.Context, id int) Item {
	item, err := c.backendMovie(ctx, id)
	if err == nil {
		return item
	}
	log.Printf("movie %d: backend: %s\n", id, err)
	item, err = c.tmdbMovie(ctx, id)
	if err == nil {
		return item
	}
	log.Printf("movie %d: tmdb: %s\n", id, err)
	return Placeholder(KindMovie)
}

func (c *Catalog) TVDetail(ctx context.Context, id int) Item {
	t, err := c.tmdb.TVDetail(ctx, id)
	if err != nil || (t.ID == 0 && t.Name == "") {
		log.Printf("tv %d: %v\n", id, orInvalid(err))
		return Placeholder(KindTV)
	}
	return c.norm.FromTMDBTV(t)
}

func (c *Catalog) PersonDetail(ctx context.Context, id int) Item {
	p, err := c.tmdb.PersonDetail(ctx, id)
	if err != nil || (p.ID == 0 && p.Name == "") {
		log.Printf("person %d: %v\n", id, orInvalid(err))
		return Placeholder(KindActor)
	}
	return c.norm.FromTMDBPerson(p)
}

func orInvalid(err error) error {
	if err == nil {
		return ErrInvalidPayload
	}
	return err
}

// Detail looks up any kind. Only the existence of a real record is
// reported through ok; the item is always usable.
func (c *Catalog) Detail(ctx context.Context, kind Kind, id int) (item Item, ok bool) {
	switch kind {
	case KindTV:
		item = c.TVDetail(ctx, id)
	case KindActor:
		item = c.PersonDetail(ctx, id)
	default:
		item = c.MovieDetail(ctx, id)
	}
	return item, item.ID != 0
}

func (c *Catalog) Similar(ctx context.Context, id int) ([]Item, error) {
	page, err := c.tmdb.SimilarMovies(ctx, id, 1)
	if err != nil {
		return nil, fmt.Errorf("similar to %d: %w", id, err)
	}
	items := make([]Item, 0, len(page.Results))
	for i := range page.Results {
		items = append(items, c.norm.FromTMDBMovieResult(&page.Results[i]))
	}
	return items, nil
}

// MovieWithSimilar fetches a movie and its similar movies concurrently.
// A similar lookup failure yields an empty list.
func (c *Catalog) MovieWithSimilar(ctx context.Context, id int) (Item, []Item) {
	var movie Item
	var similar []Item
	var wg conc.WaitGroup
	wg.Go(func() {
		movie = c.MovieDetail(ctx, id)
	})
	wg.Go(func() {
		var err error
		similar, err = c.Similar(ctx, id)
		if err != nil {
			log.Printf("%s\n", err)
			similar = []Item{}
		}
	})
	wg.Wait()
	return movie, similar
}

// Popular returns one page of the popular listing for kind.
func (c *Catalog) Popular(ctx context.Context, kind Kind, page int) ([]Item, error) {
	if page < 1 {
		page = 1
	}
	switch kind {
	case KindMovie:
		movies, err := c.backend.PopularMovies(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("popular movies: %w", err)
		}
		items := make([]Item, 0, len(movies))
		for i := range movies {
			items = append(items, c.norm.FromBackendMovie(&movies[i]))
		}
		return items, nil
	case KindTV:
		result, err := c.tmdb.PopularTV(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("popular tv: %w", err)
		}
		items := make([]Item, 0, len(result.Results))
		for i := range result.Results {
			items = append(items, c.norm.FromTMDBTV(&result.Results[i]))
		}
		return items, nil
	case KindActor:
		result, err := c.tmdb.PopularPeople(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("popular people: %w", err)
		}
		items := make([]Item, 0, len(result.Results))
		for i := range result.Results {
			items = append(items, c.norm.FromTMDBPersonResult(&result.Results[i]))
		}
		return items, nil
	}
	return nil, ErrKind
}

// PopularOrEmpty is Popular with failures logged and collapsed to an empty
// listing.
func (c *Catalog) PopularOrEmpty(ctx context.Context, kind Kind, page int) []Item {
	items, err := c.Popular(ctx, kind, page)
	if err != nil {
		log.Printf("%s\n", err)
		return []Item{}
	}
	return items
}

// Genres returns the provider's genre names for kind.
func (c *Catalog) Genres(ctx context.Context, kind Kind) ([]Genre, error) {
	var g tmdb.Genres
	var err error
	switch kind {
	case KindMovie:
		g, err = c.tmdb.MovieGenres(ctx)
	case KindTV:
		g, err = c.tmdb.TVGenres(ctx)
	default:
		return nil, ErrKind
	}
	if err != nil {
		return nil, err
	}
	result := make([]Genre, 0, len(g))
	for id, name := range g {
		result = append(result, Genre{ID: id, Name: name})
	}
	sortGenres(result)
	return result, nil
}
