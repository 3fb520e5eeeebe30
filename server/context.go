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

package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/fantasy"
	"github.com/defsub/marquee/favorite"
	"github.com/defsub/marquee/review"
	"github.com/defsub/marquee/session"
)

type contextKey string

var (
	contextKeyContext = contextKey("context")
)

func withContext(r *http.Request, ctx Context) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), contextKeyContext, ctx))
}

func contextValue(r *http.Request) Context {
	return r.Context().Value(contextKeyContext).(Context)
}

type Context interface {
	Catalog() *catalog.Catalog
	Config() *config.Config
	Fantasy() *fantasy.Service
	Favorites() *favorite.Favorites
	Listing(catalog.Kind) *catalog.Aggregator
	Session() *session.Session
	Sessions() *session.Manager

	Thread(ctx context.Context, movieID int) *review.Thread
	WithThread(item catalog.Item) catalog.Item
}

// threads caches the review thread of each movie seen so mutations and
// later reads agree. A thread started without the movie's reviews is
// unloaded until a detail lookup succeeds.
type threads struct {
	mu       sync.Mutex
	backend  review.Backend
	byMovie  map[int]*review.Thread
	unloaded map[int]bool
}

func newThreads(b review.Backend) *threads {
	return &threads{
		backend:  b,
		byMovie:  make(map[int]*review.Thread),
		unloaded: make(map[int]bool),
	}
}

// lookup returns the cached thread once its reviews are loaded.
func (t *threads) lookup(movieID int) *review.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.unloaded[movieID] {
		return nil
	}
	return t.byMovie[movieID]
}

// seed returns the cached thread, creating it from reviews when absent.
// An unloaded thread takes in the reviews it is missing.
func (t *threads) seed(movieID int, reviews []review.Review) *review.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()
	if thread, ok := t.byMovie[movieID]; ok {
		if t.unloaded[movieID] {
			thread.Merge(reviews)
			delete(t.unloaded, movieID)
		}
		return thread
	}
	thread := review.NewThread(t.backend, movieID, reviews)
	t.byMovie[movieID] = thread
	return thread
}

// empty caches a thread with no reviews for a movie whose detail could not
// be fetched.
func (t *threads) empty(movieID int) *review.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()
	if thread, ok := t.byMovie[movieID]; ok {
		return thread
	}
	thread := review.NewThread(t.backend, movieID, nil)
	t.byMovie[movieID] = thread
	t.unloaded[movieID] = true
	return thread
}

type RequestContext struct {
	catalog   *catalog.Catalog
	config    *config.Config
	fantasy   *fantasy.Service
	favorites *favorite.Favorites
	listings  map[catalog.Kind]*catalog.Aggregator
	session   *session.Session
	sessions  *session.Manager
	threads   *threads
}

func upgradeContext(ctx RequestContext, s *session.Session) RequestContext {
	ctx.session = s
	return ctx
}

func (ctx RequestContext) Catalog() *catalog.Catalog {
	return ctx.catalog
}

func (ctx RequestContext) Config() *config.Config {
	return ctx.config
}

func (ctx RequestContext) Fantasy() *fantasy.Service {
	return ctx.fantasy
}

func (ctx RequestContext) Favorites() *favorite.Favorites {
	return ctx.favorites
}

func (ctx RequestContext) Listing(kind catalog.Kind) *catalog.Aggregator {
	return ctx.listings[kind]
}

// Session is the signed in user for requests behind authHandler, nil
// otherwise.
func (ctx RequestContext) Session() *session.Session {
	return ctx.session
}

func (ctx RequestContext) Sessions() *session.Manager {
	return ctx.sessions
}

// Thread returns the review thread for a movie, loading its reviews with
// the movie detail until a lookup succeeds.
func (ctx RequestContext) Thread(c context.Context, movieID int) *review.Thread {
	if thread := ctx.threads.lookup(movieID); thread != nil {
		return thread
	}
	item := ctx.catalog.MovieDetail(c, movieID)
	if item.ID == 0 {
		return ctx.threads.empty(movieID)
	}
	return ctx.threads.seed(movieID, item.Reviews)
}

// WithThread replaces the reviews of a movie with its thread's current
// reviews.
func (ctx RequestContext) WithThread(item catalog.Item) catalog.Item {
	if item.Kind != catalog.KindMovie || item.ID == 0 || item.Fantasy {
		return item
	}
	thread := ctx.threads.seed(item.ID, item.Reviews)
	item.Reviews = thread.Reviews()
	return item
}
