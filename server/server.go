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

// Package server exposes the catalog, reviews, favorites, fantasy movies
// and the session as a JSON API.
package server

import (
	"context"
	"net/http"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/fantasy"
	"github.com/defsub/marquee/favorite"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/store"
	"github.com/defsub/marquee/session"
	"github.com/gorilla/mux"
)

func requestHandler(ctx RequestContext, handler http.HandlerFunc) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, withContext(r, ctx))
	}
	return http.HandlerFunc(fn)
}

// authHandler serves handler only with a signed in session.
func authHandler(ctx RequestContext, handler http.HandlerFunc) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		s, err := ctx.Sessions().Current()
		if err != nil {
			authErr(w, err)
			return
		}
		handler.ServeHTTP(w, withContext(r, upgradeContext(ctx, s)))
	}
	return http.HandlerFunc(fn)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func makeListings(config *config.Config, c *catalog.Catalog) map[catalog.Kind]*catalog.Aggregator {
	listings := make(map[catalog.Kind]*catalog.Aggregator)
	for _, kind := range []catalog.Kind{catalog.KindMovie, catalog.KindTV, catalog.KindActor} {
		kind := kind
		source := func(ctx context.Context, page int) ([]catalog.Item, error) {
			return c.Popular(ctx, kind, page)
		}
		listings[kind] = catalog.NewAggregator(source,
			config.Catalog.PageSize, config.Catalog.MaxItems)
	}
	return listings
}

// makeContext builds the base context shared by all requests.
func makeContext(config *config.Config, s store.Store) RequestContext {
	c := catalog.NewCatalog(config)
	return RequestContext{
		catalog:   c,
		config:    config,
		fantasy:   fantasy.NewService(c.Backend(), c.Normalizer()),
		favorites: favorite.NewFavorites(config, s, c),
		listings:  makeListings(config, c),
		sessions:  session.NewManager(config, c.Backend(), s),
		threads:   newThreads(c.Backend()),
	}
}

// NewRouter registers the API routes for ctx.
func NewRouter(ctx RequestContext) *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notFoundErr(w)
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// session
	api.Handle("/signup", requestHandler(ctx, apiSignUp)).Methods(http.MethodPost)
	api.Handle("/signin", requestHandler(ctx, apiSignIn)).Methods(http.MethodPost)
	api.Handle("/signout", requestHandler(ctx, apiSignOut)).Methods(http.MethodPost)
	api.Handle("/session", authHandler(ctx, apiSession)).Methods(http.MethodGet)

	// listings and details
	kinds := "{kind:movies|tv|people}"
	api.Handle("/"+kinds, requestHandler(ctx, apiListing)).Methods(http.MethodGet)
	api.Handle("/"+kinds+"/{id:[0-9]+}", requestHandler(ctx, apiDetail)).Methods(http.MethodGet)
	api.Handle("/movies/{id:[0-9]+}/similar", requestHandler(ctx, apiSimilar)).Methods(http.MethodGet)
	api.Handle("/genres/{kind}", requestHandler(ctx, apiGenres)).Methods(http.MethodGet)

	// reviews
	reviews := "/movies/{id:[0-9]+}/reviews"
	api.Handle(reviews, requestHandler(ctx, apiReviews)).Methods(http.MethodGet)
	api.Handle(reviews, authHandler(ctx, apiReviewCreate)).Methods(http.MethodPost)
	api.Handle(reviews+"/{rid}", authHandler(ctx, apiReviewEdit)).Methods(http.MethodPut, http.MethodPatch)
	api.Handle(reviews+"/{rid}", authHandler(ctx, apiReviewDelete)).Methods(http.MethodDelete)
	api.Handle(reviews+"/{rid}/translate", requestHandler(ctx, apiReviewTranslate)).Methods(http.MethodGet)

	// favorites
	favorites := "/favorites/{kind}"
	api.Handle(favorites, requestHandler(ctx, apiFavorites)).Methods(http.MethodGet)
	api.Handle(favorites+"/details", requestHandler(ctx, apiFavoriteDetails)).Methods(http.MethodGet)
	api.Handle(favorites+"/suggestions", requestHandler(ctx, apiFavoriteSuggestions)).Methods(http.MethodGet)
	api.Handle(favorites+"/{id:[0-9]+}", requestHandler(ctx, apiFavoriteAdd)).Methods(http.MethodPut)
	api.Handle(favorites+"/{id:[0-9]+}", requestHandler(ctx, apiFavoriteRemove)).Methods(http.MethodDelete)
	api.Handle(favorites+"/{id:[0-9]+}", requestHandler(ctx, apiFavoriteToggle)).Methods(http.MethodPost)

	// fantasy
	api.Handle("/fantasy", authHandler(ctx, apiFantasyCreate)).Methods(http.MethodPost)
	api.Handle("/fantasy/{id:[0-9]+}/{res:poster|cast}", authHandler(ctx, apiFantasyUpload)).Methods(http.MethodPost)

	return r
}

func Serve(config *config.Config) error {
	s, err := store.Open(config.Store)
	log.CheckError(err)
	defer s.Close()

	// base context for all requests
	ctx := makeContext(config, s)

	scheduler := schedule(config, ctx.listings)
	defer scheduler.Stop()

	router := NewRouter(ctx)
	log.Printf("listening on %s\n", config.Server.Listen)
	return http.ListenAndServe(config.Server.Listen, router)
}
