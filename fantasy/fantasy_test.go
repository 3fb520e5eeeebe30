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

package fantasy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/valid"
)

func testService(handler http.HandlerFunc) (*Service, func()) {
	ts := httptest.NewServer(handler)
	config := config.DefaultConfig()
	config.Backend.URL = ts.URL
	config.Client.Retries = 0
	return NewService(backend.NewBackend(config), catalog.NewNormalizer(config.TMDB.Images)), ts.Close
}

func TestValidate(t *testing.T) {
	cases := map[string]Input{
		"title":       {Overview: "o", ReleaseDate: "2025-01-01"},
		"overview":    {Title: "t", ReleaseDate: "2025-01-01"},
		"releaseDate": {Title: "t", Overview: "o", ReleaseDate: "Jan 1 2025"},
		"runtime":     {Title: "t", Overview: "o", ReleaseDate: "2025-01-01", Runtime: -1},
	}
	for field, in := range cases {
		err := in.Clean().Validate()
		var e valid.Errors
		if !errors.As(err, &e) {
			t.Errorf("%s: expected errors got %v\n", field, err)
			continue
		}
		if _, ok := e[field]; !ok {
			t.Errorf("%s: got %s\n", field, e)
		}
	}
	ok := Input{Title: " Dream ", Overview: "o", ReleaseDate: "2025-01-01"}
	if err := ok.Clean().Validate(); err != nil {
		t.Errorf("valid input %s\n", err)
	}
}

func TestClean(t *testing.T) {
	in := Input{
		Genres:              []string{"Drama", " Drama", "", "Sci-Fi"},
		ProductionCompanies: []string{"A24", "A24"},
	}.Clean()
	if len(in.Genres) != 2 || in.Genres[1] != "Sci-Fi" || len(in.ProductionCompanies) != 1 {
		t.Errorf("got %+v\n", in)
	}
}

func TestCreate(t *testing.T) {
	s, done := testService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/fantasy" {
			t.Errorf("path %s\n", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if genres, _ := body["genres"].([]interface{}); len(genres) != 1 {
			t.Errorf("genres %v\n", body["genres"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 77, "title": "Dream", "created_at": "2025-01-02T00:00:00Z"}`))
	})
	defer done()

	item, err := s.Create(context.Background(), Input{
		Title: "Dream", Overview: "A dream.", ReleaseDate: "2025-01-01",
		Runtime: 90, Genres: []string{"Drama", "Drama"},
	})
	if err != nil {
		t.Fatalf("Create %s\n", err)
	}
	if item.ID != 77 || !item.Fantasy || item.CreatedAt != "2025-01-02T00:00:00Z" {
		t.Errorf("got %+v\n", item)
	}
	if item.Overview != "A dream." || item.Runtime != 90 || len(item.Genres) != 1 {
		t.Errorf("form fields %+v\n", item)
	}
}

func TestCreateInvalidSendsNothing(t *testing.T) {
	called := false
	s, done := testService(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer done()

	if _, err := s.Create(context.Background(), Input{}); !errors.Is(err, valid.ErrInvalid) {
		t.Errorf("expected invalid got %v\n", err)
	}
	if called {
		t.Errorf("no request expected\n")
	}
}

func TestUploadPoster(t *testing.T) {
	s, done := testService(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/fantasy/77/poster" {
			t.Errorf("path %s\n", r.URL.Path)
		}
		w.Write([]byte(`{"id": 77, "title": "Dream", "poster_path": "/p/77.jpg"}`))
	})
	defer done()

	item, err := s.UploadPoster(context.Background(), 77, "77.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("UploadPoster %s\n", err)
	}
	if item.PosterPath == nil || *item.PosterPath != "https://image.tmdb.org/t/p/w500/p/77.jpg" {
		t.Errorf("poster %v\n", item.PosterPath)
	}
	if _, err := s.UploadCast(context.Background(), 0, "c.jpg", strings.NewReader("x")); err != ErrNoID {
		t.Errorf("expected ErrNoID got %v\n", err)
	}
}
