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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/store"
	"github.com/defsub/marquee/review"
)

// upstream serves "METHOD /path" routes for the backend under /api and the
// provider under /3. A body starting with "!" is a 500 and an empty body
// is a 204.
func upstream(routes map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		switch {
		case !ok:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message": "not found"}`))
		case body == "":
			w.WriteHeader(http.StatusNoContent)
		case strings.HasPrefix(body, "!"):
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(body[1:]))
		default:
			w.Write([]byte(body))
		}
	}))
}

func testServer(routes map[string]string) (*httptest.Server, func()) {
	up := upstream(routes)
	config := config.DefaultConfig()
	config.Backend.URL = up.URL + "/api"
	config.TMDB.Endpoint = up.URL + "/3"
	config.TMDB.Key = "k"
	config.Client.Retries = 0
	config.Session.Secret = "test secret"
	srv := httptest.NewServer(NewRouter(makeContext(config, store.NewMemory())))
	return srv, func() {
		srv.Close()
		up.Close()
	}
}

func call(t *testing.T, method, url, body string) (int, []byte) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func popularMovies(n int) string {
	var movies []string
	for i := 0; i < n; i++ {
		movies = append(movies,
			fmt.Sprintf(`{"id": %d, "title": "Movie %d", "vote_average": %d}`, 100+i, i, i%10))
	}
	return "[" + strings.Join(movies, ",") + "]"
}

func TestListing(t *testing.T) {
	srv, done := testServer(map[string]string{
		"GET /api/movies/popular": popularMovies(10),
	})
	defer done()

	code, body := call(t, "GET", srv.URL+"/api/movies?page=2&sort=title-asc", "")
	if code != http.StatusOK {
		t.Fatalf("status %d %s\n", code, body)
	}
	var result listing
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Total != 10 || result.Pages != 2 || result.Page != 2 {
		t.Errorf("got %d total %d pages page %d\n", result.Total, result.Pages, result.Page)
	}
	if len(result.Items) != 2 || result.Items[0].Title != "Movie 8" || result.Items[1].Title != "Movie 9" {
		t.Errorf("items %+v\n", result.Items)
	}
	if result.Error != "" {
		t.Errorf("error %s\n", result.Error)
	}

	code, body = call(t, "GET", srv.URL+"/api/movies?min=8&max=10", "")
	if code != http.StatusOK {
		t.Fatalf("status %d %s\n", code, body)
	}
	result = listing{}
	json.Unmarshal(body, &result)
	if result.Total != 2 {
		t.Errorf("rating filter total %d\n", result.Total)
	}
}

func TestListingBadSort(t *testing.T) {
	srv, done := testServer(nil)
	defer done()

	code, _ := call(t, "GET", srv.URL+"/api/tv?sort=bogus", "")
	if code != http.StatusBadRequest {
		t.Errorf("status %d\n", code)
	}
	code, _ = call(t, "GET", srv.URL+"/api/nope", "")
	if code != http.StatusNotFound {
		t.Errorf("unknown route %d\n", code)
	}
}

func TestListingError(t *testing.T) {
	srv, done := testServer(map[string]string{
		"GET /api/movies/popular": `!{"message": "boom"}`,
	})
	defer done()

	code, body := call(t, "GET", srv.URL+"/api/movies", "")
	if code != http.StatusOK {
		t.Fatalf("status %d\n", code)
	}
	var result listing
	json.Unmarshal(body, &result)
	if result.Error != "boom" || result.Total != 0 || result.Pages != 1 {
		t.Errorf("got %+v\n", result)
	}
}

func TestMovieDetail(t *testing.T) {
	srv, done := testServer(map[string]string{
		"GET /api/movies/550": `{"id": 550, "title": "Fight Club",
			"reviews": [{"id": "r1", "author": "critic", "content": "great", "rating": 5}]}`,
		"GET /3/movie/550/similar": `{"page": 1, "results": [{"id": 807, "title": "Se7en"}]}`,
	})
	defer done()

	code, body := call(t, "GET", srv.URL+"/api/movies/550", "")
	if code != http.StatusOK {
		t.Fatalf("status %d\n", code)
	}
	var result struct {
		Title   string          `json:"title"`
		Reviews []review.Review `json:"reviews"`
		Similar []catalog.Item  `json:"similar"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Title != "Fight Club" {
		t.Errorf("title %s\n", result.Title)
	}
	if len(result.Reviews) != 1 || result.Reviews[0].ID != "r1" {
		t.Errorf("reviews %+v\n", result.Reviews)
	}
	if len(result.Similar) != 1 || result.Similar[0].Title != "Se7en" {
		t.Errorf("similar %+v\n", result.Similar)
	}
}

func TestDetailPlaceholder(t *testing.T) {
	srv, done := testServer(nil)
	defer done()

	code, body := call(t, "GET", srv.URL+"/api/tv/1399", "")
	if code != http.StatusOK {
		t.Fatalf("status %d\n", code)
	}
	var item catalog.Item
	json.Unmarshal(body, &item)
	if item.ID != 0 || item.Title != catalog.UnknownTitle {
		t.Errorf("got %+v\n", item)
	}
}

func TestReviewRequiresSession(t *testing.T) {
	srv, done := testServer(nil)
	defer done()

	code, _ := call(t, "POST", srv.URL+"/api/movies/550/reviews",
		`{"content": "good", "rating": 4}`)
	if code != http.StatusUnauthorized {
		t.Errorf("status %d\n", code)
	}
	code, _ = call(t, "GET", srv.URL+"/api/session", "")
	if code != http.StatusUnauthorized {
		t.Errorf("session status %d\n", code)
	}
}

func TestReviewFlow(t *testing.T) {
	srv, done := testServer(map[string]string{
		"POST /api/auth/signin": `{"message": "ok",
			"user": {"userId": "u1", "name": "Ann", "email": "ann@example.com"}}`,
		"GET /api/movies/550": `{"id": 550, "title": "Fight Club",
			"reviews": [{"id": "r1", "author": "critic", "content": "great", "rating": 5}]}`,
		"POST /api/movies/reviews":      `{"review": {"id": "r2", "content": "good"}}`,
		"DELETE /api/movies/reviews/r2": ``,
	})
	defer done()

	code, body := call(t, "POST", srv.URL+"/api/signin",
		`{"email": "ann@example.com", "password": "secret"}`)
	if code != http.StatusOK {
		t.Fatalf("signin %d %s\n", code, body)
	}

	code, body = call(t, "POST", srv.URL+"/api/movies/550/reviews",
		`{"content": "good", "rating": 4}`)
	if code != http.StatusCreated {
		t.Fatalf("create %d %s\n", code, body)
	}
	var created review.Review
	json.Unmarshal(body, &created)
	if created.ID != "r2" || created.Author != "Ann" || created.MovieID != 550 {
		t.Errorf("created %+v\n", created)
	}

	var entries []review.Entry
	_, body = call(t, "GET", srv.URL+"/api/movies/550/reviews", "")
	json.Unmarshal(body, &entries)
	if len(entries) != 2 {
		t.Fatalf("entries %+v\n", entries)
	}

	code, _ = call(t, "DELETE", srv.URL+"/api/movies/550/reviews/r2", "")
	if code != http.StatusNoContent {
		t.Errorf("delete %d\n", code)
	}
	entries = nil
	_, body = call(t, "GET", srv.URL+"/api/movies/550/reviews", "")
	json.Unmarshal(body, &entries)
	if len(entries) != 1 || entries[0].Review.ID != "r1" {
		t.Errorf("entries %+v\n", entries)
	}

	code, _ = call(t, "DELETE", srv.URL+"/api/movies/550/reviews/nope", "")
	if code != http.StatusNotFound {
		t.Errorf("missing delete %d\n", code)
	}

	code, _ = call(t, "POST", srv.URL+"/api/signout", "")
	if code != http.StatusNoContent {
		t.Errorf("signout %d\n", code)
	}
	code, _ = call(t, "GET", srv.URL+"/api/session", "")
	if code != http.StatusUnauthorized {
		t.Errorf("session after signout %d\n", code)
	}
}

func TestFavorites(t *testing.T) {
	srv, done := testServer(nil)
	defer done()

	var ids []int
	code, body := call(t, "GET", srv.URL+"/api/favorites/tv", "")
	if code != http.StatusOK {
		t.Fatalf("status %d\n", code)
	}
	json.Unmarshal(body, &ids)
	if len(ids) != 3 || ids[0] != 1399 {
		t.Errorf("demo %v\n", ids)
	}

	var status favoriteStatus
	_, body = call(t, "POST", srv.URL+"/api/favorites/tv/1399", "")
	json.Unmarshal(body, &status)
	if status.Favorite {
		t.Errorf("toggle should remove %+v\n", status)
	}
	_, body = call(t, "PUT", srv.URL+"/api/favorites/actors/31", "")
	json.Unmarshal(body, &status)
	if !status.Favorite || status.Kind != catalog.KindActor {
		t.Errorf("add %+v\n", status)
	}

	ids = nil
	_, body = call(t, "GET", srv.URL+"/api/favorites/tv", "")
	json.Unmarshal(body, &ids)
	if len(ids) != 2 {
		t.Errorf("after toggle %v\n", ids)
	}

	code, _ = call(t, "GET", srv.URL+"/api/favorites/movies", "")
	if code != http.StatusBadRequest {
		t.Errorf("movie favorites %d\n", code)
	}
}

func TestSignUpValidation(t *testing.T) {
	srv, done := testServer(nil)
	defer done()

	code, body := call(t, "POST", srv.URL+"/api/signup",
		`{"name": "Ann", "email": "nope", "password": "short", "confirmPassword": "other"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status %d\n", code)
	}
	var resp errorResponse
	json.Unmarshal(body, &resp)
	for _, field := range []string{"email", "password", "confirmPassword"} {
		if _, ok := resp.Fields[field]; !ok {
			t.Errorf("missing %s in %+v\n", field, resp.Fields)
		}
	}

	code, _ = call(t, "POST", srv.URL+"/api/signup", `not json`)
	if code != http.StatusBadRequest {
		t.Errorf("bad body %d\n", code)
	}
}

func TestReviewWithoutDetail(t *testing.T) {
	srv, done := testServer(map[string]string{
		"POST /api/auth/signin": `{"message": "ok",
			"user": {"userId": "u1", "name": "Ann", "email": "ann@example.com"}}`,
		"POST /api/movies/reviews":      `{"review": {"id": "r9", "content": "lost"}}`,
		"PUT /api/movies/reviews/r9":    `{"message": "Review updated"}`,
		"GET /api/movies/reviews/r9/77": `!{"message": "quota exceeded"}`,
	})
	defer done()

	call(t, "POST", srv.URL+"/api/signin", `{"email": "ann@example.com", "password": "secret"}`)

	code, body := call(t, "POST", srv.URL+"/api/movies/77/reviews",
		`{"content": "lost", "rating": 3}`)
	if code != http.StatusCreated {
		t.Fatalf("create %d %s\n", code, body)
	}

	var entries []review.Entry
	_, body = call(t, "GET", srv.URL+"/api/movies/77/reviews", "")
	json.Unmarshal(body, &entries)
	if len(entries) != 1 || entries[0].Review.ID != "r9" {
		t.Fatalf("entries %+v\n", entries)
	}

	code, body = call(t, "PUT", srv.URL+"/api/movies/77/reviews/r9", `{"content": "found"}`)
	if code != http.StatusOK {
		t.Errorf("edit %d %s\n", code, body)
	}

	code, body = call(t, "GET", srv.URL+"/api/movies/77/reviews/r9/translate?language=fr", "")
	var resp errorResponse
	json.Unmarshal(body, &resp)
	if code != http.StatusBadGateway || resp.Error != review.ErrTranslate.Error() {
		t.Errorf("translate %d %+v\n", code, resp)
	}
}
