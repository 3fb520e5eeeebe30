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

package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/client"
	"github.com/defsub/marquee/lib/valid"
)

func testBackend(handler http.HandlerFunc) (*backend.Backend, *int, func()) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	config := config.DefaultConfig()
	config.Backend.URL = ts.URL
	config.Client.Retries = 0
	return backend.NewBackend(config), &calls, ts.Close
}

func rating(f float64) *float64 {
	return &f
}

func TestAliases(t *testing.T) {
	variants := []string{
		`{"id": 3, "MovieId": 550, "author": "ann", "content": "good", "rating": 4, "created_at": "2024-01-01"}`,
		`{"reviewId": "3", "movieId": "550", "Author": "ann", "Content": "good", "Rating": "4", "createdAt": "2024-01-01"}`,
		`{"ID": 3, "movie_id": 550, "author": "ann", "content": "good", "rating": 4.0, "CreatedAt": "2024-01-01"}`,
	}
	for _, v := range variants {
		r, err := Decode(json.RawMessage(v))
		if err != nil {
			t.Fatalf("Decode %s\n", err)
		}
		if r.ID != "3" || r.MovieID != 550 || r.Author != "ann" || r.Content != "good" ||
			r.Rating == nil || *r.Rating != 4 || r.CreatedAt != "2024-01-01" {
			t.Errorf("%s -> %+v\n", v, r)
		}
	}

	r, _ := Decode(json.RawMessage(`{"id": 1, "rating": null}`))
	if r.Rating != nil {
		t.Errorf("null rating should be absent\n")
	}
}

func TestDecodeResponse(t *testing.T) {
	r, ok := decodeResponse(json.RawMessage(`{"message": "ok", "updatedReview": {"id": 4, "content": "x"}}`))
	if !ok || r.ID != "4" || r.Content != "x" {
		t.Errorf("envelope %+v %v\n", r, ok)
	}
	r, ok = decodeResponse(json.RawMessage(`{"message": "created", "reviewId": 9}`))
	if !ok || r.ID != "9" {
		t.Errorf("reviewId %+v %v\n", r, ok)
	}
	if _, ok = decodeResponse(json.RawMessage(`{"message": "updated"}`)); ok {
		t.Errorf("message only should not carry a review\n")
	}
	if _, ok = decodeResponse(nil); ok {
		t.Errorf("empty should not carry a review\n")
	}
}

func TestCreate(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["movieId"] != float64(550) || body["rating"] != float64(5) {
			t.Errorf("body %+v\n", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message": "Review created", "reviewId": 9}`))
	})
	defer done()

	th := NewThread(b, 550, nil)
	r, err := th.Create(context.Background(), Input{Author: " ann ", Content: "great", Rating: 5})
	if err != nil {
		t.Fatalf("Create %s\n", err)
	}
	if r.ID != "9" || r.Author != "ann" || r.MovieID != 550 {
		t.Errorf("got %+v\n", r)
	}
	entries := th.Entries()
	if len(entries) != 1 || entries[0].State != StateCommitted {
		t.Errorf("entries %+v\n", entries)
	}
}

func TestCreateValidation(t *testing.T) {
	b, calls, done := testBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer done()

	th := NewThread(b, 550, nil)
	inputs := []Input{
		{Author: "ann", Content: "ok", Rating: 0},
		{Author: "ann", Content: "ok", Rating: 6},
		{Author: "ann", Content: "   ", Rating: 3},
		{Author: "", Content: "ok", Rating: 3},
	}
	for _, in := range inputs {
		_, err := th.Create(context.Background(), in)
		if !errors.Is(err, valid.ErrInvalid) {
			t.Errorf("%+v expected invalid got %v\n", in, err)
		}
	}
	if *calls != 0 {
		t.Errorf("no requests expected, got %d\n", *calls)
	}
	if len(th.Entries()) != 0 {
		t.Errorf("expected no entries\n")
	}
}

func TestCreateFailureReverts(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Movie not found"}`))
	})
	defer done()

	th := NewThread(b, 550, nil)
	_, err := th.Create(context.Background(), Input{Author: "ann", Content: "x", Rating: 3})
	if err == nil {
		t.Fatalf("expected error\n")
	}
	if client.Message(err) != "Movie not found" {
		t.Errorf("message %s\n", client.Message(err))
	}
	if len(th.Entries()) != 0 {
		t.Errorf("failed create should leave no entry\n")
	}
}

func existing() []Review {
	return []Review{{ID: "1", MovieID: 550, Author: "ann", Content: "old", Rating: rating(4)}}
}

func TestEditPartialMerge(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/movies/reviews/1" {
			t.Errorf("%s %s\n", r.Method, r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["rating"]; ok {
			t.Errorf("rating should be omitted %+v\n", body)
		}
		w.Write([]byte(`{"message": "Review updated"}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	content := "new"
	r, err := th.Edit(context.Background(), "1", Update{Content: &content})
	if err != nil {
		t.Fatalf("Edit %s\n", err)
	}
	if r.Content != "new" || r.Author != "ann" || r.Rating == nil || *r.Rating != 4 {
		t.Errorf("got %+v\n", r)
	}
	if th.Reviews()[0].Content != "new" {
		t.Errorf("thread not updated\n")
	}
}

func TestEditServerReview(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "ok", "updatedReview": {"reviewId": 1, "content": "server", "rating": 2}}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	content := "mine"
	r, err := th.Edit(context.Background(), "1", Update{Content: &content})
	if err != nil {
		t.Fatalf("Edit %s\n", err)
	}
	if r.Content != "server" || *r.Rating != 2 || r.Author != "ann" {
		t.Errorf("got %+v\n", r)
	}
}

func TestEditFailureReverts(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer done()

	th := NewThread(b, 550, existing())
	content := "new"
	if _, err := th.Edit(context.Background(), "1", Update{Content: &content}); err == nil {
		t.Fatalf("expected error\n")
	}
	entries := th.Entries()
	if entries[0].Review.Content != "old" || entries[0].State != StateFailed {
		t.Errorf("got %+v\n", entries[0])
	}
}

func TestEditValidation(t *testing.T) {
	b, calls, done := testBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer done()

	th := NewThread(b, 550, existing())
	empty := " "
	updates := []Update{{}, {Content: &empty}, {Rating: rating(0)}}
	for _, u := range updates {
		if _, err := th.Edit(context.Background(), "1", u); !errors.Is(err, valid.ErrInvalid) {
			t.Errorf("expected invalid got %v\n", err)
		}
	}
	if _, err := th.Edit(context.Background(), "2", Update{Rating: rating(3)}); err != ErrNotFound {
		t.Errorf("expected not found got %v\n", err)
	}
	if *calls != 0 {
		t.Errorf("no requests expected\n")
	}
}

func TestDeleteNoContent(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	defer done()

	th := NewThread(b, 550, existing())
	if err := th.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete %s\n", err)
	}
	if len(th.Reviews()) != 0 {
		t.Errorf("expected removed\n")
	}
}

func TestDeleteFailureReverts(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "not yours"}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	if err := th.Delete(context.Background(), "1"); client.Message(err) != "not yours" {
		t.Errorf("got %v\n", err)
	}
	reviews := th.Reviews()
	if len(reviews) != 1 || reviews[0].Content != "old" {
		t.Errorf("expected review kept %+v\n", reviews)
	}
}

func TestTranslate(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/reviews/1/550" || r.URL.Query().Get("language") != "es" {
			t.Errorf("url %s\n", r.URL)
		}
		w.Write([]byte(`{"translatedText": "viejo"}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	text, err := th.Translate(context.Background(), "1", "es")
	if err != nil || text != "viejo" {
		t.Errorf("got %s %v\n", text, err)
	}
	if th.Reviews()[0].Content != "old" {
		t.Errorf("translate must not modify the review\n")
	}
}

func TestDeleteInFlightKeepsReview(t *testing.T) {
	started := make(chan bool)
	release := make(chan bool)
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		started <- true
		<-release
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer done()

	th := NewThread(b, 550, existing())
	result := make(chan error)
	go func() {
		result <- th.Delete(context.Background(), "1")
	}()
	<-started

	reviews := th.Reviews()
	if len(reviews) != 1 || reviews[0].Content != "old" {
		t.Errorf("review should stay listed while deleting %+v\n", reviews)
	}
	if entries := th.Entries(); entries[0].State != StatePending {
		t.Errorf("expected pending %+v\n", entries[0])
	}

	close(release)
	if err := <-result; err == nil {
		t.Fatalf("expected error\n")
	}
	if len(th.Reviews()) != 1 {
		t.Errorf("failed delete should keep the review\n")
	}
}

func TestEditInFlightShowsLocalContent(t *testing.T) {
	started := make(chan bool)
	release := make(chan bool)
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		started <- true
		<-release
		w.Write([]byte(`{"message": "Review updated"}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	result := make(chan error)
	go func() {
		content := "new"
		_, err := th.Edit(context.Background(), "1", Update{Content: &content})
		result <- err
	}()
	<-started

	reviews := th.Reviews()
	if len(reviews) != 1 || reviews[0].Content != "new" {
		t.Errorf("expected local edit %+v\n", reviews)
	}

	close(release)
	if err := <-result; err != nil {
		t.Fatalf("Edit %s\n", err)
	}
	if th.Entries()[0].State != StateCommitted {
		t.Errorf("expected committed\n")
	}
}

func TestTranslateFailure(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "quota exceeded"}`))
	})
	defer done()

	th := NewThread(b, 550, existing())
	_, err := th.Translate(context.Background(), "1", "fr")
	if err != ErrTranslate {
		t.Errorf("expected generic error got %v\n", err)
	}
}

func TestMerge(t *testing.T) {
	b, _, done := testBackend(func(w http.ResponseWriter, r *http.Request) {})
	defer done()

	th := NewThread(b, 550, []Review{{ID: "9", Content: "mine"}})
	th.Merge(append(existing(), Review{ID: "9", Content: "server"}))
	reviews := th.Reviews()
	if len(reviews) != 2 || reviews[0].ID != "1" || reviews[1].Content != "mine" {
		t.Errorf("got %+v\n", reviews)
	}
}
