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
	"strings"
	"sync"
	"time"

	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/valid"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrPending   = errors.New("review has a request in flight")
	ErrNoMovie   = errors.New("review has no movie")
	ErrTranslate = errors.New("translation failed")
)

type State string

const (
	StateCommitted State = "committed"
	StatePending   State = "pending"
	StateFailed    State = "failed"
)

// Entry is a review as shown to the user. Key is local and stable across
// the pending and committed states; Review.ID is only known after the
// backend acknowledges a create.
type Entry struct {
	Key    string `json:"key"`
	Review Review `json:"review"`
	State  State  `json:"state"`
	Error  string `json:"error,omitempty"`

	prior *Review
}

type Backend interface {
	CreateReview(ctx context.Context, body interface{}) (json.RawMessage, error)
	UpdateReview(ctx context.Context, id string, body interface{}) (json.RawMessage, error)
	DeleteReview(ctx context.Context, id string) (int, error)
	TranslateReview(ctx context.Context, id string, movieID int, language string) (*backend.Translation, error)
}

type Input struct {
	Author  string  `json:"author" validate:"required"`
	Content string  `json:"content" validate:"required"`
	Rating  float64 `json:"rating" validate:"gte=1,lte=5"`
}

// Update is a partial edit; nil fields are left unchanged.
type Update struct {
	Content *string  `json:"content,omitempty"`
	Rating  *float64 `json:"rating,omitempty"`
}

func (u Update) validate() error {
	e := make(valid.Errors)
	if u.Content == nil && u.Rating == nil {
		e.Add("input", "nothing to update")
	}
	if u.Content != nil && strings.TrimSpace(*u.Content) == "" {
		e.Add("content", "is required")
	}
	if u.Rating != nil && (*u.Rating < 1 || *u.Rating > 5) {
		e.Add("rating", "must be between 1 and 5")
	}
	return e.Err()
}

// Thread is the review list of one movie. Mutations are optimistic: the
// entry changes immediately in pending state and is committed or reverted
// when the backend answers.
type Thread struct {
	mu      sync.Mutex
	backend Backend
	movieID int
	entries []*Entry
}

func NewThread(backend Backend, movieID int, reviews []Review) *Thread {
	t := &Thread{backend: backend, movieID: movieID}
	for _, r := range reviews {
		t.entries = append(t.entries, &Entry{
			Key:    uuid.New().String(),
			Review: r,
			State:  StateCommitted,
		})
	}
	return t
}

// Merge adds the reviews whose IDs are not already in the thread, ahead of
// any local entries.
func (t *Thread) Merge(reviews []Review) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var added []*Entry
	for _, r := range reviews {
		if r.ID != "" {
			if _, e := t.find(r.ID); e != nil {
				continue
			}
		}
		added = append(added, &Entry{
			Key:    uuid.New().String(),
			Review: r,
			State:  StateCommitted,
		})
	}
	t.entries = append(added, t.entries...)
}

func (t *Thread) MovieID() int {
	return t.movieID
}

// Reviews returns every review in the thread. Pending creates and edits
// show their local content and a pending delete keeps the review until the
// backend acknowledges it. Use Entries for the state of each.
func (t *Thread) Reviews() []Review {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Review, len(t.entries))
	for i, e := range t.entries {
		result[i] = e.Review
	}
	return result
}

// Entries returns a copy of every entry with its state.
func (t *Thread) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		result[i] = *e
		result[i].prior = nil
	}
	return result
}

func (t *Thread) find(id string) (int, *Entry) {
	for i, e := range t.entries {
		if e.Review.ID == id {
			return i, e
		}
	}
	return -1, nil
}

func (t *Thread) findKey(key string) (int, *Entry) {
	for i, e := range t.entries {
		if e.Key == key {
			return i, e
		}
	}
	return -1, nil
}

func (t *Thread) remove(key string) {
	if i, _ := t.findKey(key); i >= 0 {
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
	}
}

// claim marks the entry for id as pending and saves a copy to revert to.
func (t *Thread) claim(id string) (*Entry, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, e := t.find(id)
	if e == nil {
		return nil, ErrNotFound
	}
	if e.State == StatePending {
		return nil, ErrPending
	}
	prior := e.Review
	e.prior = &prior
	e.State = StatePending
	e.Error = ""
	return e, nil
}

func (t *Thread) revert(e *Entry, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.prior != nil {
		e.Review = *e.prior
		e.prior = nil
	}
	e.State = StateFailed
	e.Error = err.Error()
}

// overlay copies the non-empty fields of src over dst.
func overlay(dst, src Review) Review {
	if src.ID != "" {
		dst.ID = src.ID
	}
	if src.MovieID != 0 {
		dst.MovieID = src.MovieID
	}
	if src.Author != "" {
		dst.Author = src.Author
	}
	if src.Content != "" {
		dst.Content = src.Content
	}
	if src.Rating != nil {
		dst.Rating = src.Rating
	}
	if src.CreatedAt != "" {
		dst.CreatedAt = src.CreatedAt
	}
	return dst
}

func (t *Thread) Create(ctx context.Context, in Input) (Review, error) {
	in.Author = strings.TrimSpace(in.Author)
	in.Content = strings.TrimSpace(in.Content)
	if err := valid.Struct(in).Err(); err != nil {
		return Review{}, err
	}

	rating := in.Rating
	local := Review{
		MovieID:   t.movieID,
		Author:    in.Author,
		Content:   in.Content,
		Rating:    &rating,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	e := &Entry{Key: uuid.New().String(), Review: local, State: StatePending}
	t.mu.Lock()
	t.entries = append(t.entries, e)
	t.mu.Unlock()

	body := map[string]interface{}{
		"movieId": t.movieID,
		"author":  in.Author,
		"content": in.Content,
		"rating":  in.Rating,
	}
	raw, err := t.backend.CreateReview(ctx, body)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		log.Printf("create review for movie %d: %s\n", t.movieID, err)
		t.remove(e.Key)
		return Review{}, err
	}
	if srv, ok := decodeResponse(raw); ok {
		e.Review = overlay(local, srv)
	}
	e.State = StateCommitted
	return e.Review, nil
}

func mergePartial(prior Review, u Update) (Review, error) {
	original, err := json.Marshal(prior)
	if err != nil {
		return prior, err
	}
	patch, err := json.Marshal(u)
	if err != nil {
		return prior, err
	}
	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return prior, err
	}
	var result Review
	if err := json.Unmarshal(merged, &result); err != nil {
		return prior, err
	}
	return result, nil
}

func (t *Thread) Edit(ctx context.Context, id string, u Update) (Review, error) {
	if u.Content != nil {
		content := strings.TrimSpace(*u.Content)
		u.Content = &content
	}
	if err := u.validate(); err != nil {
		return Review{}, err
	}
	e, err := t.claim(id)
	if err != nil {
		return Review{}, err
	}
	prior := *e.prior

	merged, err := mergePartial(prior, u)
	if err != nil {
		t.revert(e, err)
		return Review{}, err
	}
	t.mu.Lock()
	e.Review = merged
	t.mu.Unlock()

	raw, err := t.backend.UpdateReview(ctx, id, u)
	if err != nil {
		log.Printf("update review %s: %s\n", id, err)
		t.revert(e, err)
		return Review{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if srv, ok := decodeResponse(raw); ok && srv.ID == id {
		e.Review = overlay(merged, srv)
	}
	e.prior = nil
	e.State = StateCommitted
	return e.Review, nil
}

// Delete removes the review once the backend acknowledges it.
func (t *Thread) Delete(ctx context.Context, id string) error {
	e, err := t.claim(id)
	if err != nil {
		return err
	}
	status, err := t.backend.DeleteReview(ctx, id)
	if err != nil {
		log.Printf("delete review %s: %s\n", id, err)
		t.revert(e, err)
		return err
	}
	log.Printf("deleted review %s (%d)\n", id, status)
	t.mu.Lock()
	t.remove(e.Key)
	t.mu.Unlock()
	return nil
}

// Translate returns the review text in language. The stored review is left
// unchanged.
func (t *Thread) Translate(ctx context.Context, id, language string) (string, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		return "", valid.Errors{"language": "is required"}
	}
	if id == "" {
		return "", ErrNotFound
	}
	t.mu.Lock()
	_, e := t.find(id)
	var movieID int
	if e != nil {
		movieID = e.Review.MovieID
	}
	t.mu.Unlock()
	if e == nil {
		return "", ErrNotFound
	}
	if movieID == 0 {
		movieID = t.movieID
	}
	if movieID == 0 {
		return "", ErrNoMovie
	}
	tr, err := t.backend.TranslateReview(ctx, id, movieID, language)
	if err != nil {
		log.Printf("translate review %s: %s\n", id, err)
		return "", ErrTranslate
	}
	return tr.TranslatedText, nil
}
