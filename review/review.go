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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/defsub/marquee/lib/str"
)

// Review is the canonical review. IDs are strings since the metadata
// provider uses opaque ids and the backend numeric ones.
type Review struct {
	ID        string   `json:"id"`
	MovieID   int      `json:"movie_id"`
	Author    string   `json:"author"`
	Content   string   `json:"content"`
	Rating    *float64 `json:"rating,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// fieldAliases maps each canonical field to the names used for it by the
// different backend versions, in order of preference.
var fieldAliases = map[string][]string{
	"id":         {"id", "reviewId", "ID"},
	"movie_id":   {"MovieId", "movieId", "movie_id"},
	"author":     {"author", "Author"},
	"content":    {"content", "Content"},
	"rating":     {"rating", "Rating"},
	"created_at": {"created_at", "CreatedAt", "createdAt"},
}

func lookup(fields map[string]json.RawMessage, canonical string) (json.RawMessage, bool) {
	for _, name := range fieldAliases[canonical] {
		v, ok := fields[name]
		if ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// text decodes a JSON string or number as a string.
func text(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

func (r *Review) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = Review{}
	if v, ok := lookup(fields, "id"); ok {
		r.ID = text(v)
	}
	if v, ok := lookup(fields, "movie_id"); ok {
		r.MovieID, _ = strconv.Atoi(strings.TrimSpace(text(v)))
	}
	if v, ok := lookup(fields, "author"); ok {
		r.Author = text(v)
	}
	if v, ok := lookup(fields, "content"); ok {
		r.Content = text(v)
	}
	if v, ok := lookup(fields, "rating"); ok {
		var n str.Number
		json.Unmarshal(v, &n)
		rating := n.Float64()
		r.Rating = &rating
	}
	if v, ok := lookup(fields, "created_at"); ok {
		r.CreatedAt = text(v)
	}
	return nil
}

// envelopes are the wrapper keys backends use around a returned review.
var envelopes = []string{"updatedReview", "review", "data"}

// decodeResponse extracts a review from a create or update response. The
// review may be the payload itself or wrapped in an envelope.
func decodeResponse(raw json.RawMessage) (Review, bool) {
	var r Review
	if isNull(raw) {
		return r, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return r, false
	}
	for _, k := range envelopes {
		if v, ok := fields[k]; ok && !isNull(v) && bytes.HasPrefix(bytes.TrimSpace(v), []byte("{")) {
			raw = v
			break
		}
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, false
	}
	return r, r.ID != ""
}

// Decode converts a raw backend review, whichever field names it uses.
func Decode(raw json.RawMessage) (Review, error) {
	var r Review
	err := json.Unmarshal(raw, &r)
	return r, err
}
