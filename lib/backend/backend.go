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

// Package backend is the transport for the first-party REST backend: movies,
// reviews, fantasy movies and auth. Payloads are returned in their raw shape.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/client"
	"github.com/defsub/marquee/lib/str"
	"github.com/defsub/marquee/lib/tmdb"
)

type Backend struct {
	config *config.Config
	client *client.Client
}

func NewBackend(config *config.Config) *Backend {
	return &Backend{
		config: config,
		client: client.NewClient(&config.Client),
	}
}

// Movie is the backend movie record. It mirrors TMDB field names but keeps
// credits, videos and images at the top level. Reviews are left raw since
// their field names vary between backend versions.
type Movie struct {
	ID                  int               `json:"id"`
	Title               string            `json:"title"`
	OriginalTitle       string            `json:"original_title"`
	Overview            string            `json:"overview"`
	PosterPath          string            `json:"poster_path"`
	BackdropPath        string            `json:"backdrop_path"`
	VoteAverage         str.Number        `json:"vote_average"`
	VoteCount           int               `json:"vote_count"`
	Popularity          str.Number        `json:"popularity"`
	ReleaseDate         string            `json:"release_date"`
	Runtime             int               `json:"runtime"`
	Genres              []tmdb.Genre      `json:"genres"`
	GenreIDs            []int             `json:"genre_ids"`
	ProductionCompanies []tmdb.Company    `json:"production_companies"`
	Reviews             []json.RawMessage `json:"reviews"`
	Cast                []tmdb.Cast       `json:"cast"`
	Crew                []tmdb.Crew       `json:"crew"`
	Videos              []tmdb.Video      `json:"videos"`
	Images              *tmdb.Images      `json:"images"`
	IsFantasy           bool              `json:"isFantasy"`
	CreatedAt           string            `json:"created_at"`
	CreatedBy           string            `json:"created_by"`
}

// Valid reports whether the payload identifies a movie at all.
func (m *Movie) Valid() bool {
	return m.ID != 0 || strings.TrimSpace(m.Title) != ""
}

type Translation struct {
	TranslatedText     string `json:"translatedText"`
	OriginalLanguage   string `json:"originalLanguage"`
	TranslatedLanguage string `json:"translatedLanguage"`
}

type User struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

func (b *Backend) endpoint(path string, params url.Values) string {
	u := strings.TrimSuffix(b.config.Backend.URL, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (b *Backend) MovieDetail(ctx context.Context, id int) (*Movie, error) {
	var result Movie
	err := b.client.GetJson(ctx, b.endpoint(fmt.Sprintf("/movies/%d", id), nil), &result)
	return &result, err
}

// PopularMovies returns one page of popular movies. The backend may answer
// with a bare array or a TMDB style page object.
func (b *Backend) PopularMovies(ctx context.Context, page int) ([]Movie, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", str.Itoa(page))
	var raw json.RawMessage
	err := b.client.GetJson(ctx, b.endpoint("/movies/popular", params), &raw)
	if err != nil {
		return nil, err
	}
	return decodeMovies(raw)
}

func decodeMovies(raw json.RawMessage) ([]Movie, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Movie{}, nil
	}
	var movies []Movie
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &movies); err != nil {
			return nil, fmt.Errorf("%w: %s", client.ErrDecode, err)
		}
	} else {
		var page struct {
			Results []Movie `json:"results"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: %s", client.ErrDecode, err)
		}
		movies = page.Results
	}
	if movies == nil {
		movies = []Movie{}
	}
	return movies, nil
}

func (b *Backend) CreateReview(ctx context.Context, body interface{}) (json.RawMessage, error) {
	var result json.RawMessage
	err := b.client.PostJson(ctx, b.endpoint("/movies/reviews", nil), body, &result)
	return result, err
}

func (b *Backend) UpdateReview(ctx context.Context, id string, body interface{}) (json.RawMessage, error) {
	var result json.RawMessage
	err := b.client.PutJson(ctx,
		b.endpoint("/movies/reviews/"+url.PathEscape(id), nil), body, &result)
	return result, err
}

// DeleteReview returns the response status; 204 carries no payload.
func (b *Backend) DeleteReview(ctx context.Context, id string) (int, error) {
	var result json.RawMessage
	return b.client.Delete(ctx, b.endpoint("/movies/reviews/"+url.PathEscape(id), nil), &result)
}

func (b *Backend) TranslateReview(ctx context.Context, id string, movieID int, language string) (*Translation, error) {
	params := url.Values{}
	params.Set("language", language)
	var result Translation
	err := b.client.GetJson(ctx,
		b.endpoint(fmt.Sprintf("/movies/reviews/%s/%d", url.PathEscape(id), movieID), params),
		&result)
	return &result, err
}

func (b *Backend) CreateFantasy(ctx context.Context, body interface{}) (*Movie, error) {
	var result Movie
	err := b.client.PostJson(ctx, b.endpoint("/movies/fantasy", nil), body, &result)
	return &result, err
}

func (b *Backend) upload(ctx context.Context, id int, field, filename string, r io.Reader) (*Movie, error) {
	var result Movie
	err := b.client.Upload(ctx,
		b.endpoint(fmt.Sprintf("/movies/fantasy/%d/%s", id, field), nil),
		field, filename, r, &result)
	return &result, err
}

func (b *Backend) UploadFantasyPoster(ctx context.Context, id int, filename string, r io.Reader) (*Movie, error) {
	return b.upload(ctx, id, "poster", filename, r)
}

func (b *Backend) UploadFantasyCast(ctx context.Context, id int, filename string, r io.Reader) (*Movie, error) {
	return b.upload(ctx, id, "cast", filename, r)
}

func (b *Backend) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	var result SignUpResponse
	err := b.client.PostJson(ctx, b.endpoint("/auth/signup", nil), req, &result)
	return &result, err
}

func (b *Backend) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	var result SignInResponse
	err := b.client.PostJson(ctx, b.endpoint("/auth/signin", nil), req, &result)
	return &result, err
}
