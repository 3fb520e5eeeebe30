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
	"errors"
	"strings"

	"github.com/defsub/marquee/review"
)

type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	KindActor Kind = "actor"
)

var (
	ErrKind = errors.New("unknown kind")
)

// ParseKind accepts the singular and plural names used in routes and the
// command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "tv", "tvs", "series":
		return KindTV, nil
	case "actor", "actors", "person", "people":
		return KindActor, nil
	}
	return "", ErrKind
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Company struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country,omitempty"`
}

type Cast struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

type Crew struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Department  string  `json:"department"`
	Job         string  `json:"job"`
	ProfilePath *string `json:"profile_path"`
}

type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at,omitempty"`
}

type Image struct {
	FilePath    string  `json:"file_path"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteAverage float64 `json:"vote_average"`
}

type Images struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
	Logos     []Image `json:"logos"`
}

// Credit is one role in a person's filmography.
type Credit struct {
	ID          int     `json:"id"`
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	Character   string  `json:"character,omitempty"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

// Item is the canonical record for a movie, series or actor. Every
// collection is non-nil once normalized.
type Item struct {
	ID                  int             `json:"id"`
	Kind                Kind            `json:"kind"`
	Title               string          `json:"title"`
	Overview            string          `json:"overview"`
	PosterPath          *string         `json:"poster_path"`
	BackdropPath        *string         `json:"backdrop_path"`
	VoteAverage         float64         `json:"vote_average"`
	VoteCount           int             `json:"vote_count"`
	Popularity          float64         `json:"popularity"`
	ReleaseDate         string          `json:"release_date"`
	Runtime             int             `json:"runtime"`
	Genres              []Genre         `json:"genres"`
	GenreIDs            []int           `json:"genre_ids"`
	ProductionCompanies []Company       `json:"production_companies"`
	Cast                []Cast          `json:"cast"`
	Crew                []Crew          `json:"crew"`
	Videos              []Video         `json:"videos"`
	Images              Images          `json:"images"`
	Reviews             []review.Review `json:"reviews"`
	Credits             []Credit        `json:"credits"`
	Seasons             int             `json:"number_of_seasons,omitempty"`
	Episodes            int             `json:"number_of_episodes,omitempty"`
	Department          string          `json:"known_for_department,omitempty"`
	Birthplace          string          `json:"place_of_birth,omitempty"`
	Fantasy             bool            `json:"isFantasy"`
	CreatedAt           string          `json:"created_at,omitempty"`
}

// HasGenre reports whether id is among the item's genres or genre ids.
func (i Item) HasGenre(id int) bool {
	for _, g := range i.Genres {
		if g.ID == id {
			return true
		}
	}
	for _, g := range i.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// Trailer returns the first YouTube trailer, if any.
func (i Item) Trailer() (Video, bool) {
	for _, v := range i.Videos {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return v, true
		}
	}
	return Video{}, false
}
