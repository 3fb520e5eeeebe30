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
	"strings"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/date"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/tmdb"
	"github.com/defsub/marquee/review"
)

const (
	UnknownTitle = "Unknown Title"
	NoOverview   = "No overview available."

	defaultImageBase = "https://image.tmdb.org/t/p/"
	defaultImageSize = "w500"
)

// Normalizer converts raw provider and backend payloads to Items. Each
// conversion is total: any payload, including an empty one, produces a
// usable Item.
type Normalizer struct {
	imagePrefix string
}

func NewNormalizer(images config.ImagesConfig) *Normalizer {
	base, size := images.BaseURL, images.Size
	if base == "" {
		base = defaultImageBase
	}
	if size == "" {
		size = defaultImageSize
	}
	return &Normalizer{imagePrefix: strings.TrimSuffix(base, "/") + "/" + strings.Trim(size, "/")}
}

var defaultNormalizer = NewNormalizer(config.ImagesConfig{})

// Placeholder is the item shown when no source could provide a record.
func Placeholder(kind Kind) Item {
	switch kind {
	case KindTV:
		return defaultNormalizer.FromTMDBTV(&tmdb.TV{})
	case KindActor:
		return defaultNormalizer.FromTMDBPerson(&tmdb.Person{})
	}
	return defaultNormalizer.FromTMDBMovie(&tmdb.Movie{})
}

// ImagePath returns an absolute image URL for path. Absolute and protocol
// relative URLs pass through; bare provider paths get the sized image
// prefix; empty paths have no image.
func (n *Normalizer) ImagePath(path string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "//") {
		return &path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := n.imagePrefix + path
	return &url
}

func title(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return UnknownTitle
}

func overview(v string) string {
	if strings.TrimSpace(v) == "" {
		return NoOverview
	}
	return v
}

func releaseDate(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return date.Unknown
}

func (n *Normalizer) genres(src []tmdb.Genre) []Genre {
	result := make([]Genre, 0, len(src))
	for _, g := range src {
		result = append(result, Genre{ID: g.ID, Name: g.Name})
	}
	return result
}

func genreIDs(src []int, genres []Genre) []int {
	result := make([]int, 0, len(src))
	result = append(result, src...)
	if len(result) == 0 {
		for _, g := range genres {
			result = append(result, g.ID)
		}
	}
	return result
}

func (n *Normalizer) companies(src []tmdb.Company) []Company {
	result := make([]Company, 0, len(src))
	for _, c := range src {
		result = append(result, Company{
			ID:            c.ID,
			Name:          c.Name,
			LogoPath:      n.ImagePath(c.LogoPath),
			OriginCountry: c.OriginCountry,
		})
	}
	return result
}

func (n *Normalizer) cast(src []tmdb.Cast) []Cast {
	result := make([]Cast, 0, len(src))
	for _, c := range src {
		result = append(result, Cast{
			ID:          c.ID,
			Name:        title(c.Name, c.OriginalName),
			Character:   c.Character,
			ProfilePath: n.ImagePath(c.ProfilePath),
			Order:       c.Order,
		})
	}
	return result
}

func (n *Normalizer) crew(src []tmdb.Crew) []Crew {
	result := make([]Crew, 0, len(src))
	for _, c := range src {
		result = append(result, Crew{
			ID:          c.ID,
			Name:        title(c.Name, c.OriginalName),
			Department:  c.Department,
			Job:         c.Job,
			ProfilePath: n.ImagePath(c.ProfilePath),
		})
	}
	return result
}

func videos(src []tmdb.Video) []Video {
	result := make([]Video, 0, len(src))
	for _, v := range src {
		result = append(result, Video{
			ID:          v.ID,
			Key:         v.Key,
			Name:        v.Name,
			Site:        v.Site,
			Type:        v.Type,
			Official:    v.Official,
			PublishedAt: v.PublishedAt,
		})
	}
	return result
}

func (n *Normalizer) imageList(src []tmdb.Image) []Image {
	result := make([]Image, 0, len(src))
	for _, i := range src {
		path := n.ImagePath(i.FilePath)
		if path == nil {
			continue
		}
		result = append(result, Image{
			FilePath:    *path,
			Width:       i.Width,
			Height:      i.Height,
			AspectRatio: i.AspectRatio,
			VoteAverage: i.VoteAverage.Float64(),
		})
	}
	return result
}

func (n *Normalizer) images(src *tmdb.Images) Images {
	if src == nil {
		src = &tmdb.Images{}
	}
	return Images{
		Backdrops: n.imageList(src.Backdrops),
		Posters:   n.imageList(src.Posters),
		Logos:     n.imageList(src.Logos),
	}
}

func tmdbReviews(movieID int, src []tmdb.Review) []review.Review {
	result := make([]review.Review, 0, len(src))
	for _, r := range src {
		rv := review.Review{
			ID:        r.ID,
			MovieID:   movieID,
			Author:    title(r.Author, r.AuthorDetails.Username, r.AuthorDetails.Name),
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		}
		if r.AuthorDetails.Rating != nil {
			v := r.AuthorDetails.Rating.Float64()
			rv.Rating = &v
		}
		result = append(result, rv)
	}
	return result
}

func (n *Normalizer) FromBackendMovie(m *backend.Movie) Item {
	item := Item{
		ID:                  m.ID,
		Kind:                KindMovie,
		Title:               title(m.Title, m.OriginalTitle),
		Overview:            overview(m.Overview),
		PosterPath:          n.ImagePath(m.PosterPath),
		BackdropPath:        n.ImagePath(m.BackdropPath),
		VoteAverage:         m.VoteAverage.Float64(),
		VoteCount:           m.VoteCount,
		Popularity:          m.Popularity.Float64(),
		ReleaseDate:         releaseDate(m.ReleaseDate),
		Runtime:             m.Runtime,
		Genres:              n.genres(m.Genres),
		ProductionCompanies: n.companies(m.ProductionCompanies),
		Cast:                n.cast(m.Cast),
		Crew:                n.crew(m.Crew),
		Videos:              videos(m.Videos),
		Images:              n.images(m.Images),
		Reviews:             make([]review.Review, 0, len(m.Reviews)),
		Credits:             []Credit{},
		Fantasy:             m.IsFantasy,
		CreatedAt:           m.CreatedAt,
	}
	item.GenreIDs = genreIDs(m.GenreIDs, item.Genres)
	for _, raw := range m.Reviews {
		r, err := review.Decode(raw)
		if err != nil {
			log.Printf("movie %d: skipping review: %s\n", m.ID, err)
			continue
		}
		if r.MovieID == 0 {
			r.MovieID = m.ID
		}
		item.Reviews = append(item.Reviews, r)
	}
	return item
}

func (n *Normalizer) FromTMDBMovie(m *tmdb.Movie) Item {
	credits := m.Credits
	if credits == nil {
		credits = &tmdb.Credits{}
	}
	item := Item{
		ID:                  m.ID,
		Kind:                KindMovie,
		Title:               title(m.Title, m.OriginalTitle),
		Overview:            overview(m.Overview),
		PosterPath:          n.ImagePath(m.PosterPath),
		BackdropPath:        n.ImagePath(m.BackdropPath),
		VoteAverage:         m.VoteAverage.Float64(),
		VoteCount:           m.VoteCount,
		Popularity:          m.Popularity.Float64(),
		ReleaseDate:         releaseDate(m.ReleaseDate),
		Runtime:             m.Runtime,
		Genres:              n.genres(m.Genres),
		ProductionCompanies: n.companies(m.ProductionCompanies),
		Cast:                n.cast(credits.Cast),
		Crew:                n.crew(credits.Crew),
		Videos:              videos(m.VideoList()),
		Images:              n.images(m.Images),
		Reviews:             tmdbReviews(m.ID, m.ReviewList()),
		Credits:             []Credit{},
	}
	item.GenreIDs = genreIDs(nil, item.Genres)
	return item
}

func (n *Normalizer) FromTMDBMovieResult(m *tmdb.MovieResult) Item {
	return Item{
		ID:                  m.ID,
		Kind:                KindMovie,
		Title:               title(m.Title, m.OriginalTitle),
		Overview:            overview(m.Overview),
		PosterPath:          n.ImagePath(m.PosterPath),
		BackdropPath:        n.ImagePath(m.BackdropPath),
		VoteAverage:         m.VoteAverage.Float64(),
		VoteCount:           m.VoteCount,
		Popularity:          m.Popularity.Float64(),
		ReleaseDate:         releaseDate(m.ReleaseDate),
		Genres:              []Genre{},
		GenreIDs:            genreIDs(m.GenreIDs, nil),
		ProductionCompanies: []Company{},
		Cast:                []Cast{},
		Crew:                []Crew{},
		Videos:              []Video{},
		Images:              n.images(nil),
		Reviews:             []review.Review{},
		Credits:             []Credit{},
	}
}

func (n *Normalizer) FromTMDBTV(t *tmdb.TV) Item {
	credits := t.Credits
	if credits == nil {
		credits = &tmdb.Credits{}
	}
	item := Item{
		ID:                  t.ID,
		Kind:                KindTV,
		Title:               title(t.Name, t.OriginalName),
		Overview:            overview(t.Overview),
		PosterPath:          n.ImagePath(t.PosterPath),
		BackdropPath:        n.ImagePath(t.BackdropPath),
		VoteAverage:         t.VoteAverage.Float64(),
		VoteCount:           t.VoteCount,
		Popularity:          t.Popularity.Float64(),
		ReleaseDate:         releaseDate(t.FirstAirDate),
		Genres:              n.genres(t.Genres),
		ProductionCompanies: n.companies(t.ProductionCompanies),
		Cast:                n.cast(credits.Cast),
		Crew:                n.crew(credits.Crew),
		Videos:              videos(t.VideoList()),
		Images:              n.images(t.Images),
		Reviews:             []review.Review{},
		Credits:             []Credit{},
		Seasons:             t.NumberOfSeasons,
		Episodes:            t.NumberOfEpisodes,
	}
	if len(t.EpisodeRunTime) > 0 {
		item.Runtime = t.EpisodeRunTime[0]
	}
	item.GenreIDs = genreIDs(t.GenreIDs, item.Genres)
	return item
}

func (n *Normalizer) credit(c tmdb.Credit) Credit {
	kind := KindMovie
	if c.MediaType == "tv" {
		kind = KindTV
	}
	return Credit{
		ID:          c.ID,
		Kind:        kind,
		Title:       title(c.Title, c.Name),
		Character:   c.Character,
		PosterPath:  n.ImagePath(c.PosterPath),
		ReleaseDate: releaseDate(c.ReleaseDate, c.FirstAirDate),
		VoteAverage: c.VoteAverage.Float64(),
	}
}

func (n *Normalizer) personItem(id int, name, profile string, popularity float64) Item {
	return Item{
		ID:                  id,
		Kind:                KindActor,
		Title:               title(name),
		Overview:            NoOverview,
		PosterPath:          n.ImagePath(profile),
		Popularity:          popularity,
		ReleaseDate:         date.Unknown,
		Genres:              []Genre{},
		GenreIDs:            []int{},
		ProductionCompanies: []Company{},
		Cast:                []Cast{},
		Crew:                []Crew{},
		Videos:              []Video{},
		Images:              n.images(nil),
		Reviews:             []review.Review{},
		Credits:             []Credit{},
	}
}

func (n *Normalizer) FromTMDBPerson(p *tmdb.Person) Item {
	item := n.personItem(p.ID, p.Name, p.ProfilePath, p.Popularity.Float64())
	item.Overview = overview(p.Biography)
	item.ReleaseDate = releaseDate(p.Birthday)
	item.Department = p.KnownForDepartment
	item.Birthplace = p.Birthplace
	for _, c := range p.CastCredits() {
		item.Credits = append(item.Credits, n.credit(c))
	}
	return item
}

func (n *Normalizer) FromTMDBPersonResult(p *tmdb.PersonResult) Item {
	item := n.personItem(p.ID, p.Name, p.ProfilePath, p.Popularity.Float64())
	item.Department = p.KnownForDepartment
	for _, m := range p.KnownFor {
		item.Credits = append(item.Credits, Credit{
			ID:          m.ID,
			Kind:        KindMovie,
			Title:       title(m.Title, m.OriginalTitle),
			PosterPath:  n.ImagePath(m.PosterPath),
			ReleaseDate: releaseDate(m.ReleaseDate),
			VoteAverage: m.VoteAverage.Float64(),
		})
	}
	return item
}
