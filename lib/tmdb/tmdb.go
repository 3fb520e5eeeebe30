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

package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/client"
	"github.com/defsub/marquee/lib/str"
)

type TMDB struct {
	config *config.Config
	client *client.Client
}

func NewTMDB(config *config.Config) *TMDB {
	return &TMDB{
		config: config,
		client: client.NewClient(&config.Client),
	}
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Company struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

type Cast struct {
	ID           int    `json:"id"` // unique person ID
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	ProfilePath  string `json:"profile_path"`
	Character    string `json:"character"`
	Order        int    `json:"order"`
}

type Crew struct {
	ID           int    `json:"id"` // unique person ID
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	ProfilePath  string `json:"profile_path"`
	Department   string `json:"department"`
	Job          string `json:"job"`
}

type Credits struct {
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

type Video struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Size        int    `json:"size"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

type videoList struct {
	Results []Video `json:"results"`
}

type Image struct {
	FilePath    string     `json:"file_path"`
	AspectRatio float64    `json:"aspect_ratio"`
	Height      int        `json:"height"`
	Width       int        `json:"width"`
	Language    string     `json:"iso_639_1"`
	VoteAverage str.Number `json:"vote_average"`
	VoteCount   int        `json:"vote_count"`
}

type Images struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
	Logos     []Image `json:"logos"`
}

type AuthorDetails struct {
	Name       string      `json:"name"`
	Username   string      `json:"username"`
	AvatarPath string      `json:"avatar_path"`
	Rating     *str.Number `json:"rating"`
}

type Review struct {
	ID            string        `json:"id"`
	Author        string        `json:"author"`
	AuthorDetails AuthorDetails `json:"author_details"`
	Content       string        `json:"content"`
	CreatedAt     string        `json:"created_at"`
	URL           string        `json:"url"`
}

type reviewPage struct {
	Page    int      `json:"page"`
	Results []Review `json:"results"`
}

type Movie struct {
	ID                  int         `json:"id"` // unique movie ID
	IMDB_ID             string      `json:"imdb_id"`
	Adult               bool        `json:"adult"`
	BackdropPath        string      `json:"backdrop_path"`
	Genres              []Genre     `json:"genres"`
	OriginalLanguage    string      `json:"original_language"`
	OriginalTitle       string      `json:"original_title"`
	Overview            string      `json:"overview"`
	Popularity          str.Number  `json:"popularity"`
	PosterPath          string      `json:"poster_path"`
	ProductionCompanies []Company   `json:"production_companies"`
	ReleaseDate         string      `json:"release_date"`
	Tagline             string      `json:"tagline"`
	Title               string      `json:"title"`
	Video               bool        `json:"video"`
	VoteAverage         str.Number  `json:"vote_average"`
	VoteCount           int         `json:"vote_count"`
	Runtime             int         `json:"runtime"`
	Credits             *Credits    `json:"credits"`
	Videos              *videoList  `json:"videos"`
	Images              *Images     `json:"images"`
	Reviews             *reviewPage `json:"reviews"`
}

func (m *Movie) VideoList() []Video {
	if m.Videos == nil {
		return nil
	}
	return m.Videos.Results
}

func (m *Movie) ReviewList() []Review {
	if m.Reviews == nil {
		return nil
	}
	return m.Reviews.Results
}

type MovieResult struct {
	ID               int        `json:"id"`
	Adult            bool       `json:"adult"`
	BackdropPath     string     `json:"backdrop_path"`
	GenreIDs         []int      `json:"genre_ids"`
	OriginalLanguage string     `json:"original_language"`
	OriginalTitle    string     `json:"original_title"`
	Overview         string     `json:"overview"`
	Popularity       str.Number `json:"popularity"`
	PosterPath       string     `json:"poster_path"`
	ReleaseDate      string     `json:"release_date"`
	Title            string     `json:"title"`
	Video            bool       `json:"video"`
	VoteAverage      str.Number `json:"vote_average"`
	VoteCount        int        `json:"vote_count"`
}

type TV struct {
	ID                  int        `json:"id"` // unique series ID
	BackdropPath        string     `json:"backdrop_path"`
	EpisodeRunTime      []int      `json:"episode_run_time"`
	FirstAirDate        string     `json:"first_air_date"`
	Genres              []Genre    `json:"genres"`
	GenreIDs            []int      `json:"genre_ids"`
	Name                string     `json:"name"`
	NumberOfEpisodes    int        `json:"number_of_episodes"`
	NumberOfSeasons     int        `json:"number_of_seasons"`
	OriginalName        string     `json:"original_name"`
	Overview            string     `json:"overview"`
	Popularity          str.Number `json:"popularity"`
	PosterPath          string     `json:"poster_path"`
	ProductionCompanies []Company  `json:"production_companies"`
	Networks            []Company  `json:"networks"`
	VoteAverage         str.Number `json:"vote_average"`
	VoteCount           int        `json:"vote_count"`
	Credits             *Credits   `json:"credits"`
	Videos              *videoList `json:"videos"`
	Images              *Images    `json:"images"`
}

func (t *TV) VideoList() []Video {
	if t.Videos == nil {
		return nil
	}
	return t.Videos.Results
}

// Credit is a person's role in a movie or series from combined_credits.
type Credit struct {
	ID           int        `json:"id"`
	MediaType    string     `json:"media_type"`
	Title        string     `json:"title"`
	Name         string     `json:"name"`
	Character    string     `json:"character"`
	Job          string     `json:"job"`
	PosterPath   string     `json:"poster_path"`
	ReleaseDate  string     `json:"release_date"`
	FirstAirDate string     `json:"first_air_date"`
	VoteAverage  str.Number `json:"vote_average"`
}

type combinedCredits struct {
	Cast []Credit `json:"cast"`
	Crew []Credit `json:"crew"`
}

type Person struct {
	ID                 int              `json:"id"` // unique person ID
	IMDB_ID            string           `json:"imdb_id"`
	Name               string           `json:"name"`
	AlsoKnownAs        []string         `json:"also_known_as"`
	ProfilePath        string           `json:"profile_path"`
	Birthday           string           `json:"birthday"`
	Deathday           string           `json:"deathday"`
	Biography          string           `json:"biography"`
	Birthplace         string           `json:"place_of_birth"`
	KnownForDepartment string           `json:"known_for_department"`
	Popularity         str.Number       `json:"popularity"`
	CombinedCredits    *combinedCredits `json:"combined_credits"`
}

func (p *Person) CastCredits() []Credit {
	if p.CombinedCredits == nil {
		return nil
	}
	return p.CombinedCredits.Cast
}

type PersonResult struct {
	ID                 int           `json:"id"`
	Name               string        `json:"name"`
	ProfilePath        string        `json:"profile_path"`
	KnownForDepartment string        `json:"known_for_department"`
	Popularity         str.Number    `json:"popularity"`
	KnownFor           []MovieResult `json:"known_for"`
}

type MoviePage struct {
	Page         int           `json:"page"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
	Results      []MovieResult `json:"results"`
}

type TVPage struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	Results      []TV `json:"results"`
}

type PersonPage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []PersonResult `json:"results"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type Genres map[int]string

func (m *TMDB) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", m.config.TMDB.Key)
	if m.config.TMDB.Language != "" {
		params.Set("language", m.config.TMDB.Language)
	}
	return fmt.Sprintf("%s%s?%s",
		strings.TrimSuffix(m.config.TMDB.Endpoint, "/"), path, params.Encode())
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (m *TMDB) MovieDetail(ctx context.Context, tmid int) (*Movie, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos,images,reviews")
	params.Set("include_image_language", "en,null")
	var result Movie
	err := m.client.GetJson(ctx, m.endpoint(fmt.Sprintf("/movie/%d", tmid), params), &result)
	return &result, err
}

func (m *TMDB) SimilarMovies(ctx context.Context, tmid, page int) (*MoviePage, error) {
	var result MoviePage
	err := m.client.GetJson(ctx,
		m.endpoint(fmt.Sprintf("/movie/%d/similar", tmid), pageParams(page)), &result)
	return &result, err
}

func (m *TMDB) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	var result MoviePage
	err := m.client.GetJson(ctx, m.endpoint("/movie/popular", pageParams(page)), &result)
	return &result, err
}

func (m *TMDB) TVDetail(ctx context.Context, id int) (*TV, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos,images")
	params.Set("include_image_language", "en,null")
	var result TV
	err := m.client.GetJson(ctx, m.endpoint(fmt.Sprintf("/tv/%d", id), params), &result)
	return &result, err
}

func (m *TMDB) PopularTV(ctx context.Context, page int) (*TVPage, error) {
	var result TVPage
	err := m.client.GetJson(ctx, m.endpoint("/tv/popular", pageParams(page)), &result)
	return &result, err
}

func (m *TMDB) PersonDetail(ctx context.Context, peid int) (*Person, error) {
	params := url.Values{}
	params.Set("append_to_response", "combined_credits")
	var result Person
	err := m.client.GetJson(ctx, m.endpoint(fmt.Sprintf("/person/%d", peid), params), &result)
	return &result, err
}

func (m *TMDB) PopularPeople(ctx context.Context, page int) (*PersonPage, error) {
	var result PersonPage
	err := m.client.GetJson(ctx, m.endpoint("/person/popular", pageParams(page)), &result)
	return &result, err
}

func (m *TMDB) genres(ctx context.Context, path string) (Genres, error) {
	genres := make(Genres)
	var result genreList
	err := m.client.GetJson(ctx, m.endpoint(path, nil), &result)
	if err == nil {
		for _, g := range result.Genres {
			genres[g.ID] = g.Name
		}
	}
	return genres, err
}

func (m *TMDB) MovieGenres(ctx context.Context) (Genres, error) {
	return m.genres(ctx, "/genre/movie/list")
}

func (m *TMDB) TVGenres(ctx context.Context) (Genres, error) {
	return m.genres(ctx, "/genre/tv/list")
}
