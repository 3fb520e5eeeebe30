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
	"sort"
	"strings"

	"github.com/defsub/marquee/lib/date"
	"github.com/defsub/marquee/lib/str"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// GenreAll disables genre filtering.
	GenreAll = 0

	RatingMin = 0.0
	RatingMax = 10.0
)

var (
	ErrSort = errors.New("unknown sort")
)

// ParseGenre returns the genre id in s, GenreAll for "all" or empty.
func ParseGenre(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return GenreAll
	}
	return str.Atoi(s)
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type Filter struct {
	Title  string `json:"title,omitempty"`
	Genre  int    `json:"genre,omitempty"`
	Year   string `json:"year,omitempty"`
	Rating *Range `json:"rating,omitempty"`
}

func (f Filter) Match(i Item) bool {
	if t := strings.TrimSpace(f.Title); t != "" {
		if !strings.Contains(strings.ToLower(i.Title), strings.ToLower(t)) {
			return false
		}
	}
	if f.Genre != GenreAll && !i.HasGenre(f.Genre) {
		return false
	}
	if y := strings.TrimSpace(f.Year); y != "" && !strings.HasPrefix(i.ReleaseDate, y) {
		return false
	}
	if f.Rating != nil && !f.Rating.Contains(i.VoteAverage) {
		return false
	}
	return true
}

type SortKey string

const (
	SortTitle   SortKey = "title"
	SortRating  SortKey = "rating"
	SortRelease SortKey = "release"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

type Sort struct {
	Key   SortKey
	Order Order
}

var DefaultSort = Sort{Key: SortRating, Order: Desc}

func (s Sort) String() string {
	return string(s.Key) + "-" + string(s.Order)
}

// ParseSort parses "key-order" such as "title-asc". Empty is DefaultSort.
func ParseSort(s string) (Sort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSort, nil
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return DefaultSort, ErrSort
	}
	key, order := SortKey(parts[0]), Order(parts[1])
	switch key {
	case SortTitle, SortRating, SortRelease:
	default:
		return DefaultSort, ErrSort
	}
	if order != Asc && order != Desc {
		return DefaultSort, ErrSort
	}
	return Sort{Key: key, Order: order}, nil
}

// releaseTime orders unknown and unparsable dates as earliest.
func releaseTime(i Item) int64 {
	t := date.ParseDate(i.ReleaseDate)
	if t.IsZero() {
		return -1 << 62
	}
	return t.Unix()
}

func (s Sort) apply(items []Item) {
	var cmp func(a, b Item) int
	switch s.Key {
	case SortTitle:
		c := collate.New(language.English)
		cmp = func(a, b Item) int {
			return c.CompareString(a.Title, b.Title)
		}
	case SortRating:
		cmp = func(a, b Item) int {
			switch {
			case a.VoteAverage < b.VoteAverage:
				return -1
			case a.VoteAverage > b.VoteAverage:
				return 1
			}
			return 0
		}
	case SortRelease:
		cmp = func(a, b Item) int {
			ta, tb := releaseTime(a), releaseTime(b)
			switch {
			case ta < tb:
				return -1
			case ta > tb:
				return 1
			}
			return 0
		}
	default:
		return
	}
	desc := s.Order == Desc
	sort.SliceStable(items, func(i, j int) bool {
		r := cmp(items[i], items[j])
		if desc {
			return r > 0
		}
		return r < 0
	})
}

// Derive returns the items that match f ordered by s. The input is not
// modified; equal keys keep their input order.
func Derive(items []Item, f Filter, s Sort) []Item {
	result := make([]Item, 0, len(items))
	for _, i := range items {
		if f.Match(i) {
			result = append(result, i)
		}
	}
	s.apply(result)
	return result
}

// TotalPages is the number of pages of size needed for n items, at least 1.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns page (1-based) of items. Out of range pages are empty.
func Paginate(items []Item, page, size int) []Item {
	if size <= 0 || page < 1 {
		return []Item{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []Item{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	result := make([]Item, end-start)
	copy(result, items[start:end])
	return result
}

func sortGenres(genres []Genre) {
	c := collate.New(language.English)
	sort.SliceStable(genres, func(i, j int) bool {
		return c.CompareString(genres[i].Name, genres[j].Name) < 0
	})
}
