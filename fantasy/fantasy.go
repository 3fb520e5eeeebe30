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

// Package fantasy creates user made movies on the backend.
package fantasy

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/lib/backend"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/str"
	"github.com/defsub/marquee/lib/valid"
)

var (
	ErrNoID = errors.New("fantasy movie has no id")
)

type Backend interface {
	CreateFantasy(ctx context.Context, body interface{}) (*backend.Movie, error)
	UploadFantasyPoster(ctx context.Context, id int, filename string, r io.Reader) (*backend.Movie, error)
	UploadFantasyCast(ctx context.Context, id int, filename string, r io.Reader) (*backend.Movie, error)
}

type Input struct {
	Title               string   `json:"title" validate:"required"`
	Overview            string   `json:"overview" validate:"required"`
	Genres              []string `json:"genres"`
	ReleaseDate         string   `json:"releaseDate" validate:"required,datetime=2006-01-02"`
	Runtime             int      `json:"runtime" validate:"gte=0"`
	ProductionCompanies []string `json:"productionCompanies"`
}

// Clean trims the form and removes blank and repeated genre and company
// chips.
func (in Input) Clean() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Overview = strings.TrimSpace(in.Overview)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.Genres = str.Unique(in.Genres)
	in.ProductionCompanies = str.Unique(in.ProductionCompanies)
	return in
}

func (in Input) Validate() error {
	return valid.Struct(in).Err()
}

type Service struct {
	backend Backend
	norm    *catalog.Normalizer
}

func NewService(b Backend, norm *catalog.Normalizer) *Service {
	return &Service{backend: b, norm: norm}
}

func (s *Service) item(m *backend.Movie) catalog.Item {
	item := s.norm.FromBackendMovie(m)
	item.Fantasy = true
	if item.CreatedAt == "" {
		item.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return item
}

func (s *Service) Create(ctx context.Context, in Input) (catalog.Item, error) {
	in = in.Clean()
	if err := in.Validate(); err != nil {
		return catalog.Item{}, err
	}
	m, err := s.backend.CreateFantasy(ctx, in)
	if err != nil {
		return catalog.Item{}, err
	}
	// fill in what the backend did not echo back
	if m.Title == "" {
		m.Title = in.Title
	}
	if m.Overview == "" {
		m.Overview = in.Overview
	}
	if m.ReleaseDate == "" {
		m.ReleaseDate = in.ReleaseDate
	}
	if m.Runtime == 0 {
		m.Runtime = in.Runtime
	}
	item := s.item(m)
	if len(item.Genres) == 0 {
		for _, g := range in.Genres {
			item.Genres = append(item.Genres, catalog.Genre{Name: g})
		}
	}
	if len(item.ProductionCompanies) == 0 {
		for _, c := range in.ProductionCompanies {
			item.ProductionCompanies = append(item.ProductionCompanies, catalog.Company{Name: c})
		}
	}
	log.Printf("created fantasy movie %d %s\n", item.ID, item.Title)
	return item, nil
}

func (s *Service) UploadPoster(ctx context.Context, id int, filename string, r io.Reader) (catalog.Item, error) {
	if id == 0 {
		return catalog.Item{}, ErrNoID
	}
	m, err := s.backend.UploadFantasyPoster(ctx, id, filename, r)
	if err != nil {
		return catalog.Item{}, err
	}
	return s.item(m), nil
}

func (s *Service) UploadCast(ctx context.Context, id int, filename string, r io.Reader) (catalog.Item, error) {
	if id == 0 {
		return catalog.Item{}, ErrNoID
	}
	m, err := s.backend.UploadFantasyCast(ctx, id, filename, r)
	if err != nil {
		return catalog.Item{}, err
	}
	return s.item(m), nil
}
