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

package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/fantasy"
	"github.com/spf13/cobra"
)

var fantasyInput fantasy.Input
var optPoster string
var optCast string

var fantasyCmd = &cobra.Command{
	Use:   "fantasy",
	Short: "create a fantasy movie",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if _, err := signedIn(cfg); err != nil {
			return err
		}
		c := catalog.NewCatalog(cfg)
		svc := fantasy.NewService(c.Backend(), c.Normalizer())
		ctx := context.Background()

		item, err := svc.Create(ctx, fantasyInput)
		if err != nil {
			return err
		}
		if optPoster != "" {
			item, err = upload(optPoster, func(f *os.File) (catalog.Item, error) {
				return svc.UploadPoster(ctx, item.ID, filepath.Base(f.Name()), f)
			})
			if err != nil {
				return err
			}
		}
		if optCast != "" {
			item, err = upload(optCast, func(f *os.File) (catalog.Item, error) {
				return svc.UploadCast(ctx, item.ID, filepath.Base(f.Name()), f)
			})
			if err != nil {
				return err
			}
		}
		printDetail(item)
		return nil
	},
}

func upload(path string, send func(*os.File) (catalog.Item, error)) (catalog.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.Item{}, err
	}
	defer f.Close()
	return send(f)
}

func init() {
	flags := fantasyCmd.Flags()
	flags.StringVarP(&fantasyInput.Title, "title", "t", "", "title")
	flags.StringVarP(&fantasyInput.Overview, "overview", "o", "", "overview")
	flags.StringSliceVarP(&fantasyInput.Genres, "genre", "g", nil, "genre, repeatable")
	flags.StringVarP(&fantasyInput.ReleaseDate, "release", "r", "", "release date YYYY-MM-DD")
	flags.IntVar(&fantasyInput.Runtime, "runtime", 0, "runtime in minutes")
	flags.StringSliceVar(&fantasyInput.ProductionCompanies, "company", nil, "production company, repeatable")
	flags.StringVar(&optPoster, "poster", "", "poster image file")
	flags.StringVar(&optCast, "cast", "", "cast image file")
	rootCmd.AddCommand(fantasyCmd)
}
