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
	"fmt"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/favorite"
	"github.com/spf13/cobra"
)

var optDetails bool

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "favorite tv series and actors",
}

// withFavorites parses the kind argument and runs f with favorites backed
// by the configured store.
func withFavorites(args []string, f func(*favorite.Favorites, catalog.Kind) error) error {
	kind, err := catalog.ParseKind(args[0])
	if err != nil {
		return err
	}
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	s := openStore(cfg)
	defer s.Close()
	return f(favorite.NewFavorites(cfg, s, catalog.NewCatalog(cfg)), kind)
}

var favoriteListCmd = &cobra.Command{
	Use:   "list tv|actors",
	Short: "list favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFavorites(args, func(fav *favorite.Favorites, kind catalog.Kind) error {
			if optDetails {
				items, err := fav.Details(context.Background(), kind)
				if err != nil {
					return err
				}
				for _, item := range items {
					printItem(item)
				}
				return nil
			}
			ids, err := fav.Get(kind)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		})
	},
}

var favoriteSuggestCmd = &cobra.Command{
	Use:   "suggest tv|actors",
	Short: "popular titles to add",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFavorites(args, func(fav *favorite.Favorites, kind catalog.Kind) error {
			items, err := fav.Suggestions(context.Background(), kind, optPage, optTitle)
			if err != nil {
				return err
			}
			for _, item := range items {
				printItem(item)
			}
			return nil
		})
	},
}

func favoriteChange(use, short string, change func(*favorite.Favorites, catalog.Kind, int) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " tv|actors id",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[1:])
			if err != nil {
				return err
			}
			return withFavorites(args, func(fav *favorite.Favorites, kind catalog.Kind) error {
				in, err := change(fav, kind, id)
				if err != nil {
					return err
				}
				if in {
					fmt.Printf("%s %d is a favorite\n", kind, id)
				} else {
					fmt.Printf("%s %d is not a favorite\n", kind, id)
				}
				return nil
			})
		},
	}
}

func init() {
	favoriteListCmd.Flags().BoolVarP(&optDetails, "details", "d", false, "look up details")
	favoriteSuggestCmd.Flags().IntVarP(&optPage, "page", "p", 1, "page")
	favoriteSuggestCmd.Flags().StringVarP(&optTitle, "title", "t", "", "title contains")
	favoriteCmd.AddCommand(favoriteListCmd, favoriteSuggestCmd,
		favoriteChange("add", "add a favorite",
			func(fav *favorite.Favorites, kind catalog.Kind, id int) (bool, error) {
				return true, fav.Add(kind, id)
			}),
		favoriteChange("remove", "remove a favorite",
			func(fav *favorite.Favorites, kind catalog.Kind, id int) (bool, error) {
				return false, fav.Remove(kind, id)
			}),
		favoriteChange("toggle", "add or remove a favorite",
			func(fav *favorite.Favorites, kind catalog.Kind, id int) (bool, error) {
				return fav.Toggle(kind, id)
			}))
	rootCmd.AddCommand(favoriteCmd)
}
