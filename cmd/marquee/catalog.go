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
	"strconv"
	"strings"

	"github.com/defsub/marquee/catalog"
	"github.com/spf13/cobra"
)

var optPage int
var optTitle string
var optGenre string
var optYear string
var optSort string
var optMin, optMax float64

var popularCmd = &cobra.Command{
	Use:   "popular [movies|tv|people]",
	Short: "list popular titles",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := "movies"
		if len(args) > 0 {
			kind = args[0]
		}
		return popular(cmd, kind)
	},
}

// popular loads server pages through an aggregator, the same way the api
// does, and prints one page of the derived view.
func popular(cmd *cobra.Command, name string) error {
	kind, err := catalog.ParseKind(name)
	if err != nil {
		return err
	}
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	sort, err := catalog.ParseSort(optSort)
	if err != nil {
		return err
	}
	filter := catalog.Filter{
		Title: optTitle,
		Genre: catalog.ParseGenre(optGenre),
		Year:  optYear,
	}
	if cmd.Flags().Changed("min") || cmd.Flags().Changed("max") {
		filter.Rating = &catalog.Range{Min: optMin, Max: optMax}
	}

	c := catalog.NewCatalog(cfg)
	source := func(ctx context.Context, page int) ([]catalog.Item, error) {
		return c.Popular(ctx, kind, page)
	}
	a := catalog.NewAggregator(source, cfg.Catalog.PageSize, cfg.Catalog.MaxItems)
	if err := a.FillFor(context.Background(), filter, sort, optPage); err != nil {
		return err
	}
	snap := a.SnapshotFor(filter, sort, optPage)
	for _, item := range snap.Items {
		printItem(item)
	}
	fmt.Printf("page %d of %d (%d items)\n", snap.Page, snap.Pages, snap.Total)
	return nil
}

func argID(args []string) (int, error) {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func names(n int, f func(i int) string) string {
	var list []string
	for i := 0; i < n; i++ {
		list = append(list, f(i))
	}
	return strings.Join(list, ", ")
}

func printDetail(i catalog.Item) {
	printItem(i)
	if i.Overview != "" {
		fmt.Println(i.Overview)
	}
	if len(i.Genres) > 0 {
		fmt.Printf("genres: %s\n", names(len(i.Genres), func(n int) string {
			return i.Genres[n].Name
		}))
	}
	if i.Runtime > 0 {
		fmt.Printf("runtime: %d min\n", i.Runtime)
	}
	if i.Seasons > 0 {
		fmt.Printf("seasons: %d episodes: %d\n", i.Seasons, i.Episodes)
	}
	if len(i.Cast) > 0 {
		n := len(i.Cast)
		if n > 10 {
			n = 10
		}
		fmt.Printf("cast: %s\n", names(n, func(n int) string {
			return i.Cast[n].Name + " as " + i.Cast[n].Character
		}))
	}
	if v, ok := i.Trailer(); ok {
		fmt.Printf("trailer: https://www.youtube.com/watch?v=%s\n", v.Key)
	}
	for _, c := range i.Credits {
		fmt.Printf("  %d\t%s\t%s\n", c.ID, c.Title, c.Character)
	}
	for _, r := range i.Reviews {
		fmt.Printf("  review %s by %s\n", r.ID, r.Author)
	}
}

func detail(kind catalog.Kind, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	c := catalog.NewCatalog(cfg)
	item, ok := c.Detail(context.Background(), kind, id)
	if !ok {
		return fmt.Errorf("%s %d not available", kind, id)
	}
	printDetail(item)
	return nil
}

var movieCmd = &cobra.Command{
	Use:   "movie id",
	Short: "movie detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return detail(catalog.KindMovie, args)
	},
}

var tvCmd = &cobra.Command{
	Use:   "tv id",
	Short: "tv series detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return detail(catalog.KindTV, args)
	},
}

var personCmd = &cobra.Command{
	Use:   "person id",
	Short: "actor detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return detail(catalog.KindActor, args)
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar id",
	Short: "movies similar to a movie",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := argID(args)
		if err != nil {
			return err
		}
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		items, err := catalog.NewCatalog(cfg).Similar(context.Background(), id)
		if err != nil {
			return err
		}
		for _, item := range items {
			printItem(item)
		}
		return nil
	},
}

func init() {
	popularCmd.Flags().IntVarP(&optPage, "page", "p", 1, "page")
	popularCmd.Flags().StringVarP(&optTitle, "title", "t", "", "title contains")
	popularCmd.Flags().StringVarP(&optGenre, "genre", "g", "", "genre id")
	popularCmd.Flags().StringVarP(&optYear, "year", "y", "", "release year")
	popularCmd.Flags().StringVarP(&optSort, "sort", "s", catalog.DefaultSort.String(), "sort key-order")
	popularCmd.Flags().Float64Var(&optMin, "min", catalog.RatingMin, "minimum rating")
	popularCmd.Flags().Float64Var(&optMax, "max", catalog.RatingMax, "maximum rating")
	rootCmd.AddCommand(popularCmd, movieCmd, tvCmd, personCmd, similarCmd)
}
