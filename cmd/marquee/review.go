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
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/review"
	"github.com/defsub/marquee/session"
	"github.com/spf13/cobra"
)

var optMovie int
var optReview string
var optContent string
var optRating float64
var optAuthor string
var optLanguage string

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "movie reviews",
}

func movieThread(cfg *config.Config) (*review.Thread, error) {
	if optMovie <= 0 {
		return nil, fmt.Errorf("movie id required")
	}
	c := catalog.NewCatalog(cfg)
	item := c.MovieDetail(context.Background(), optMovie)
	return review.NewThread(c.Backend(), optMovie, item.Reviews), nil
}

// signedIn returns the current session; changing reviews requires one.
func signedIn(cfg *config.Config) (*session.Session, error) {
	s := openStore(cfg)
	defer s.Close()
	return sessions(cfg, s).Current()
}

func printReview(r review.Review) {
	rating := "-"
	if r.Rating != nil {
		rating = fmt.Sprintf("%.1f", *r.Rating)
	}
	fmt.Printf("%s\t%s\t%s\t%s\n", r.ID, r.Author, rating, r.Content)
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "list reviews of a movie",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		t, err := movieThread(cfg)
		if err != nil {
			return err
		}
		for _, r := range t.Reviews() {
			printReview(r)
		}
		return nil
	},
}

var reviewAddCmd = &cobra.Command{
	Use:   "add",
	Short: "review a movie",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		sess, err := signedIn(cfg)
		if err != nil {
			return err
		}
		t, err := movieThread(cfg)
		if err != nil {
			return err
		}
		author := optAuthor
		if author == "" {
			author = sess.User.Name
		}
		r, err := t.Create(context.Background(), review.Input{
			Author:  author,
			Content: optContent,
			Rating:  optRating,
		})
		if err != nil {
			return err
		}
		printReview(r)
		return nil
	},
}

var reviewEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "change a review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if _, err := signedIn(cfg); err != nil {
			return err
		}
		t, err := movieThread(cfg)
		if err != nil {
			return err
		}
		var u review.Update
		if cmd.Flags().Changed("content") {
			u.Content = &optContent
		}
		if cmd.Flags().Changed("rating") {
			u.Rating = &optRating
		}
		r, err := t.Edit(context.Background(), optReview, u)
		if err != nil {
			return err
		}
		printReview(r)
		return nil
	},
}

var reviewDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "delete a review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if _, err := signedIn(cfg); err != nil {
			return err
		}
		t, err := movieThread(cfg)
		if err != nil {
			return err
		}
		return t.Delete(context.Background(), optReview)
	},
}

var reviewTranslateCmd = &cobra.Command{
	Use:   "translate",
	Short: "translate a review",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		t, err := movieThread(cfg)
		if err != nil {
			return err
		}
		text, err := t.Translate(context.Background(), optReview, optLanguage)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	reviewCmd.PersistentFlags().IntVarP(&optMovie, "movie", "m", 0, "movie id")
	reviewAddCmd.Flags().StringVarP(&optAuthor, "author", "a", "", "author, defaults to the signed in user")
	for _, c := range []*cobra.Command{reviewAddCmd, reviewEditCmd} {
		c.Flags().StringVarP(&optContent, "content", "t", "", "review text")
		c.Flags().Float64VarP(&optRating, "rating", "r", 0, "rating 1 to 5")
	}
	for _, c := range []*cobra.Command{reviewEditCmd, reviewDeleteCmd, reviewTranslateCmd} {
		c.Flags().StringVarP(&optReview, "id", "i", "", "review id")
	}
	reviewTranslateCmd.Flags().StringVarP(&optLanguage, "language", "l", "es", "target language")
	reviewCmd.AddCommand(reviewListCmd, reviewAddCmd, reviewEditCmd, reviewDeleteCmd, reviewTranslateCmd)
	rootCmd.AddCommand(reviewCmd)
}
