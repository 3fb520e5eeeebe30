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
	"fmt"
	"os"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/date"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Marquee is a movie, tv and actor catalog",
	Long:  `https://github.com/defsub/marquee`,
}

var configFile string
var configPath string
var configName string

func getConfig() (*config.Config, error) {
	if configPath == "" {
		configPath = os.Getenv("MARQUEE_HOME")
	}
	if configName == "" {
		configName = os.Getenv("MARQUEE_CONFIG")
	}
	if configFile != "" {
		config.SetConfigFile(configFile)
	} else {
		if configPath == "" {
			configPath = "."
		}
		if configName == "" {
			configName = "marquee"
		}
		config.AddConfigPath(configPath)
		config.SetConfigName(configName)
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	log.Setup(cfg.Log)
	return cfg, nil
}

func openStore(cfg *config.Config) store.Store {
	s, err := store.Open(cfg.Store)
	log.CheckError(err)
	return s
}

func printItem(i catalog.Item) {
	if year := date.Year(i.ReleaseDate); year > 0 {
		fmt.Printf("%d\t%s (%d)\t%.1f\n", i.ID, i.Title, year, i.VoteAverage)
	} else {
		fmt.Printf("%d\t%s\t%.1f\n", i.ID, i.Title, i.VoteAverage)
	}
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
