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

package server

import (
	"context"
	"time"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/log"
	"github.com/go-co-op/gocron"
)

// schedule refreshes each listing at the configured interval so popularity
// changes show up without a restart.
func schedule(config *config.Config, listings map[catalog.Kind]*catalog.Aggregator) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	refresh := func(d time.Duration, kind catalog.Kind, a *catalog.Aggregator) {
		scheduler.Every(d).WaitForSchedule().Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), config.Client.Timeout*2)
			defer cancel()
			n, err := a.Refresh(ctx)
			if err != nil {
				log.Printf("refresh %s: %s\n", kind, err)
				return
			}
			log.Printf("refresh %s: %d new\n", kind, n)
		})
	}

	if config.Catalog.RefreshInterval > 0 {
		for kind, a := range listings {
			refresh(config.Catalog.RefreshInterval, kind, a)
		}
	}

	scheduler.StartAsync()
	return scheduler
}
