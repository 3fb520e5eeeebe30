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

package date

import (
	"time"
)

const (
	// Unknown is the release date placeholder for records without a date.
	Unknown = "0000-00-00"

	NotAvailable = "not available"
)

// Parse a date string to time in format yyyy-mm-dd, yyyy-mm, yyyy.
func ParseDate(date string) (t time.Time) {
	if date == "" || date == Unknown {
		return t
	}
	var err error
	t, err = time.Parse("2006-1-2", date)
	if err != nil {
		t, err = time.Parse("2006-1", date)
		if err != nil {
			t, err = time.Parse("2006", date)
			if err != nil {
				t = time.Time{}
			}
		}
	}
	return t
}

// FormatRelease renders a release date for display; the placeholder and
// anything unparsable render as NotAvailable.
func FormatRelease(date string) string {
	t := ParseDate(date)
	if t.IsZero() {
		return NotAvailable
	}
	return t.Format("Jan 2, 2006")
}

// Year returns the release year or 0.
func Year(date string) int {
	t := ParseDate(date)
	if t.IsZero() {
		return 0
	}
	return t.Year()
}
