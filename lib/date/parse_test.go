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
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d := ParseDate("2019-04-24")
	if d.Year() != 2019 || d.Month() != time.April || d.Day() != 24 {
		t.Errorf("got %s\n", d)
	}
	d = ParseDate("2019-4")
	if d.Year() != 2019 || d.Month() != time.April {
		t.Errorf("got %s\n", d)
	}
	d = ParseDate("1999")
	if d.Year() != 1999 {
		t.Errorf("got %s\n", d)
	}
	if !ParseDate(Unknown).IsZero() {
		t.Errorf("placeholder should be zero\n")
	}
	if !ParseDate("soon").IsZero() {
		t.Errorf("garbage should be zero\n")
	}
}

func TestFormatRelease(t *testing.T) {
	if s := FormatRelease(Unknown); s != NotAvailable {
		t.Errorf("got %s\n", s)
	}
	if s := FormatRelease(""); s != NotAvailable {
		t.Errorf("got %s\n", s)
	}
	if s := FormatRelease("2010-07-16"); s != "Jul 16, 2010" {
		t.Errorf("got %s\n", s)
	}
}

func TestYear(t *testing.T) {
	if Year("2008-05-02") != 2008 {
		t.Errorf("wrong year\n")
	}
	if Year(Unknown) != 0 {
		t.Errorf("placeholder year should be 0\n")
	}
}
