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

package str

import (
	"encoding/json"
	"testing"
)

func TestNumber(t *testing.T) {
	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 7.5, "b": "6.25", "c": "bad", "d": null, "e": true}`), &v)
	if err != nil {
		t.Fatalf("unmarshal %s\n", err)
	}
	if v.A != 7.5 {
		t.Errorf("a %v\n", v.A)
	}
	if v.B != 6.25 {
		t.Errorf("b %v\n", v.B)
	}
	if v.C != 0 || v.D != 0 || v.E != 0 {
		t.Errorf("c d e %v %v %v\n", v.C, v.D, v.E)
	}
}

func TestUnique(t *testing.T) {
	got := Unique([]string{" Drama", "Drama", "", "Comedy ", "drama"})
	if len(got) != 3 || got[0] != "Drama" || got[1] != "Comedy" || got[2] != "drama" {
		t.Errorf("got %v\n", got)
	}
}
