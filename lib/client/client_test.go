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

package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/defsub/marquee/config"
)

func testClient() *Client {
	return NewClient(&config.ClientConfig{UserAgent: "marquee-test", Retries: 2})
}

func TestGetJsonRetry(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if r.Header.Get(HeaderUserAgent) != "marquee-test" {
			t.Errorf("user agent %s\n", r.Header.Get(HeaderUserAgent))
		}
		w.Write([]byte(`{"id": 42}`))
	}))
	defer ts.Close()

	var result struct {
		ID int `json:"id"`
	}
	err := testClient().GetJson(context.Background(), ts.URL, &result)
	if err != nil {
		t.Fatalf("GetJson %s\n", err)
	}
	if result.ID != 42 {
		t.Errorf("id %d\n", result.ID)
	}
	if calls != 2 {
		t.Errorf("calls %d\n", calls)
	}
}

func TestGetJsonNoRetryOn404(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_message": "The resource you requested could not be found."}`))
	}))
	defer ts.Close()

	err := testClient().GetJson(context.Background(), ts.URL, &struct{}{})
	if Status(err) != http.StatusNotFound {
		t.Fatalf("expected 404 got %v\n", err)
	}
	if Message(err) != "The resource you requested could not be found." {
		t.Errorf("message %s\n", Message(err))
	}
	if calls != 1 {
		t.Errorf("calls %d\n", calls)
	}
}

func TestMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer ts.Close()

	err := testClient().GetJson(context.Background(), ts.URL, &struct{}{})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected decode error got %v\n", err)
	}
}

func TestErrorMessage(t *testing.T) {
	if m := errorMessage([]byte(`{"error": "bad rating"}`)); m != "bad rating" {
		t.Errorf("got %s\n", m)
	}
	if m := errorMessage([]byte(`{"message": "", "error": "x"}`)); m != "x" {
		t.Errorf("got %s\n", m)
	}
	if m := errorMessage([]byte(`oops`)); m != GenericMessage {
		t.Errorf("got %s\n", m)
	}
	if m := Message(errors.New("dial tcp")); m != GenericMessage {
		t.Errorf("got %s\n", m)
	}
}

func TestDeleteNoContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method %s\n", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	var result map[string]interface{}
	status, err := testClient().Delete(context.Background(), ts.URL, &result)
	if err != nil {
		t.Fatalf("Delete %s\n", err)
	}
	if status != http.StatusNoContent {
		t.Errorf("status %d\n", status)
	}
}

func TestPostJson(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderContentType) != ContentTypeJSON {
			t.Errorf("content type %s\n", r.Header.Get(HeaderContentType))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"content":"hi"`) {
			t.Errorf("body %s\n", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer ts.Close()

	var result struct {
		OK bool `json:"ok"`
	}
	err := testClient().PostJson(context.Background(), ts.URL,
		map[string]string{"content": "hi"}, &result)
	if err != nil {
		t.Fatalf("PostJson %s\n", err)
	}
	if !result.OK {
		t.Errorf("expected ok\n")
	}
}

func TestUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, h, err := r.FormFile("poster")
		if err != nil {
			t.Errorf("FormFile %s\n", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if h.Filename != "poster.jpg" || string(data) != "jpegdata" {
			t.Errorf("got %s %s\n", h.Filename, data)
		}
		w.Write([]byte(`{"poster_path": "/uploads/poster.jpg"}`))
	}))
	defer ts.Close()

	var result struct {
		PosterPath string `json:"poster_path"`
	}
	err := testClient().Upload(context.Background(), ts.URL, "poster", "poster.jpg",
		strings.NewReader("jpegdata"), &result)
	if err != nil {
		t.Fatalf("Upload %s\n", err)
	}
	if result.PosterPath != "/uploads/poster.jpg" {
		t.Errorf("got %s\n", result.PosterPath)
	}
}
