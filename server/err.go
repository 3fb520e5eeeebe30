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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/fantasy"
	"github.com/defsub/marquee/favorite"
	"github.com/defsub/marquee/lib/client"
	"github.com/defsub/marquee/lib/log"
	"github.com/defsub/marquee/lib/valid"
	"github.com/defsub/marquee/review"
	"github.com/defsub/marquee/session"
)

var (
	ErrInvalidID   = errors.New("invalid id")
	ErrInvalidBody = errors.New("invalid request body")
	ErrNotFound    = errors.New("not found")
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusCode maps domain errors to a response status.
func statusCode(err error) int {
	switch {
	case errors.Is(err, valid.ErrInvalid),
		errors.Is(err, catalog.ErrSort),
		errors.Is(err, catalog.ErrKind),
		errors.Is(err, favorite.ErrKind),
		errors.Is(err, fantasy.ErrNoID),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, review.ErrNotFound),
		errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, review.ErrPending):
		return http.StatusConflict
	case errors.Is(err, favorite.ErrDetail),
		errors.Is(err, review.ErrTranslate):
		return http.StatusBadGateway
	}
	if code := client.Status(err); code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}

func errorMessage(err error, code int) string {
	if client.Status(err) != 0 {
		return client.Message(err)
	}
	if code == http.StatusInternalServerError {
		return "bummer"
	}
	return err.Error()
}

// apiErr writes err as a JSON body. Validation failures carry their field
// messages.
func apiErr(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		log.Printf("%s\n", err)
	}
	resp := errorResponse{Error: errorMessage(err, code)}
	var fields valid.Errors
	if errors.As(err, &fields) {
		resp.Error = valid.ErrInvalid.Error()
		resp.Fields = fields
	}
	w.Header().Set(client.HeaderContentType, client.ContentTypeJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

func authErr(w http.ResponseWriter, err error) {
	if err != nil {
		apiErr(w, err)
	}
}

func badRequest(w http.ResponseWriter, err error) {
	handleErr(w, err.Error(), http.StatusBadRequest)
}

func notFoundErr(w http.ResponseWriter) {
	handleErr(w, ErrNotFound.Error(), http.StatusNotFound)
}

func handleErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set(client.HeaderContentType, client.ContentTypeJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
