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
	"net/http"
	"strings"

	"github.com/defsub/marquee/catalog"
	"github.com/defsub/marquee/fantasy"
	"github.com/defsub/marquee/lib/client"
	"github.com/defsub/marquee/lib/str"
	"github.com/defsub/marquee/review"
	"github.com/defsub/marquee/session"
	"github.com/gorilla/mux"
)

const (
	maxUpload = 10 << 20
)

type listing struct {
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
	Total int            `json:"total"`
	Items []catalog.Item `json:"items"`
	More  bool           `json:"more"`
	Error string         `json:"error,omitempty"`
}

type movieDetail struct {
	catalog.Item
	Similar []catalog.Item `json:"similar"`
}

type favoriteStatus struct {
	Kind     catalog.Kind `json:"kind"`
	ID       int          `json:"id"`
	Favorite bool         `json:"favorite"`
}

type signedUp struct {
	UserID string `json:"userId"`
}

type translation struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

func apiView(w http.ResponseWriter, code int, view interface{}) {
	w.Header().Set(client.HeaderContentType, client.ContentTypeJSON)
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.Encode(view)
}

func readJson(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return ErrInvalidBody
	}
	return nil
}

func varKind(r *http.Request) (catalog.Kind, error) {
	return catalog.ParseKind(mux.Vars(r)["kind"])
}

func varID(r *http.Request, name string) (int, error) {
	id := str.Atoi(mux.Vars(r)[name])
	if id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// parseFilter reads title, genre, year, min and max. A rating range is
// only applied when min or max is present.
func parseFilter(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	f := catalog.Filter{
		Title: strings.TrimSpace(q.Get("title")),
		Genre: catalog.ParseGenre(q.Get("genre")),
		Year:  strings.TrimSpace(q.Get("year")),
	}
	min, max := q.Get("min"), q.Get("max")
	if min != "" || max != "" {
		rng := catalog.Range{Min: catalog.RatingMin, Max: catalog.RatingMax}
		if min != "" {
			rng.Min = str.Atof(min)
		}
		if max != "" {
			rng.Max = str.Atof(max)
		}
		f.Rating = &rng
	}
	return f
}

// GET /api/{movies|tv|people}?page&title&genre&year&min&max&sort > listing{}
// 200: success, error set when the last server fetch failed
// 400: bad sort
func apiListing(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	sort, err := catalog.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		apiErr(w, err)
		return
	}
	filter := parseFilter(r)
	page := str.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	a := ctx.Listing(kind)
	// errors are kept by the aggregator and reported in the snapshot
	a.FillFor(r.Context(), filter, sort, page)
	snap := a.SnapshotFor(filter, sort, page)
	result := listing{
		Page:  snap.Page,
		Pages: snap.Pages,
		Total: snap.Total,
		Items: snap.Items,
		More:  snap.More,
	}
	if snap.Err != nil {
		result.Error = client.Message(snap.Err)
	}
	apiView(w, http.StatusOK, result)
}

// GET /api/movies/:id > movieDetail{}
// GET /api/tv/:id > Item{}
// GET /api/people/:id > Item{}
// 200: success, placeholder when nothing could be fetched
func apiDetail(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	id, err := varID(r, "id")
	if err != nil {
		apiErr(w, err)
		return
	}
	if kind == catalog.KindMovie {
		movie, similar := ctx.Catalog().MovieWithSimilar(r.Context(), id)
		apiView(w, http.StatusOK, movieDetail{
			Item:    ctx.WithThread(movie),
			Similar: similar,
		})
		return
	}
	item, _ := ctx.Catalog().Detail(r.Context(), kind, id)
	apiView(w, http.StatusOK, item)
}

// GET /api/movies/:id/similar > []Item
// 200: success
// 502: provider error
func apiSimilar(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := varID(r, "id")
	if err != nil {
		apiErr(w, err)
		return
	}
	items, err := ctx.Catalog().Similar(r.Context(), id)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, items)
}

// GET /api/genres/:kind > []Genre
func apiGenres(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	genres, err := ctx.Catalog().Genres(r.Context(), kind)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, genres)
}

func thread(w http.ResponseWriter, r *http.Request) *review.Thread {
	ctx := contextValue(r)
	id, err := varID(r, "id")
	if err != nil {
		apiErr(w, err)
		return nil
	}
	return ctx.Thread(r.Context(), id)
}

// GET /api/movies/:id/reviews > []Entry
func apiReviews(w http.ResponseWriter, r *http.Request) {
	t := thread(w, r)
	if t == nil {
		return
	}
	apiView(w, http.StatusOK, t.Entries())
}

// POST /api/movies/:id/reviews < Input{} > Review{}
// 201: created
// 400: invalid input
// 401: not signed in
func apiReviewCreate(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	t := thread(w, r)
	if t == nil {
		return
	}
	var in review.Input
	if err := readJson(r, &in); err != nil {
		apiErr(w, err)
		return
	}
	if strings.TrimSpace(in.Author) == "" && ctx.Session() != nil {
		in.Author = ctx.Session().User.Name
	}
	result, err := t.Create(r.Context(), in)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusCreated, result)
}

// PUT /api/movies/:id/reviews/:rid < Update{} > Review{}
// 200: success
// 400: invalid input
// 404: no such review
// 409: review busy
func apiReviewEdit(w http.ResponseWriter, r *http.Request) {
	t := thread(w, r)
	if t == nil {
		return
	}
	var u review.Update
	if err := readJson(r, &u); err != nil {
		apiErr(w, err)
		return
	}
	result, err := t.Edit(r.Context(), mux.Vars(r)["rid"], u)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, result)
}

// DELETE /api/movies/:id/reviews/:rid
// 204: deleted
// 404: no such review
func apiReviewDelete(w http.ResponseWriter, r *http.Request) {
	t := thread(w, r)
	if t == nil {
		return
	}
	if err := t.Delete(r.Context(), mux.Vars(r)["rid"]); err != nil {
		apiErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/movies/:id/reviews/:rid/translate?language= > translation{}
func apiReviewTranslate(w http.ResponseWriter, r *http.Request) {
	t := thread(w, r)
	if t == nil {
		return
	}
	rid := mux.Vars(r)["rid"]
	language := r.URL.Query().Get("language")
	content, err := t.Translate(r.Context(), rid, language)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, translation{ID: rid, Language: language, Content: content})
}

// GET /api/favorites/:kind > []int
// 400: kind is not tv or actors
func apiFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	ids, err := ctx.Favorites().Get(kind)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, ids)
}

// GET /api/favorites/:kind/details > []Item
// 502: a lookup failed
func apiFavoriteDetails(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	items, err := ctx.Favorites().Details(r.Context(), kind)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, items)
}

// GET /api/favorites/:kind/suggestions?page&title > []Item
func apiFavoriteSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return
	}
	q := r.URL.Query()
	page := str.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	items, err := ctx.Favorites().Suggestions(r.Context(), kind, page, q.Get("title"))
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, items)
}

func favoriteVars(w http.ResponseWriter, r *http.Request) (catalog.Kind, int, bool) {
	kind, err := varKind(r)
	if err != nil {
		apiErr(w, err)
		return kind, 0, false
	}
	id, err := varID(r, "id")
	if err != nil {
		apiErr(w, err)
		return kind, 0, false
	}
	return kind, id, true
}

// PUT /api/favorites/:kind/:id > favoriteStatus{}
func apiFavoriteAdd(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, id, ok := favoriteVars(w, r)
	if !ok {
		return
	}
	if err := ctx.Favorites().Add(kind, id); err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, favoriteStatus{Kind: kind, ID: id, Favorite: true})
}

// DELETE /api/favorites/:kind/:id > favoriteStatus{}
func apiFavoriteRemove(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, id, ok := favoriteVars(w, r)
	if !ok {
		return
	}
	if err := ctx.Favorites().Remove(kind, id); err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, favoriteStatus{Kind: kind, ID: id, Favorite: false})
}

// POST /api/favorites/:kind/:id > favoriteStatus{}
// toggles membership
func apiFavoriteToggle(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	kind, id, ok := favoriteVars(w, r)
	if !ok {
		return
	}
	added, err := ctx.Favorites().Toggle(kind, id)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, favoriteStatus{Kind: kind, ID: id, Favorite: added})
}

// POST /api/fantasy < fantasy.Input{} > Item{}
// 201: created
// 400: invalid input
func apiFantasyCreate(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var in fantasy.Input
	if err := readJson(r, &in); err != nil {
		apiErr(w, err)
		return
	}
	item, err := ctx.Fantasy().Create(r.Context(), in)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusCreated, item)
}

// POST /api/fantasy/:id/poster < multipart file > Item{}
// POST /api/fantasy/:id/cast < multipart file > Item{}
func apiFantasyUpload(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	id, err := varID(r, "id")
	if err != nil {
		apiErr(w, err)
		return
	}
	res := mux.Vars(r)["res"]
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		badRequest(w, err)
		return
	}
	file, header, err := r.FormFile(res)
	if err != nil {
		badRequest(w, err)
		return
	}
	defer file.Close()

	var item catalog.Item
	if res == "cast" {
		item, err = ctx.Fantasy().UploadCast(r.Context(), id, header.Filename, file)
	} else {
		item, err = ctx.Fantasy().UploadPoster(r.Context(), id, header.Filename, file)
	}
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, item)
}

// POST /api/signup < SignUpInput{} > signedUp{}
// 201: created
// 400: invalid input
func apiSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var in session.SignUpInput
	if err := readJson(r, &in); err != nil {
		apiErr(w, err)
		return
	}
	userID, err := ctx.Sessions().SignUp(r.Context(), in)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusCreated, signedUp{UserID: userID})
}

// POST /api/signin < SignInInput{} > Session{}
// 200: success
// 400: invalid input
// 401: bad credentials
func apiSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	var in session.SignInInput
	if err := readJson(r, &in); err != nil {
		apiErr(w, err)
		return
	}
	s, err := ctx.Sessions().SignIn(r.Context(), in)
	if err != nil {
		apiErr(w, err)
		return
	}
	apiView(w, http.StatusOK, s)
}

// POST /api/signout
// 204: signed out
func apiSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	if err := ctx.Sessions().SignOut(); err != nil {
		apiErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/session > Session{}
// 401: not signed in
func apiSession(w http.ResponseWriter, r *http.Request) {
	ctx := contextValue(r)
	apiView(w, http.StatusOK, ctx.Session())
}
