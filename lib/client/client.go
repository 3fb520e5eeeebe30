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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/defsub/marquee/config"
	"github.com/defsub/marquee/lib/log"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
)

const (
	DirectiveMaxAge = "max-age"

	ContentTypeJSON = "application/json"
)

var (
	HeaderUserAgent    = http.CanonicalHeaderKey("User-Agent")
	HeaderCacheControl = http.CanonicalHeaderKey("Cache-Control")
	HeaderContentType  = http.CanonicalHeaderKey("Content-Type")
	HeaderAccept       = http.CanonicalHeaderKey("Accept")

	ErrDecode = errors.New("malformed response")
)

type Client struct {
	client    *http.Client
	useCache  bool
	userAgent string
	cache     httpcache.Cache
	maxAge    time.Duration
	attempts  uint
	backoff   time.Duration
}

func NewClient(config *config.ClientConfig) *Client {
	c := Client{}
	c.userAgent = config.UserAgent
	c.useCache = config.UseCache
	c.attempts = config.Retries + 1
	c.backoff = config.Backoff
	if c.useCache {
		c.maxAge = config.MaxAge
		if config.CacheDir != "" {
			c.cache = diskcache.New(config.CacheDir)
			log.Printf("using cache dir %s\n", config.CacheDir)
		} else {
			c.cache = httpcache.NewMemoryCache()
			log.Printf("using memory cache\n")
		}
		transport := httpcache.NewTransport(c.cache)
		c.client = transport.Client()
	} else {
		c.client = &http.Client{}
	}
	c.client.Timeout = config.Timeout
	return &c
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderUserAgent, c.userAgent)
	req.Header.Set(HeaderAccept, ContentTypeJSON)
	if method == http.MethodGet && c.useCache {
		maxAge := int(c.maxAge.Seconds())
		if maxAge > 0 {
			req.Header.Set(HeaderCacheControl, fmt.Sprintf("%s=%d", DirectiveMaxAge, maxAge))
		}
	}
	return req, nil
}

// do sends the request and turns any non-2xx response into a StatusError.
// The caller owns the body of a successful response.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	log.Printf("%s %s\n", req.Method, req.URL.String())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, &StatusError{
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return resp, nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError ||
			se.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func (c *Client) doGetWithRetry(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	err := retry.Do(
		func() error {
			req, err := c.newRequest(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err = c.do(req)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.backoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("got err %s: retry backoff attempt %d of %d\n", err, n+1, c.attempts)
		}),
	)
	return resp, err
}

func decode(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err = json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return nil
}

func (c *Client) GetJson(ctx context.Context, url string, result interface{}) error {
	resp, err := c.doGetWithRetry(ctx, url)
	if err != nil {
		return err
	}
	return decode(resp, result)
}

func (c *Client) sendJson(ctx context.Context, method, url string, body, result interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set(HeaderContentType, ContentTypeJSON)
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, err
	}
	status := resp.StatusCode
	return status, decode(resp, result)
}

func (c *Client) PostJson(ctx context.Context, url string, body, result interface{}) error {
	_, err := c.sendJson(ctx, http.MethodPost, url, body, result)
	return err
}

func (c *Client) PutJson(ctx context.Context, url string, body, result interface{}) error {
	_, err := c.sendJson(ctx, http.MethodPut, url, body, result)
	return err
}

// Delete returns the response status so callers can tell 204 from a payload.
func (c *Client) Delete(ctx context.Context, url string, result interface{}) (int, error) {
	return c.sendJson(ctx, http.MethodDelete, url, nil, result)
}

// Upload posts a single file as multipart/form-data under field.
func (c *Client) Upload(ctx context.Context, url, field, filename string, r io.Reader, result interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, r); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderContentType, w.FormDataContentType())
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(resp, result)
}
