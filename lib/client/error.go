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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const GenericMessage = "request failed"

// StatusError is a non-2xx response. Message comes from the response body
// when the server sent one.
type StatusError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" || e.Message == GenericMessage {
		return fmt.Sprintf("http error %d: %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Message)
}

// Status returns the HTTP status of a StatusError anywhere in err's chain,
// or 0.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Message returns a user facing message for err: the backend supplied
// message for a StatusError, otherwise GenericMessage.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return GenericMessage
}

func errorMessage(body []byte) string {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return GenericMessage
	}
	for _, k := range []string{"message", "error", "status_message"} {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return GenericMessage
}
