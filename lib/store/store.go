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

// Package store is a small string key-value store used to persist favorites
// and the session, in the manner of browser local storage.
package store

import (
	"encoding/json"
	"errors"

	"github.com/defsub/marquee/config"
)

var (
	ErrDriver = errors.New("driver not supported")
)

type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Open returns the store selected by config.Driver.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", config.StoreMemory:
		return NewMemory(), nil
	case config.StoreRedis:
		s, err := openRedis(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// GetJson decodes the JSON value stored at key into v. A value that isn't
// valid JSON is treated as absent.
func GetJson(s Store, key string, v interface{}) (bool, error) {
	value, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return false, nil
	}
	return true, nil
}

func SetJson(s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(key, string(data))
}
