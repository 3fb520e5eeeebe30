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

package store

import (
	"context"
	"errors"

	"github.com/defsub/marquee/config"
	"github.com/go-redis/redis/v8"
)

const redisPrefix = "marquee:"

type Redis struct {
	client *redis.Client
}

func openRedis(config config.StoreConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{client: client}, nil
}

func (s *Redis) Get(key string) (string, bool, error) {
	v, err := s.client.Get(context.Background(), redisPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(key, value string) error {
	return s.client.Set(context.Background(), redisPrefix+key, value, 0).Err()
}

func (s *Redis) Delete(key string) error {
	return s.client.Del(context.Background(), redisPrefix+key).Err()
}

func (s *Redis) Close() error {
	return s.client.Close()
}
