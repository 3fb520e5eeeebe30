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
	"errors"

	"github.com/defsub/marquee/config"
	mgorm "github.com/defsub/marquee/lib/gorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Entry struct {
	mgorm.Model
	Name  string `gorm:"uniqueIndex;size:191;not null"`
	Value string
}

type DB struct {
	db *gorm.DB
}

func openDB(storeConfig config.StoreConfig) (*DB, error) {
	var glog logger.Interface
	if storeConfig.LogMode == false {
		glog = logger.Discard
	} else {
		glog = logger.Default
	}
	cfg := &gorm.Config{
		Logger: glog,
	}

	var db *gorm.DB
	var err error
	switch storeConfig.Driver {
	case config.StoreSQLite:
		db, err = gorm.Open(sqlite.Open(storeConfig.Source), cfg)
	case config.StorePostgres:
		db, err = gorm.Open(postgres.Open(storeConfig.Source), cfg)
	case config.StoreMySQL:
		db, err = gorm.Open(mysql.Open(storeConfig.Source), cfg)
	default:
		err = ErrDriver
	}
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

func (s *DB) Get(key string) (string, bool, error) {
	var entry Entry
	err := s.db.Where("name = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *DB) Set(key, value string) error {
	entry := Entry{Name: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Delete removes the row outright so the key can be set again.
func (s *DB) Delete(key string) error {
	return s.db.Unscoped().Where("name = ?", key).Delete(&Entry{}).Error
}

func (s *DB) Close() error {
	conn, err := s.db.DB()
	if err != nil {
		return err
	}
	return conn.Close()
}
