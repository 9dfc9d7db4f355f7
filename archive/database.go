// Copyright 2022 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2022 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package archive

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

const (
	dfltConnRetryInitialInterval = 500 * time.Millisecond
	dfltConnRetryMaxElapsedTime  = 30 * time.Second
)

// DatabaseSetup configures the connection to the archive database.
type DatabaseSetup struct {
	Host   string `json:"host"`
	User   string `json:"user"`
	Passwd string `json:"passwd"`
	Name   string `json:"db"`
}

// Adapter is a thin wrapper around the archive database connection.
// A single instance is meant to be shared by all the archive readers
// and writers for the whole service lifetime.
type Adapter struct {
	db     *sql.DB
	conf   *DatabaseSetup
	dbName string
}

func (a *Adapter) DB() *sql.DB {
	return a.db
}

func (a *Adapter) DBName() string {
	return a.dbName
}

func (a *Adapter) Conf() *DatabaseSetup {
	return a.conf
}

// WaitForReady pings the database with an exponential backoff until
// it responds or the backoff gives up. Cancelling ctx stops the
// retrying immediately. The method is meant to be called once after
// OpenDB as sql.Open itself does not touch the server yet.
func (a *Adapter) WaitForReady(ctx context.Context) error {
	operation := func() error {
		err := a.db.PingContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			log.Warn().Err(err).Msg("waiting for the archive database to become reachable")
		}
		return err
	}
	bkoff := backoff.NewExponentialBackOff()
	bkoff.InitialInterval = dfltConnRetryInitialInterval
	bkoff.MaxElapsedTime = dfltConnRetryMaxElapsedTime
	return backoff.Retry(operation, bkoff)
}

func OpenDB(conf *DatabaseSetup) (*Adapter, error) {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = conf.Host
	mconf.User = conf.User
	mconf.Passwd = conf.Passwd
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	mconf.Params = map[string]string{"autocommit": "true"}
	db, err := sql.Open("mysql", mconf.FormatDSN())
	if err != nil {
		return nil, err
	}
	return &Adapter{db: db, dbName: mconf.DBName, conf: conf}, nil
}
