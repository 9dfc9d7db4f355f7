// Copyright 2023 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2023 Institute of the Czech National Corpus,
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

package eval

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/fs"
)

const (
	dfltWaitBackoffInitialInterval = 200 * time.Millisecond
	dfltWaitBackoffMaxElapsedTime  = 2 * time.Minute
)

var (
	ErrCacheEntryNotFound    = errors.New("cache entry not found")
	ErrCacheEntryNotReadyYet = errors.New("cache entry not ready yet")
)

// CacheEntry represents a single cached evaluation, either a finished
// one or a promised one which is still being computed (FulfilledAt is
// zero in such case).
type CacheEntry struct {
	PromisedAt  time.Time
	FulfilledAt time.Time
	Result      Result
	Err         error
}

// ResultCache keeps finished evaluation results in memory so that
// repeated requests for an unchanged file pair do not trigger the
// whole comparison again. File modification times are part of the
// cache key which means replacing a file invalidates its entries
// without any extra bookkeeping.
type ResultCache struct {
	data *collections.ConcurrentMap[string, CacheEntry]
	loc  *time.Location
}

func (cache *ResultCache) mkKey(goldPath, systemPath string, opts Options) string {
	enc := sha1.New()
	for _, p := range []string{goldPath, systemPath} {
		enc.Write([]byte(p))
		mTime, err := fs.GetFileMtime(p)
		if err == nil {
			enc.Write([]byte(mTime.Format("2006-01-02T15:04:05-0700")))
		}
	}
	enc.Write([]byte(opts.TreebankType))
	if opts.EvalDeprels {
		enc.Write([]byte("deprels"))
	}
	return hex.EncodeToString(enc.Sum(nil))
}

func (cache *ResultCache) Contains(goldPath, systemPath string, opts Options) bool {
	return cache.data.HasKey(cache.mkKey(goldPath, systemPath, opts))
}

func (cache *ResultCache) Len() int {
	return cache.data.Len()
}

// Promise registers an evaluation which is about to start and runs fn
// in a separate goroutine. Until fn returns, Get reports the entry as
// not ready yet and waits for it. The returned channel provides the
// fulfilled entry (exactly one item, then the channel is closed).
func (cache *ResultCache) Promise(
	goldPath, systemPath string,
	opts Options,
	fn func() (Result, error),
) <-chan CacheEntry {
	entry := CacheEntry{
		PromisedAt: time.Now().In(cache.loc),
	}
	entryKey := cache.mkKey(goldPath, systemPath, opts)
	cache.data.Set(entryKey, entry)
	ans := make(chan CacheEntry)
	go func(entry2 CacheEntry) {
		entry2.Result, entry2.Err = fn()
		entry2.FulfilledAt = time.Now().In(cache.loc)
		cache.data.Set(entryKey, entry2)
		ans <- entry2
		close(ans)
	}(entry)
	return ans
}

// Get provides a cached evaluation result. In case the entry exists
// but is promised only, the call blocks (with an exponential backoff)
// until the result is available. For a missing entry the function
// returns ErrCacheEntryNotFound without waiting.
func (cache *ResultCache) Get(goldPath, systemPath string, opts Options) (CacheEntry, error) {
	entryKey := cache.mkKey(goldPath, systemPath, opts)
	operation := func() (CacheEntry, error) {
		entry, ok := cache.data.GetWithTest(entryKey)
		if !ok {
			e := CacheEntry{
				Err:         ErrCacheEntryNotFound,
				FulfilledAt: time.Now().In(cache.loc),
			}
			return e, backoff.Permanent(ErrCacheEntryNotFound)
		}
		if entry.FulfilledAt.IsZero() {
			entry.Err = ErrCacheEntryNotReadyYet
			return entry, ErrCacheEntryNotReadyYet
		}
		return entry, nil
	}
	bkoff := backoff.NewExponentialBackOff()
	bkoff.InitialInterval = dfltWaitBackoffInitialInterval
	bkoff.MaxElapsedTime = dfltWaitBackoffMaxElapsedTime
	return backoff.RetryWithData(operation, bkoff)
}

func NewResultCache(location *time.Location) *ResultCache {
	return &ResultCache{
		data: collections.NewConcurrentMap[string, CacheEntry](),
		loc:  location,
	}
}
