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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func createTestingResult() Result {
	return Result{
		MetricWords: &Score{GoldTotal: 10, SystemTotal: 10, Correct: 10, Precision: 100, Recall: 100, F1: 100},
		MetricLAS:   &Score{GoldTotal: 10, SystemTotal: 10, Correct: 8, Precision: 80, Recall: 80, F1: 80},
	}
}

func TestCachePromiseDelivers(t *testing.T) {
	cache := NewResultCache(time.UTC)
	promise := cache.Promise("gold.conllu", "system.conllu", DefaultOptions(), func() (Result, error) {
		return createTestingResult(), nil
	})
	entry := <-promise
	assert.NoError(t, entry.Err)
	assert.Equal(t, createTestingResult(), entry.Result)
	assert.False(t, entry.FulfilledAt.IsZero())
}

func TestCacheGetMissingEntry(t *testing.T) {
	cache := NewResultCache(time.UTC)
	entry, err := cache.Get("gold.conllu", "system.conllu", DefaultOptions())
	assert.ErrorIs(t, err, ErrCacheEntryNotFound)
	assert.ErrorIs(t, entry.Err, ErrCacheEntryNotFound)
}

func TestCacheGetWaitsForPromisedEntry(t *testing.T) {
	cache := NewResultCache(time.UTC)
	cache.Promise("gold.conllu", "system.conllu", DefaultOptions(), func() (Result, error) {
		time.Sleep(100 * time.Millisecond)
		return createTestingResult(), nil
	})
	entry, err := cache.Get("gold.conllu", "system.conllu", DefaultOptions())
	assert.NoError(t, err)
	assert.NoError(t, entry.Err)
	assert.Equal(t, createTestingResult(), entry.Result)
}

func TestCacheKeyIncludesOptions(t *testing.T) {
	cache := NewResultCache(time.UTC)
	opts := Options{EvalDeprels: true, TreebankType: "12"}
	promise := cache.Promise("gold.conllu", "system.conllu", opts, func() (Result, error) {
		return createTestingResult(), nil
	})
	<-promise
	assert.True(t, cache.Contains("gold.conllu", "system.conllu", opts))
	assert.False(t, cache.Contains("gold.conllu", "system.conllu", DefaultOptions()))
	assert.False(t, cache.Contains("other.conllu", "system.conllu", opts))
	assert.Equal(t, 1, cache.Len())
}
