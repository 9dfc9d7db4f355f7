// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
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

	"github.com/stretchr/testify/assert"
)

func evalWithTreebankType(t *testing.T, goldDoc, systemDoc, tbType string) Result {
	t.Helper()
	return mustEvaluate(t, goldDoc, systemDoc, Options{EvalDeprels: true, TreebankType: tbType})
}

func TestEnhancedSubtypesDistinguishELASFromEULAS(t *testing.T) {
	goldDoc := udDoc(
		udrow("1", "naar", "naar", "ADP", "X", "_", "2", "case", "_"),
		udrow("2", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|3:obl:naar"),
		udrow("3", "gaan", "gaan", "VERB", "X", "_", "2", "dep", "_"),
	)
	systemDoc := udDoc(
		udrow("1", "naar", "naar", "ADP", "X", "_", "2", "case", "_"),
		udrow("2", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|3:obl:om"),
		udrow("3", "gaan", "gaan", "VERB", "X", "_", "2", "dep", "_"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	// the subtype difference hurts ELAS but not EULAS
	assert.Equal(t, 1, res[MetricELAS].Correct)
	assert.Equal(t, 2, res[MetricEULAS].Correct)
	assert.Equal(t, 2, res[MetricELAS].GoldTotal)
	assert.Equal(t, 2, res[MetricELAS].SystemTotal)
}

func TestEnhancedEmptyEdgeSetsScoreZero(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "2", "nsubj", "_"),
		udrow("2", "b", "b", "X", "X", "_", "0", "root", "_"),
	)
	res := evalWithTreebankType(t, doc, doc, "0")
	elas := res[MetricELAS]
	assert.Equal(t, 0, elas.GoldTotal)
	assert.Equal(t, 0, elas.SystemTotal)
	assert.Equal(t, 0.0, elas.F1)
	assert.Equal(t, 0.0, elas.Precision)
	assert.Equal(t, 0.0, elas.Recall)
}

func TestEnhancedGappingFilterExcludesCollapsedEdges(t *testing.T) {
	// an identical collapsed edge on both sides, but attached to
	// different basic relations
	goldDoc := udDoc(
		udrow("1", "kolo", "kolo", "NOUN", "X", "_", "2", "nmod", "2:conj:en>obj"),
		udrow("2", "koupil", "koupit", "VERB", "X", "_", "0", "root", "0:root"),
	)
	systemDoc := udDoc(
		udrow("1", "kolo", "kolo", "NOUN", "X", "_", "2", "obl", "2:conj:en>obj"),
		udrow("2", "koupil", "koupit", "VERB", "X", "_", "0", "root", "0:root"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	assert.Equal(t, 2, res[MetricELAS].Correct)

	// with the gapping filter the collapsed edge no longer matches:
	// both sides replace it with their own basic relation
	res = evalWithTreebankType(t, goldDoc, systemDoc, "1")
	assert.Equal(t, 2, res[MetricELAS].GoldTotal)
	assert.Equal(t, 2, res[MetricELAS].SystemTotal)
	assert.Equal(t, 1, res[MetricELAS].Correct)
}

func TestEnhancedGappingFilterDeduplicates(t *testing.T) {
	// the collapsed edge comes first, so the equal plain edge that
	// follows is recognized as a duplicate of its replacement
	doc := udDoc(
		udrow("1", "kolo", "kolo", "NOUN", "X", "_", "2", "obj", "2:conj:en>iobj|2:obj"),
		udrow("2", "koupil", "koupit", "VERB", "X", "_", "0", "root", "0:root"),
	)
	res := evalWithTreebankType(t, doc, doc, "1")
	assert.Equal(t, 2, res[MetricELAS].GoldTotal)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
}

func TestEnhancedSharedParentsFilter(t *testing.T) {
	goldDoc := udDoc(
		udrow("1", "zpívá", "zpívat", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("2", "a", "a", "CCONJ", "X", "_", "3", "cc", "3:cc"),
		udrow("3", "tančí", "tančit", "VERB", "X", "_", "1", "conj", "1:conj:a"),
	)
	// the system additionally propagates the shared parent
	systemDoc := udDoc(
		udrow("1", "zpívá", "zpívat", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("2", "a", "a", "CCONJ", "X", "_", "3", "cc", "3:cc"),
		udrow("3", "tančí", "tančit", "VERB", "X", "_", "1", "conj", "1:conj:a|0:root"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	assert.Equal(t, 3, res[MetricELAS].GoldTotal)
	assert.Equal(t, 4, res[MetricELAS].SystemTotal)

	// the filter reduces the conj word to its conj edge on both sides
	res = evalWithTreebankType(t, goldDoc, systemDoc, "2")
	assert.Equal(t, 3, res[MetricELAS].GoldTotal)
	assert.Equal(t, 3, res[MetricELAS].SystemTotal)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
}

func TestEnhancedSharedDependentsFilter(t *testing.T) {
	// the gold side propagates the object to both conjuncts, the
	// system side annotates only the basic edge
	goldDoc := udDoc(
		udrow("1", "vaří", "vařit", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("2", "a", "a", "CCONJ", "X", "_", "3", "cc", "3:cc"),
		udrow("3", "peče", "péct", "VERB", "X", "_", "1", "conj", "1:conj"),
		udrow("4", "maso", "maso", "NOUN", "X", "_", "1", "obj", "1:obj|3:obj"),
	)
	systemDoc := udDoc(
		udrow("1", "vaří", "vařit", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("2", "a", "a", "CCONJ", "X", "_", "3", "cc", "3:cc"),
		udrow("3", "peče", "péct", "VERB", "X", "_", "1", "conj", "1:conj"),
		udrow("4", "maso", "maso", "NOUN", "X", "_", "1", "obj", "1:obj"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	assert.Equal(t, 5, res[MetricELAS].GoldTotal)
	assert.Equal(t, 4, res[MetricELAS].SystemTotal)

	res = evalWithTreebankType(t, goldDoc, systemDoc, "3")
	assert.Equal(t, 4, res[MetricELAS].GoldTotal)
	assert.Equal(t, 4, res[MetricELAS].SystemTotal)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
}

func TestEnhancedControlFilter(t *testing.T) {
	// "he wants to leave": the subject is shared with the controlled
	// infinitive via an extra nsubj:xsubj edge on the gold side
	goldDoc := udDoc(
		udrow("1", "he", "he", "PRON", "X", "_", "2", "nsubj", "2:nsubj|4:nsubj:xsubj"),
		udrow("2", "wants", "want", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("3", "to", "to", "PART", "X", "_", "4", "mark", "4:mark"),
		udrow("4", "leave", "leave", "VERB", "X", "_", "2", "xcomp", "2:xcomp"),
	)
	systemDoc := udDoc(
		udrow("1", "he", "he", "PRON", "X", "_", "2", "nsubj", "2:nsubj"),
		udrow("2", "wants", "want", "VERB", "X", "_", "0", "root", "0:root"),
		udrow("3", "to", "to", "PART", "X", "_", "4", "mark", "4:mark"),
		udrow("4", "leave", "leave", "VERB", "X", "_", "2", "xcomp", "2:xcomp"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	assert.Equal(t, 5, res[MetricELAS].GoldTotal)
	assert.Equal(t, 4, res[MetricELAS].SystemTotal)

	res = evalWithTreebankType(t, goldDoc, systemDoc, "4")
	assert.Equal(t, 4, res[MetricELAS].GoldTotal)
	assert.Equal(t, 4, res[MetricELAS].SystemTotal)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
}

func TestEnhancedRelativeClauseFilter(t *testing.T) {
	// "the man who came": gold uses the ref edge plus the external
	// argument edge, the system only annotates the plain tree
	goldDoc := udDoc(
		udrow("1", "man", "man", "NOUN", "X", "_", "0", "root", "0:root|3:nsubj"),
		udrow("2", "who", "who", "PRON", "X", "_", "3", "nsubj", "1:ref"),
		udrow("3", "came", "come", "VERB", "X", "_", "1", "acl:relcl", "1:acl:relcl"),
	)
	systemDoc := udDoc(
		udrow("1", "man", "man", "NOUN", "X", "_", "0", "root", "0:root"),
		udrow("2", "who", "who", "PRON", "X", "_", "3", "nsubj", "3:nsubj"),
		udrow("3", "came", "come", "VERB", "X", "_", "1", "acl:relcl", "1:acl:relcl"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "0")
	assert.Equal(t, 4, res[MetricELAS].GoldTotal)
	assert.Equal(t, 3, res[MetricELAS].SystemTotal)

	// the ref edge becomes the basic nsubj relation and the external
	// argument edge (man as subject of its own relative clause verb)
	// is dropped
	res = evalWithTreebankType(t, goldDoc, systemDoc, "5")
	assert.Equal(t, 3, res[MetricELAS].GoldTotal)
	assert.Equal(t, 3, res[MetricELAS].SystemTotal)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
}

func TestEnhancedCaseInfoFilter(t *testing.T) {
	goldDoc := udDoc(
		udrow("1", "naar", "naar", "ADP", "X", "_", "2", "case", "_"),
		udrow("2", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|3:obl:naar"),
		udrow("3", "gaan", "gaan", "VERB", "X", "_", "2", "dep", "2:obl:relcl"),
	)
	systemDoc := udDoc(
		udrow("1", "naar", "naar", "ADP", "X", "_", "2", "case", "_"),
		udrow("2", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|3:obl:om"),
		udrow("3", "gaan", "gaan", "VERB", "X", "_", "2", "dep", "2:obl:relcl"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "6")
	// obl:naar and obl:om are both reduced to obl, while the
	// obl:relcl universal extension stays untouched
	assert.Equal(t, 100.0, res[MetricELAS].F1)
	assert.Equal(t, 3, res[MetricELAS].Correct)
}

func TestEnhancedCaseStrippingDeduplicates(t *testing.T) {
	// two obl edges differing only in their lexical subtype collapse
	// into a single edge once the subtypes are stripped
	goldDoc := udDoc(
		udrow("1", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|2:obl:naar|2:obl:voor"),
		udrow("2", "gaan", "gaan", "VERB", "X", "_", "1", "dep", "_"),
	)
	systemDoc := udDoc(
		udrow("1", "huis", "huis", "NOUN", "X", "_", "0", "root", "0:root|2:obl:om"),
		udrow("2", "gaan", "gaan", "VERB", "X", "_", "1", "dep", "_"),
	)
	res := evalWithTreebankType(t, goldDoc, systemDoc, "6")
	assert.Equal(t, 2, res[MetricELAS].GoldTotal)
	assert.Equal(t, 2, res[MetricELAS].SystemTotal)
	assert.Equal(t, 2, res[MetricELAS].Correct)
	assert.Equal(t, 100.0, res[MetricELAS].Precision)
}

func TestEnhancedCombinedFilters(t *testing.T) {
	goldDoc := udDoc(
		udrow("1", "kolo", "kolo", "NOUN", "X", "_", "2", "nmod", "2:conj:en>obj|2:nmod:van"),
		udrow("2", "koupil", "koupit", "VERB", "X", "_", "0", "root", "0:root"),
	)
	systemDoc := udDoc(
		udrow("1", "kolo", "kolo", "NOUN", "X", "_", "2", "nmod", "2:nmod:voor"),
		udrow("2", "koupil", "koupit", "VERB", "X", "_", "0", "root", "0:root"),
	)
	// with "16" the gapping substitute (the basic nmod edge) and the
	// case-stripped 2:nmod edge converge into one on the gold side
	res := evalWithTreebankType(t, goldDoc, systemDoc, "16")
	assert.Equal(t, 2, res[MetricELAS].GoldTotal)
	assert.Equal(t, 2, res[MetricELAS].SystemTotal)
	assert.Equal(t, 2, res[MetricELAS].Correct)
	assert.Equal(t, 100.0, res[MetricELAS].F1)
	assert.Equal(t, 100.0, res[MetricEULAS].F1)
}
