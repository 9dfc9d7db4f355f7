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
	"fmt"

	"udeval/conllu"
	"udeval/ud"
)

// Options configures a single evaluation run.
type Options struct {

	// EvalDeprels enables the dependency metrics (UAS, LAS, CLAS,
	// MLAS, BLEX, ELAS, EULAS). When disabled, head and relation
	// columns are not even parsed and the respective keys are
	// missing from the result.
	EvalDeprels bool `json:"evalDeprels"`

	// TreebankType is a string of digit flags ('0' to '6') selecting
	// which enhancement phenomena are filtered out before the
	// enhanced metrics are computed. '0' (or empty) applies none.
	TreebankType string `json:"treebankType"`
}

func (opts Options) Validate() error {
	_, err := ud.ParseTreebankType(opts.TreebankType)
	return err
}

func DefaultOptions() Options {
	return Options{
		EvalDeprels:  true,
		TreebankType: "0",
	}
}

// Evaluate compares a system-produced corpus against a gold standard
// and returns all the requested metric scores. Both inputs must
// describe the same underlying text; token and sentence boundaries
// may differ. The returned error is a TextMismatchError or a
// MalformedTreeError for broken inputs, otherwise nil.
func Evaluate(goldSentences, systemSentences []conllu.Sentence, opts Options) (Result, error) {
	tbType, err := ud.ParseTreebankType(opts.TreebankType)
	if err != nil {
		return nil, err
	}
	gold, err := BuildRepresentation(goldSentences, opts.EvalDeprels)
	if err != nil {
		return nil, fmt.Errorf("gold file: %w", err)
	}
	system, err := BuildRepresentation(systemSentences, opts.EvalDeprels)
	if err != nil {
		return nil, fmt.Errorf("system file: %w", err)
	}
	if err := CheckTextsMatch(gold, system); err != nil {
		return nil, err
	}
	alignment := AlignWords(gold, system)
	return computeScores(alignment, opts.EvalDeprels, tbType), nil
}

// EvaluateFiles is Evaluate over two CoNLL-U files on disk.
func EvaluateFiles(goldPath, systemPath string, opts Options) (Result, error) {
	goldSentences, err := conllu.ReadFile(goldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gold file: %w", err)
	}
	systemSentences, err := conllu.ReadFile(systemPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load system file: %w", err)
	}
	return Evaluate(goldSentences, systemSentences, opts)
}

func computeScores(a *Alignment, evalDeprels bool, tbType ud.TreebankType) Result {
	ans := Result{
		MetricTokens:    spansScore(a.gold.tokens, a.system.tokens),
		MetricSentences: spansScore(a.gold.sentences, a.system.sentences),
		MetricWords:     alignmentScore(a, nil, nil),
		MetricUPOS:      alignmentScore(a, nil, uposMatch),
		MetricXPOS:      alignmentScore(a, nil, xposMatch),
		MetricUFeats:    alignmentScore(a, nil, ufeatsMatch),
		MetricAllTags:   alignmentScore(a, nil, allTagsMatch),
		MetricLemmas:    alignmentScore(a, nil, lemmasMatch),
	}
	if evalDeprels {
		ans[MetricUAS] = alignmentScore(a, nil, parentsMatch)
		ans[MetricLAS] = alignmentScore(a, nil, lasMatch)
		ans[MetricCLAS] = alignmentScore(a, contentWordFilter, lasMatch)
		ans[MetricMLAS] = alignmentScore(a, contentWordFilter, mlasMatch)
		ans[MetricBLEX] = alignmentScore(a, contentWordFilter, blexMatch)
		ans[MetricELAS], ans[MetricEULAS] = enhancedScores(a, tbType)
	}
	return ans
}
