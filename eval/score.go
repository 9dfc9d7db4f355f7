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

import "fmt"

// Metric identifies one of the evaluation scores.
type Metric string

const (
	MetricTokens    Metric = "Tokens"
	MetricSentences Metric = "Sentences"
	MetricWords     Metric = "Words"
	MetricUPOS      Metric = "UPOS"
	MetricXPOS      Metric = "XPOS"
	MetricUFeats    Metric = "UFeats"
	MetricAllTags   Metric = "AllTags"
	MetricLemmas    Metric = "Lemmas"
	MetricUAS       Metric = "UAS"
	MetricLAS       Metric = "LAS"
	MetricCLAS      Metric = "CLAS"
	MetricMLAS      Metric = "MLAS"
	MetricBLEX      Metric = "BLEX"
	MetricELAS      Metric = "ELAS"
	MetricEULAS     Metric = "EULAS"
)

// AllMetrics lists the metrics in their canonical reporting order.
var AllMetrics = []Metric{
	MetricTokens,
	MetricSentences,
	MetricWords,
	MetricUPOS,
	MetricXPOS,
	MetricUFeats,
	MetricAllTags,
	MetricLemmas,
	MetricUAS,
	MetricLAS,
	MetricCLAS,
	MetricMLAS,
	MetricBLEX,
	MetricELAS,
	MetricEULAS,
}

// IsDependencyMetric tells whether the metric requires head and
// relation annotation. Dependency metrics are skipped entirely when
// dependency evaluation is switched off.
func (m Metric) IsDependencyMetric() bool {
	switch m {
	case MetricUAS, MetricLAS, MetricCLAS, MetricMLAS, MetricBLEX, MetricELAS, MetricEULAS:
		return true
	}
	return false
}

func (m Metric) Validate() error {
	for _, known := range AllMetrics {
		if m == known {
			return nil
		}
	}
	return fmt.Errorf("unknown metric '%s'", string(m))
}

// Score holds the counts of one metric along with the derived
// precision, recall and F1, all expressed as percentages in [0, 100].
// For metrics computed over aligned words, AlignedTotal carries the
// number of alignment pairs entering the comparison and
// AlignedAccuracy the share of correct ones, providing an
// "accuracy given correct segmentation" view.
type Score struct {
	GoldTotal       int      `json:"goldTotal"`
	SystemTotal     int      `json:"systemTotal"`
	Correct         int      `json:"correct"`
	AlignedTotal    *int     `json:"alignedTotal,omitempty"`
	Precision       float64  `json:"precision"`
	Recall          float64  `json:"recall"`
	F1              float64  `json:"f1"`
	AlignedAccuracy *float64 `json:"alignedAccuracy,omitempty"`
}

// newScore derives the percentage values from raw counts. Each ratio
// is defined as zero when its denominator is zero and F1 additionally
// requires both totals to be nonzero.
func newScore(goldTotal, systemTotal, correct int) *Score {
	ans := &Score{
		GoldTotal:   goldTotal,
		SystemTotal: systemTotal,
		Correct:     correct,
	}
	if systemTotal > 0 {
		ans.Precision = 100 * float64(correct) / float64(systemTotal)
	}
	if goldTotal > 0 {
		ans.Recall = 100 * float64(correct) / float64(goldTotal)
	}
	if goldTotal > 0 && systemTotal > 0 {
		ans.F1 = 200 * float64(correct) / float64(goldTotal+systemTotal)
	}
	return ans
}

// newAlignedScore is newScore with the additional aligned-words view.
func newAlignedScore(goldTotal, systemTotal, correct, alignedTotal int) *Score {
	ans := newScore(goldTotal, systemTotal, correct)
	ans.AlignedTotal = &alignedTotal
	accuracy := 0.0
	if alignedTotal > 0 {
		accuracy = 100 * float64(correct) / float64(alignedTotal)
	}
	ans.AlignedAccuracy = &accuracy
	return ans
}

// Result maps metric names to their scores. Dependency metric keys
// are absent when the evaluation ran without dependency scoring.
type Result map[Metric]*Score
