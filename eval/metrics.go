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

// spansScore compares two ordered span lists by walking them with two
// pointers ordered by span start. Spans starting at the same offset
// are paired and count as correct when they also end at the same
// offset. Used for the Tokens and Sentences metrics.
func spansScore(goldSpans, systemSpans []Span) *Score {
	correct, gi, si := 0, 0, 0
	for gi < len(goldSpans) && si < len(systemSpans) {
		switch {
		case systemSpans[si].Start < goldSpans[gi].Start:
			si++
		case goldSpans[gi].Start < systemSpans[si].Start:
			gi++
		default:
			if goldSpans[gi].End == systemSpans[si].End {
				correct++
			}
			gi++
			si++
		}
	}
	return newScore(len(goldSpans), len(systemSpans), correct)
}

// matchFunc decides whether an aligned word pair agrees on the
// attributes relevant for one metric.
type matchFunc func(a *Alignment, gold, system *Word) bool

// filterFunc restricts a metric to a subset of words, applied to the
// gold and system word lists independently for the totals and to the
// gold side of each aligned pair for the correct count.
type filterFunc func(w *Word) bool

// alignmentScore is the shared machinery of all word-level metrics.
// Without a match function it scores the alignment itself (the Words
// metric). With one, every aligned pair passing the filter is checked
// for agreement and the aligned-words accuracy is reported as well.
func alignmentScore(a *Alignment, filter filterFunc, match matchFunc) *Score {
	goldTotal := len(a.gold.words)
	systemTotal := len(a.system.words)
	alignedTotal := len(a.matched)
	if filter != nil {
		goldTotal, systemTotal, alignedTotal = 0, 0, 0
		for _, w := range a.gold.words {
			if filter(w) {
				goldTotal++
			}
		}
		for _, w := range a.system.words {
			if filter(w) {
				systemTotal++
			}
		}
		for _, pair := range a.matched {
			if filter(pair.GoldWord) {
				alignedTotal++
			}
		}
	}
	if match == nil {
		return newScore(goldTotal, systemTotal, alignedTotal)
	}
	correct := 0
	for _, pair := range a.matched {
		if filter != nil && !filter(pair.GoldWord) {
			continue
		}
		if match(a, pair.GoldWord, pair.SystemWord) {
			correct++
		}
	}
	return newAlignedScore(goldTotal, systemTotal, correct, alignedTotal)
}

// parentsMatch translates the system word's parent into gold words via
// the alignment and compares it with the gold parent. A system parent
// without a gold counterpart can never match. Roots match roots.
func parentsMatch(a *Alignment, gold, system *Word) bool {
	if system.parent == nil {
		return gold.parent == nil
	}
	mapped, ok := a.goldOf(system.parent)
	if !ok {
		return false
	}
	return mapped == gold.parent
}

func uposMatch(_ *Alignment, gold, system *Word) bool {
	return gold.UPos == system.UPos
}

func xposMatch(_ *Alignment, gold, system *Word) bool {
	return gold.XPos == system.XPos
}

func ufeatsMatch(_ *Alignment, gold, system *Word) bool {
	return gold.Feats.Equal(system.Feats)
}

func allTagsMatch(a *Alignment, gold, system *Word) bool {
	return uposMatch(a, gold, system) && xposMatch(a, gold, system) && ufeatsMatch(a, gold, system)
}

// lemmasMatch treats an underscore lemma on the gold side as "not
// annotated", in which case any system lemma is accepted.
func lemmasMatch(_ *Alignment, gold, system *Word) bool {
	return gold.Lemma == "_" || gold.Lemma == system.Lemma
}

func lasMatch(a *Alignment, gold, system *Word) bool {
	return parentsMatch(a, gold, system) && gold.UDeprel == system.UDeprel
}

func blexMatch(a *Alignment, gold, system *Word) bool {
	return lasMatch(a, gold, system) && lemmasMatch(a, gold, system)
}

// mlasMatch requires, on top of the labeled attachment, agreement in
// UPOS and universal features of the word itself and of all its
// functional children, which must pairwise align in order.
func mlasMatch(a *Alignment, gold, system *Word) bool {
	if !lasMatch(a, gold, system) {
		return false
	}
	if gold.UPos != system.UPos || gold.featsUniversal != system.featsUniversal {
		return false
	}
	if len(gold.functionalChildren) != len(system.functionalChildren) {
		return false
	}
	for i, gc := range gold.functionalChildren {
		sc := system.functionalChildren[i]
		mapped, ok := a.goldOf(sc)
		if !ok || mapped != gc {
			return false
		}
		if gc.UDeprel != sc.UDeprel || gc.UPos != sc.UPos || gc.featsUniversal != sc.featsUniversal {
			return false
		}
	}
	return true
}

func contentWordFilter(w *Word) bool {
	return w.isContent
}
