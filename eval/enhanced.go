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

import "udeval/ud"

// enhancedHeadsMatch compares the heads of a gold and a system
// enhanced edge. Roots match roots, references to elided nodes match
// when both sides name the same node id, and word references match
// when the system head is aligned exactly with the gold head.
func enhancedHeadsMatch(a *Alignment, gold, system enhancedHead) bool {
	switch {
	case gold.root || system.root:
		return gold.root && system.root
	case gold.empty != "" || system.empty != "":
		return gold.empty != "" && gold.empty == system.empty
	case gold.word == nil || system.word == nil:
		return false
	default:
		mapped, ok := a.goldOf(system.word)
		return ok && mapped == gold.word
	}
}

func universalPathsEqual(p1, p2 []string) bool {
	if len(p1) != len(p2) {
		return false
	}
	for i := range p1 {
		if universalDeprel(p1[i]) != universalDeprel(p2[i]) {
			return false
		}
	}
	return true
}

// enhancedScores computes ELAS and EULAS in a single pass. Totals are
// the numbers of enhanced edges remaining after treebank-type
// filtering, summed over all words of each side (not only the aligned
// ones). For every aligned word pair, each gold edge is compared with
// each system edge; an agreeing head with a fully equal relation path
// counts for ELAS, an agreeing head with per-step universal equality
// counts for EULAS.
func enhancedScores(a *Alignment, tbType ud.TreebankType) (elas, eulas *Score) {
	edgesOf := func(w *Word) []EnhancedEdge {
		return w.Enhanced
	}
	if tbType.HasFilters() {
		filtered := make(map[*Word][]EnhancedEdge)
		edgesOf = func(w *Word) []EnhancedEdge {
			edges, ok := filtered[w]
			if !ok {
				edges = applyTreebankFilters(w, tbType)
				filtered[w] = edges
			}
			return edges
		}
	}

	goldTotal := 0
	for _, w := range a.gold.words {
		goldTotal += len(edgesOf(w))
	}
	systemTotal := 0
	for _, w := range a.system.words {
		systemTotal += len(edgesOf(w))
	}

	correctFull, correctUniversal := 0, 0
	for _, pair := range a.matched {
		for _, ge := range edgesOf(pair.GoldWord) {
			for _, se := range edgesOf(pair.SystemWord) {
				if !enhancedHeadsMatch(a, ge.head, se.head) {
					continue
				}
				if pathsEqual(ge.path, se.path) {
					correctFull++
				}
				if universalPathsEqual(ge.path, se.path) {
					correctUniversal++
				}
			}
		}
	}
	alignedTotal := len(a.matched)
	elas = newAlignedScore(goldTotal, systemTotal, correctFull, alignedTotal)
	eulas = newAlignedScore(goldTotal, systemTotal, correctUniversal, alignedTotal)
	return
}
