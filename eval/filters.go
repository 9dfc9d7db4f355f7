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
	"strings"

	"udeval/ud"
)

// The functions in this file normalize the enhanced edge set of a word
// before the enhanced metrics compare gold against system. Each filter
// removes or rewrites edges of one annotation phenomenon that the
// evaluated treebank does not annotate, so that a system producing the
// full enhanced repertoire is not punished for it. Filters never
// modify the word itself. They operate copy-on-write, so the word's
// stored edge set stays intact for subsequent evaluations with a
// different configuration.

// applyTreebankFilters runs the filters enabled by tbType in their
// fixed order and returns the resulting edge list. Substitutions made
// by the gapping and relative clause filters, as well as subtype
// stripping, can leave behind edges equal to an already present one,
// so the final list is deduplicated. Otherwise a doubled edge would
// inflate the correct count past the totals.
func applyTreebankFilters(w *Word, tbType ud.TreebankType) []EnhancedEdge {
	edges := w.Enhanced
	if !tbType.HasFilters() {
		return edges
	}
	if tbType.NoGapping {
		edges = filterGapping(w, edges)
	}
	if tbType.NoSharedParentsInCoordination {
		edges = filterSharedParents(edges)
	}
	if tbType.NoSharedDependentsInCoordination {
		edges = filterSharedDependents(w, edges)
	}
	if tbType.NoControl {
		edges = filterControl(edges)
	}
	if tbType.NoExternalArgumentsOfRelativeClauses {
		edges = filterExternalArguments(w, edges)
	}
	if tbType.NoCaseInfo {
		edges = stripCaseSubtypes(edges)
	}
	return dedupEdges(edges)
}

func dedupEdges(edges []EnhancedEdge) []EnhancedEdge {
	if len(edges) < 2 {
		return edges
	}
	ans := make([]EnhancedEdge, 0, len(edges))
	for _, e := range edges {
		if !containsEdge(ans, e) {
			ans = append(ans, e)
		}
	}
	return ans
}

// basicEdge rebuilds the word's basic-tree relation as an enhanced
// edge. It substitutes edges removed by the gapping and relative
// clause filters. For a root word the head reference stays empty,
// which never matches anything during scoring.
func basicEdge(w *Word) EnhancedEdge {
	return EnhancedEdge{head: enhancedHead{word: w.parent}, path: []string{w.UDeprel}}
}

func pathsEqual(p1, p2 []string) bool {
	if len(p1) != len(p2) {
		return false
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			return false
		}
	}
	return true
}

func edgesEqual(e1, e2 EnhancedEdge) bool {
	return e1.head == e2.head && pathsEqual(e1.path, e2.path)
}

func containsEdge(edges []EnhancedEdge, e EnhancedEdge) bool {
	for _, other := range edges {
		if edgesEqual(other, e) {
			return true
		}
	}
	return false
}

// filterGapping replaces every collapsed multi-step edge (the way
// gapped constructions surface after eliding empty nodes) with the
// word's basic relation. Plain edges equal to an already collected one
// are dropped, as the substitution can introduce duplicates.
func filterGapping(w *Word, edges []EnhancedEdge) []EnhancedEdge {
	var ans []EnhancedEdge
	for _, e := range edges {
		if len(e.path) > 1 {
			ans = append(ans, basicEdge(w))
			continue
		}
		if containsEdge(ans, e) {
			continue
		}
		ans = append(ans, e)
	}
	return ans
}

// filterSharedParents reduces the edge set of a conjunct to its conj
// relation alone: when the treebank does not propagate parents across
// coordination, any other edge of a conj node is spurious. Words
// without a plain conj edge keep their edges untouched.
func filterSharedParents(edges []EnhancedEdge) []EnhancedEdge {
	ans := edges
	for _, e := range edges {
		if len(e.path) == 1 && strings.HasPrefix(e.path[0], "conj") {
			ans = []EnhancedEdge{e}
		}
	}
	return ans
}

// headIsBasicParent tells whether an enhanced head reference points at
// the word's basic-tree parent (or at the root for root words).
func headIsBasicParent(w *Word, h enhancedHead) bool {
	if h.empty != "" {
		return false
	}
	if h.root {
		return w.parent == nil
	}
	return h.word != nil && h.word == w.parent
}

// filterSharedDependents drops edges added by propagating a dependent
// to multiple coordinated parents. An edge is spurious when another
// edge with the same relation path attaches the word to its basic
// parent while this one attaches it elsewhere.
func filterSharedDependents(w *Word, edges []EnhancedEdge) []EnhancedEdge {
	var ans []EnhancedEdge
	for _, e := range edges {
		duplicate := false
		for _, other := range edges {
			if pathsEqual(e.path, other.path) && headIsBasicParent(w, other.head) && e.head != other.head {
				duplicate = true
				break
			}
		}
		if !duplicate {
			ans = append(ans, e)
		}
	}
	return ans
}

// filterControl removes subject edges attached to an xcomp head, i.e.
// the subjects of controlled predicates.
func filterControl(edges []EnhancedEdge) []EnhancedEdge {
	var ans []EnhancedEdge
	for _, e := range edges {
		if e.head.word != nil && e.head.word.UDeprel == "xcomp" && hasSubjectStep(e.path) {
			continue
		}
		ans = append(ans, e)
	}
	return ans
}

func hasSubjectStep(path []string) bool {
	for _, step := range path {
		if strings.HasPrefix(step, "nsubj") {
			return true
		}
	}
	return false
}

// filterExternalArguments handles relative clauses: a ref edge is
// replaced by the word's basic relation and the external-argument
// edge (an edge whose head is an acl word attached back to this very
// word, i.e. the edge closing a cycle) is removed.
func filterExternalArguments(w *Word, edges []EnhancedEdge) []EnhancedEdge {
	var ans []EnhancedEdge
	for _, e := range edges {
		switch {
		case len(e.path) > 0 && e.path[0] == "ref":
			ans = append(ans, basicEdge(w))
		case e.head.word != nil && strings.HasPrefix(e.head.word.UDeprel, "acl") && e.head.word.parent == w:
			// external argument link, skip
		default:
			ans = append(ans, e)
		}
	}
	return ans
}

// stripCaseSubtypes removes lexical subtype suffixes from case
// marking relations (obl:naar becomes obl) while keeping universal
// extensions like obl:relcl intact. Only plain two-part labels are
// rewritten.
func stripCaseSubtypes(edges []EnhancedEdge) []EnhancedEdge {
	ans := make([]EnhancedEdge, 0, len(edges))
	for _, e := range edges {
		path := e.path
		var rewritten []string
		for i, step := range e.path {
			parts := strings.Split(step, ":")
			if len(parts) == 2 && ud.IsCaseDeprel(parts[0]) && !ud.IsUniversalDeprelExtension(parts[1]) {
				if rewritten == nil {
					rewritten = make([]string, len(e.path))
					copy(rewritten, e.path)
				}
				rewritten[i] = parts[0]
			}
		}
		if rewritten != nil {
			path = rewritten
		}
		ans = append(ans, EnhancedEdge{head: e.head, path: path})
	}
	return ans
}
