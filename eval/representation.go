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

// Package eval compares two CoNLL-U treebanks, a gold standard and a
// system output, and computes the standard family of parser accuracy
// metrics over them (Tokens, Sentences, Words, tag scores, attachment
// scores and enhanced-graph scores).
//
// The two files do not have to share token boundaries. Both are first
// converted into flat representations with character spans into a
// whitespace-free text buffer, the buffers are compared, and words are
// aligned by their spans. All metric computations then share the single
// alignment. Everything is immutable once built, so individual metrics
// can be computed in any order (or concurrently) without locking.
package eval

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"udeval/conllu"
	"udeval/ud"
)

// Span is a half-open character range [Start, End) into the text buffer
// of a Representation. Spans of a single file never overlap and are
// strictly increasing in word order.
type Span struct {
	Start int
	End   int
}

// HeadRef is either a reference to another word of the same sentence
// (a 0-based index into the sentence's word list) or the root marker.
type HeadRef struct {
	index int
	root  bool
}

// RootHead creates a HeadRef marking a sentence root.
func RootHead() HeadRef {
	return HeadRef{root: true}
}

// WordHead creates a HeadRef pointing at the index-th word (0-based)
// of the same sentence.
func WordHead(index int) HeadRef {
	return HeadRef{index: index}
}

func (h HeadRef) IsRoot() bool {
	return h.root
}

// Index returns the sentence-local word index the reference points at.
// The second value is false for the root marker.
func (h HeadRef) Index() (int, bool) {
	if h.root {
		return 0, false
	}
	return h.index, true
}

func (h HeadRef) String() string {
	if h.root {
		return "root"
	}
	return strconv.Itoa(h.index)
}

// Feature is a single FEATS entry.
type Feature struct {
	Attr string
	Val  string
}

// FeatureList is an ordered attribute to value association. The order
// is canonical (sorted by attribute, then value), so two lists describe
// the same feature set exactly when they are element-wise equal.
type FeatureList []Feature

func parseFeatureList(raw string) FeatureList {
	if raw == "" || raw == "_" {
		return nil
	}
	items := strings.Split(raw, "|")
	ans := make(FeatureList, 0, len(items))
	for _, item := range items {
		attr, val, _ := strings.Cut(item, "=")
		ans = append(ans, Feature{Attr: attr, Val: val})
	}
	sort.Slice(ans, func(i, j int) bool {
		if ans[i].Attr != ans[j].Attr {
			return ans[i].Attr < ans[j].Attr
		}
		return ans[i].Val < ans[j].Val
	})
	return ans
}

func (fl FeatureList) Equal(other FeatureList) bool {
	if len(fl) != len(other) {
		return false
	}
	for i, f := range fl {
		if f != other[i] {
			return false
		}
	}
	return true
}

// Universal returns the subset of entries whose attribute belongs to
// the universal feature inventory. The result shares no storage with
// the receiver.
func (fl FeatureList) Universal() FeatureList {
	var ans FeatureList
	for _, f := range fl {
		if ud.IsUniversalFeature(f.Attr) {
			ans = append(ans, f)
		}
	}
	return ans
}

func (fl FeatureList) String() string {
	if len(fl) == 0 {
		return "_"
	}
	var sb strings.Builder
	for i, f := range fl {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(f.Attr)
		if f.Val != "" {
			sb.WriteByte('=')
			sb.WriteString(f.Val)
		}
	}
	return sb.String()
}

// enhancedHead is the target of an enhanced edge. Unlike basic heads it
// may also reference an elided (empty) node, which is identified by its
// literal id within the sentence (e.g. "3.1").
type enhancedHead struct {
	word  *Word
	empty string
	root  bool
}

// EnhancedEdge is one secondary head/relation pair of a word. The
// relation may be a path of several steps when the source file encodes
// edges collapsed over elided nodes (rel1>rel2).
type EnhancedEdge struct {
	head enhancedHead
	path []string
}

// Word is one syntactic word of the corpus. Multiword range rows are
// not words (they only contribute a token span) and empty nodes are
// not words either (they can only be referenced by enhanced edges).
// Words are built once and never mutated afterwards.
type Word struct {
	Form    string
	Lemma   string
	UPos    string
	XPos    string
	Feats   FeatureList
	Span    Span
	Head    HeadRef
	Deprel  string
	UDeprel string
	// Enhanced holds the parsed secondary edges of the word. It is nil
	// when dependency evaluation is switched off.
	Enhanced []EnhancedEdge

	featsUniversal     string
	parent             *Word
	functionalChildren []*Word
	isContent          bool
	isFunctional       bool
}

// Representation is the flat, whole-corpus view of one treebank file:
// a text buffer holding the concatenated word forms with all whitespace
// removed, plus words, surface tokens and sentences carrying character
// spans into that buffer.
type Representation struct {
	characters []rune
	words      []*Word
	tokens     []Span
	sentences  []Span
}

// Text returns the whitespace-free text of the whole corpus.
func (rep *Representation) Text() string {
	return string(rep.characters)
}

func (rep *Representation) NumWords() int {
	return len(rep.words)
}

func (rep *Representation) NumTokens() int {
	return len(rep.tokens)
}

func (rep *Representation) NumSentences() int {
	return len(rep.sentences)
}

// rawEdge is an unresolved enhanced edge as found in the DEPS column.
type rawEdge struct {
	headSpec string
	path     []string
}

// parseRawEdges splits a DEPS column into unresolved edges. Items
// without a colon are ignored. A relation containing '>' is split into
// its path steps.
func parseRawEdges(deps string) []rawEdge {
	if deps == "" || deps == "_" {
		return nil
	}
	var ans []rawEdge
	for _, item := range strings.Split(deps, "|") {
		headSpec, path, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		ans = append(ans, rawEdge{headSpec: headSpec, path: strings.Split(path, ">")})
	}
	return ans
}

// stripSpaces removes all Unicode Zs characters from a word form so
// that the text buffers of two differently tokenized files stay
// comparable even if one of them keeps spaces inside tokens.
func stripSpaces(form string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Zs, r) {
			return -1
		}
		return r
	}, form)
}

// BuildRepresentation converts parsed sentences into a Representation.
// With evalDeprels enabled it also resolves basic heads (rejecting
// cycles, multiple roots and out-of-range references), collects
// functional children and parses enhanced edges including references
// to empty nodes.
func BuildRepresentation(sentences []conllu.Sentence, evalDeprels bool) (*Representation, error) {
	rep := &Representation{}
	for i := range sentences {
		if err := rep.addSentence(i+1, &sentences[i], evalDeprels); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

func (rep *Representation) addSentence(sentNum int, sent *conllu.Sentence, evalDeprels bool) error {
	sentStart := len(rep.characters)
	var (
		words    []*Word
		raw      [][]rawEdge
		emptyIDs map[string]bool
	)
	expectedID := 1

	addWord := func(tok *conllu.Token) error {
		wordID, err := strconv.Atoi(tok.ID)
		if err != nil {
			return &MalformedTreeError{sentNum, tok.ID, "cannot parse word id"}
		}
		if wordID != expectedID {
			return &MalformedTreeError{
				sentNum, tok.ID, fmt.Sprintf("word id out of sequence, expected %d", expectedID),
			}
		}
		form := stripSpaces(tok.Form)
		if form == "" {
			return &MalformedTreeError{sentNum, tok.ID, "empty FORM"}
		}
		w := &Word{
			Form:    form,
			Lemma:   tok.Lemma,
			UPos:    tok.UPos,
			XPos:    tok.XPos,
			Feats:   parseFeatureList(tok.Feats),
			Deprel:  tok.Deprel,
			UDeprel: universalDeprel(tok.Deprel),
			Span:    Span{Start: len(rep.characters), End: len(rep.characters) + len([]rune(form))},
		}
		w.featsUniversal = w.Feats.Universal().String()
		w.isContent = ud.IsContentDeprel(w.UDeprel)
		w.isFunctional = ud.IsFunctionalDeprel(w.UDeprel)
		rep.characters = append(rep.characters, []rune(form)...)
		if evalDeprels {
			head, err := strconv.Atoi(tok.Head)
			if err != nil {
				return &MalformedTreeError{sentNum, tok.ID, fmt.Sprintf("cannot parse HEAD '%s'", tok.Head)}
			}
			if head < 0 {
				return &MalformedTreeError{sentNum, tok.ID, "HEAD cannot be negative"}
			}
			if head == 0 {
				w.Head = RootHead()

			} else {
				w.Head = WordHead(head - 1)
			}
			raw = append(raw, parseRawEdges(tok.Deps))
		}
		words = append(words, w)
		expectedID++
		return nil
	}

	for ti := 0; ti < len(sent.Tokens); ti++ {
		tok := sent.Tokens[ti]
		switch {
		case tok.IsEmptyNode():
			if !evalDeprels {
				continue
			}
			prefix, suffix, _ := strings.Cut(tok.ID, ".")
			base, err1 := strconv.Atoi(prefix)
			sub, err2 := strconv.Atoi(suffix)
			if err1 != nil || err2 != nil || sub < 1 {
				return &MalformedTreeError{sentNum, tok.ID, "cannot parse empty node id"}
			}
			if base != len(words) {
				return &MalformedTreeError{sentNum, tok.ID, "empty node id does not follow the preceding word"}
			}
			if emptyIDs == nil {
				emptyIDs = make(map[string]bool)
			}
			emptyIDs[tok.ID] = true

		case tok.IsMultiwordRange():
			first, last, ok := parseRange(tok.ID)
			if !ok {
				return &MalformedTreeError{sentNum, tok.ID, "cannot parse multiword token range"}
			}
			if first != expectedID || last < first {
				return &MalformedTreeError{sentNum, tok.ID, "multiword token range out of sequence"}
			}
			tokenStart := len(rep.characters)
			for id := first; id <= last; id++ {
				ti++
				if ti >= len(sent.Tokens) {
					return &MalformedTreeError{sentNum, tok.ID, "truncated multiword token"}
				}
				member := sent.Tokens[ti]
				if member.IsMultiwordRange() || member.IsEmptyNode() {
					return &MalformedTreeError{sentNum, member.ID, "unexpected row inside a multiword token"}
				}
				if err := addWord(member); err != nil {
					return err
				}
			}
			rep.tokens = append(rep.tokens, Span{Start: tokenStart, End: len(rep.characters)})

		default:
			tokenStart := len(rep.characters)
			if err := addWord(tok); err != nil {
				return err
			}
			rep.tokens = append(rep.tokens, Span{Start: tokenStart, End: len(rep.characters)})
		}
	}

	if len(words) == 0 {
		return &MalformedTreeError{sentNum, "", "sentence contains no syntactic words"}
	}
	rep.sentences = append(rep.sentences, Span{Start: sentStart, End: len(rep.characters)})

	if evalDeprels {
		if err := resolveSentenceTree(sentNum, words); err != nil {
			return err
		}
		for wi, w := range words {
			edges, err := resolveEnhanced(sentNum, strconv.Itoa(wi+1), raw[wi], words, emptyIDs)
			if err != nil {
				return err
			}
			w.Enhanced = edges
		}
	}
	rep.words = append(rep.words, words...)
	return nil
}

func parseRange(id string) (first, last int, ok bool) {
	fromStr, toStr, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, false
	}
	first, err1 := strconv.Atoi(fromStr)
	last, err2 := strconv.Atoi(toStr)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return first, last, true
}

func universalDeprel(deprel string) string {
	ans, _, _ := strings.Cut(deprel, ":")
	return ans
}

// resolveSentenceTree links words to their parents and validates the
// basic tree: head references must stay inside the sentence, the head
// chain must be acyclic and there must be exactly one root.
func resolveSentenceTree(sentNum int, words []*Word) error {
	numRoots := 0
	for i, w := range words {
		idx, isWord := w.Head.Index()
		if !isWord {
			numRoots++
			if numRoots > 1 {
				return &MalformedTreeError{sentNum, strconv.Itoa(i + 1), "multiple roots in the sentence"}
			}
			continue
		}
		if idx >= len(words) {
			return &MalformedTreeError{
				sentNum, strconv.Itoa(i + 1),
				fmt.Sprintf("HEAD '%d' points outside of the sentence", idx+1),
			}
		}
		w.parent = words[idx]
	}
	if numRoots == 0 {
		return &MalformedTreeError{sentNum, "", "the sentence has no root"}
	}

	const (
		stateUnvisited = 0
		stateOnPath    = 1
		stateDone      = 2
	)
	states := make([]int, len(words))
	index := make(map[*Word]int, len(words))
	for i, w := range words {
		index[w] = i
	}
	for i := range words {
		if states[i] != stateUnvisited {
			continue
		}
		var path []int
		for curr := i; ; {
			states[curr] = stateOnPath
			path = append(path, curr)
			parent := words[curr].parent
			if parent == nil {
				break
			}
			next := index[parent]
			if states[next] == stateOnPath {
				return &MalformedTreeError{sentNum, strconv.Itoa(next + 1), "there is a cycle in the sentence"}
			}
			if states[next] == stateDone {
				break
			}
			curr = next
		}
		for _, p := range path {
			states[p] = stateDone
		}
	}

	for _, w := range words {
		if w.isFunctional && w.parent != nil {
			w.parent.functionalChildren = append(w.parent.functionalChildren, w)
		}
	}
	return nil
}

// resolveEnhanced maps the raw DEPS items of one word onto word
// references. A head may be the root ('0'), a word of the sentence or
// an empty node declared in the same sentence.
func resolveEnhanced(
	sentNum int,
	wordID string,
	items []rawEdge,
	words []*Word,
	emptyIDs map[string]bool,
) ([]EnhancedEdge, error) {
	if len(items) == 0 {
		return nil, nil
	}
	ans := make([]EnhancedEdge, 0, len(items))
	for _, item := range items {
		var head enhancedHead
		if strings.Contains(item.headSpec, ".") {
			if !emptyIDs[item.headSpec] {
				return nil, &MalformedTreeError{
					sentNum, wordID,
					fmt.Sprintf("enhanced head references unknown empty node '%s'", item.headSpec),
				}
			}
			head = enhancedHead{empty: item.headSpec}

		} else {
			h, err := strconv.Atoi(item.headSpec)
			if err != nil || h < 0 {
				return nil, &MalformedTreeError{
					sentNum, wordID, fmt.Sprintf("cannot parse enhanced head '%s'", item.headSpec),
				}
			}
			if h == 0 {
				head = enhancedHead{root: true}

			} else {
				if h > len(words) {
					return nil, &MalformedTreeError{
						sentNum, wordID,
						fmt.Sprintf("enhanced head '%d' points outside of the sentence", h),
					}
				}
				head = enhancedHead{word: words[h-1]}
			}
		}
		ans = append(ans, EnhancedEdge{head: head, path: item.path})
	}
	return ans, nil
}
