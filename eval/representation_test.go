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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"udeval/conllu"
)

func udrow(id, form, lemma, upos, xpos, feats, head, deprel, deps string) string {
	return strings.Join([]string{id, form, lemma, upos, xpos, feats, head, deprel, deps, "_"}, "\t")
}

func udDoc(rows ...string) string {
	return strings.Join(rows, "\n") + "\n\n"
}

func parseDoc(t *testing.T, doc string) []conllu.Sentence {
	t.Helper()
	sentences, err := conllu.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("failed to parse test document: %s", err)
	}
	return sentences
}

func TestBuildRepresentationSpans(t *testing.T) {
	doc := udDoc(
		udrow("1", "Puella", "puella", "NOUN", "N1", "_", "2", "nsubj", "_"),
		udrow("2", "videt", "video", "VERB", "V1", "_", "0", "root", "_"),
	) + udDoc(
		udrow("1-2", "Nemám", "_", "_", "_", "_", "_", "_", "_"),
		udrow("1", "Ne", "ne", "PART", "T1", "_", "2", "advmod", "_"),
		udrow("2", "mám", "mít", "VERB", "V1", "_", "0", "root", "_"),
		udrow("3", "čas", "čas", "NOUN", "N1", "_", "2", "obj", "_"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	assert.Equal(t, "PuellavidetNemámčas", rep.Text())
	assert.Equal(t, 5, rep.NumWords())
	assert.Equal(t, 4, rep.NumTokens())
	assert.Equal(t, 2, rep.NumSentences())

	assert.Equal(t, Span{Start: 0, End: 6}, rep.words[0].Span)
	assert.Equal(t, Span{Start: 6, End: 11}, rep.words[1].Span)
	// the multiword members split the token's characters between them
	assert.Equal(t, Span{Start: 11, End: 13}, rep.words[2].Span)
	assert.Equal(t, Span{Start: 13, End: 16}, rep.words[3].Span)
	// while the token span covers the whole range row
	assert.Equal(t, Span{Start: 11, End: 16}, rep.tokens[2])
	assert.Equal(t, Span{Start: 11, End: 19}, rep.sentences[1])
}

func TestBuildRepresentationStripsSpaces(t *testing.T) {
	doc := udDoc(
		udrow("1", "New York", "New York", "PROPN", "N1", "_", "0", "root", "_"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	assert.Equal(t, "NewYork", rep.Text())
	assert.Equal(t, Span{Start: 0, End: 7}, rep.words[0].Span)
}

func TestBuildRepresentationResolvesHeads(t *testing.T) {
	doc := udDoc(
		udrow("1", "Puella", "puella", "NOUN", "N1", "_", "2", "nsubj", "_"),
		udrow("2", "videt", "video", "VERB", "V1", "_", "0", "root", "_"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	assert.Equal(t, rep.words[1], rep.words[0].parent)
	assert.Nil(t, rep.words[1].parent)
	assert.True(t, rep.words[1].Head.IsRoot())
	assert.Equal(t, "nsubj", rep.words[0].UDeprel)
}

func TestBuildRepresentationSplitsDeprelSubtype(t *testing.T) {
	doc := udDoc(
		udrow("1", "v", "v", "ADP", "R1", "_", "2", "case:loc", "_"),
		udrow("2", "lese", "les", "NOUN", "N1", "_", "0", "root", "_"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	assert.Equal(t, "case:loc", rep.words[0].Deprel)
	assert.Equal(t, "case", rep.words[0].UDeprel)
	assert.True(t, rep.words[0].isFunctional)
	assert.False(t, rep.words[0].isContent)
}

func TestBuildRepresentationRejectsCycle(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "2", "dep", "_"),
		udrow("2", "b", "b", "X", "X", "_", "1", "dep", "_"),
		udrow("3", "c", "c", "X", "X", "_", "0", "root", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Equal(t, 1, tErr.Sentence)
	assert.Contains(t, tErr.Reason, "cycle")
}

func TestBuildRepresentationRejectsMultipleRoots(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "0", "root", "_"),
		udrow("2", "b", "b", "X", "X", "_", "0", "root", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Contains(t, tErr.Reason, "multiple roots")
}

func TestBuildRepresentationRejectsHeadOutOfRange(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "5", "dep", "_"),
		udrow("2", "b", "b", "X", "X", "_", "0", "root", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Equal(t, "1", tErr.WordID)
}

func TestBuildRepresentationRejectsBrokenIDSequence(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "0", "root", "_"),
		udrow("3", "b", "b", "X", "X", "_", "1", "dep", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Equal(t, "3", tErr.WordID)
}

func TestBuildRepresentationEmptyNodes(t *testing.T) {
	doc := udDoc(
		udrow("1", "Sue", "Sue", "PROPN", "N1", "_", "2", "nsubj", "2:nsubj"),
		udrow("2", "likes", "like", "VERB", "V1", "_", "0", "root", "0:root"),
		udrow("3", "coffee", "coffee", "NOUN", "N1", "_", "2", "obj", "2:obj"),
		udrow("4", "and", "and", "CCONJ", "C1", "_", "5", "cc", "5.1:cc"),
		udrow("5", "Bill", "Bill", "PROPN", "N1", "_", "2", "conj", "5.1:nsubj"),
		udrow("5.1", "likes", "like", "VERB", "V1", "_", "_", "_", "_"),
		udrow("6", "tea", "tea", "NOUN", "N1", "_", "5", "obj", "5.1:obj"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	// the empty node is not a word and contributes no characters
	assert.Equal(t, 6, rep.NumWords())
	assert.Equal(t, "SuelikescoffeeandBilltea", rep.Text())
	assert.Equal(t, "5.1", rep.words[3].Enhanced[0].head.empty)
	assert.Equal(t, []string{"cc"}, rep.words[3].Enhanced[0].path)
}

func TestBuildRepresentationRejectsUnknownEmptyNodeRef(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "0", "root", "3.1:nsubj"),
		udrow("2", "b", "b", "X", "X", "_", "1", "dep", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Contains(t, tErr.Reason, "3.1")
}

func TestBuildRepresentationCollapsedPaths(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "2", "nsubj", "2:conj:en>nsubj:pass|2:nsubj"),
		udrow("2", "b", "b", "X", "X", "_", "0", "root", "0:root"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.NoError(t, err)
	assert.Len(t, rep.words[0].Enhanced, 2)
	assert.Equal(t, []string{"conj:en", "nsubj:pass"}, rep.words[0].Enhanced[0].path)
	assert.Equal(t, []string{"nsubj"}, rep.words[0].Enhanced[1].path)
}

func TestBuildRepresentationWithoutDeprels(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "_", "_", "_"),
		udrow("2", "b", "b", "X", "X", "_", "_", "_", "_"),
	)
	rep, err := BuildRepresentation(parseDoc(t, doc), false)
	assert.NoError(t, err)
	assert.Equal(t, 2, rep.NumWords())
	assert.Nil(t, rep.words[0].parent)
	assert.Nil(t, rep.words[0].Enhanced)
}

func TestBuildRepresentationRejectsEmptyForm(t *testing.T) {
	doc := udDoc(
		udrow("1", " ", "a", "X", "X", "_", "0", "root", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	var tErr *MalformedTreeError
	assert.ErrorAs(t, err, &tErr)
	assert.Contains(t, tErr.Reason, "FORM")
}

func TestBuildRepresentationErrorIsWrappable(t *testing.T) {
	doc := udDoc(
		udrow("1", "a", "a", "X", "X", "_", "x", "dep", "_"),
	)
	_, err := BuildRepresentation(parseDoc(t, doc), true)
	assert.Error(t, err)
	var tErr *MalformedTreeError
	assert.True(t, errors.As(err, &tErr))
}

func TestParseFeatureListCanonicalOrder(t *testing.T) {
	fl := parseFeatureList("Number=Sing|Case=Nom|Animacy=Anim")
	assert.Equal(t, FeatureList{
		{Attr: "Animacy", Val: "Anim"},
		{Attr: "Case", Val: "Nom"},
		{Attr: "Number", Val: "Sing"},
	}, fl)
	assert.Equal(t, "Animacy=Anim|Case=Nom|Number=Sing", fl.String())
}

func TestParseFeatureListEmpty(t *testing.T) {
	assert.Nil(t, parseFeatureList("_"))
	assert.Nil(t, parseFeatureList(""))
	assert.Equal(t, "_", parseFeatureList("_").String())
}

func TestFeatureListUniversalSubset(t *testing.T) {
	fl := parseFeatureList("Case=Nom|Style=Coll|Number=Sing")
	uni := fl.Universal()
	assert.Equal(t, "Case=Nom|Number=Sing", uni.String())
	// the receiver stays intact
	assert.Len(t, fl, 3)
}

func TestFeatureListEqual(t *testing.T) {
	a := parseFeatureList("Case=Nom|Number=Sing")
	b := parseFeatureList("Number=Sing|Case=Nom")
	c := parseFeatureList("Case=Acc|Number=Sing")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
