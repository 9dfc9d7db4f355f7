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

// TextMismatchError is reported when the gold and system files do not
// describe the same underlying text. Offset is the index of the first
// differing character in the whitespace-free text; the context fields
// show up to 20 characters of each side starting at that point.
type TextMismatchError struct {
	Offset        int    `json:"offset"`
	GoldContext   string `json:"goldContext"`
	SystemContext string `json:"systemContext"`
}

func (err *TextMismatchError) Error() string {
	return fmt.Sprintf(
		"gold and system texts differ at character %d: gold %q vs. system %q",
		err.Offset, err.GoldContext, err.SystemContext,
	)
}

// MalformedTreeError is reported for unresolvable or inconsistent tree
// structure in one of the input files. Sentence is a 1-based sentence
// order number, WordID the id column of the offending row.
type MalformedTreeError struct {
	Sentence int    `json:"sentence"`
	WordID   string `json:"wordId"`
	Reason   string `json:"reason"`
}

func (err *MalformedTreeError) Error() string {
	return fmt.Sprintf("malformed tree in sentence %d, word '%s': %s", err.Sentence, err.WordID, err.Reason)
}

// CountMismatchError is reported when two collections cannot be
// brought into correspondence, e.g. when a batch evaluation finds a
// different number of gold and system files.
type CountMismatchError struct {
	Unit        string `json:"unit"`
	GoldCount   int    `json:"goldCount"`
	SystemCount int    `json:"systemCount"`
}

func (err *CountMismatchError) Error() string {
	return fmt.Sprintf(
		"%s counts cannot be matched between gold (%d) and system (%d)",
		err.Unit, err.GoldCount, err.SystemCount,
	)
}
