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

// textContextSize is the number of characters shown from each file
// when their texts are reported as different.
const textContextSize = 20

// CheckTextsMatch verifies that the two files describe the same
// underlying text, i.e. that their whitespace-free character buffers
// are identical. On a difference it returns a TextMismatchError with
// the offset of the first differing character and a short context
// window from both buffers.
func CheckTextsMatch(gold, system *Representation) error {
	if string(gold.characters) == string(system.characters) {
		return nil
	}
	idx := 0
	for idx < len(gold.characters) && idx < len(system.characters) &&
		gold.characters[idx] == system.characters[idx] {
		idx++
	}
	return &TextMismatchError{
		Offset:        idx,
		GoldContext:   contextWindow(gold.characters, idx),
		SystemContext: contextWindow(system.characters, idx),
	}
}

func contextWindow(chars []rune, from int) string {
	to := from + textContextSize
	if to > len(chars) {
		to = len(chars)
	}
	if from > len(chars) {
		from = len(chars)
	}
	return string(chars[from:to])
}
