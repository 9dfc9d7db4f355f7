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

// AlignmentWord is a single gold/system word pairing. Both references
// point into the respective Representations, which must outlive the
// Alignment.
type AlignmentWord struct {
	GoldWord   *Word
	SystemWord *Word
}

// Alignment is the 1:1 correspondence between gold and system words.
// Words are paired exactly when their character spans are identical,
// so all the metrics computed on top of an Alignment agree on which
// piece of text each pair covers.
type Alignment struct {
	gold            *Representation
	system          *Representation
	matched         []AlignmentWord
	sysToGold       map[*Word]*Word
	unalignedGold   []*Word
	unalignedSystem []*Word
}

// NumMatched returns the number of aligned word pairs.
func (a *Alignment) NumMatched() int {
	return len(a.matched)
}

// NumUnaligned returns how many gold and system words have no
// counterpart on the other side.
func (a *Alignment) NumUnaligned() (gold, system int) {
	return len(a.unalignedGold), len(a.unalignedSystem)
}

// goldOf translates a system word to its aligned gold counterpart.
// The second value is false for unaligned system words.
func (a *Alignment) goldOf(systemWord *Word) (*Word, bool) {
	gw, ok := a.sysToGold[systemWord]
	return gw, ok
}

func (a *Alignment) appendMatched(goldWord, systemWord *Word) {
	a.matched = append(a.matched, AlignmentWord{GoldWord: goldWord, SystemWord: systemWord})
	a.sysToGold[systemWord] = goldWord
}

// AlignWords pairs the words of two Representations by their character
// spans. The caller must have verified via CheckTextsMatch that both
// sides describe the same text, otherwise span comparison is not
// meaningful.
//
// The procedure is a single two-pointer pass: identical spans produce
// a pair, otherwise the side whose span ends earlier is advanced and
// its word recorded as unaligned. When both spans end at the same
// offset but differ, neither can pair with anything ahead, so both
// sides advance. The result is order-preserving on both sides.
func AlignWords(gold, system *Representation) *Alignment {
	ali := &Alignment{
		gold:      gold,
		system:    system,
		sysToGold: make(map[*Word]*Word),
	}
	gi, si := 0, 0
	for gi < len(gold.words) && si < len(system.words) {
		gw, sw := gold.words[gi], system.words[si]
		switch {
		case gw.Span == sw.Span:
			ali.appendMatched(gw, sw)
			gi++
			si++
		case gw.Span.End < sw.Span.End:
			ali.unalignedGold = append(ali.unalignedGold, gw)
			gi++
		case sw.Span.End < gw.Span.End:
			ali.unalignedSystem = append(ali.unalignedSystem, sw)
			si++
		default:
			ali.unalignedGold = append(ali.unalignedGold, gw)
			ali.unalignedSystem = append(ali.unalignedSystem, sw)
			gi++
			si++
		}
	}
	for ; gi < len(gold.words); gi++ {
		ali.unalignedGold = append(ali.unalignedGold, gold.words[gi])
	}
	for ; si < len(system.words); si++ {
		ali.unalignedSystem = append(ali.unalignedSystem, system.words[si])
	}
	return ali
}
