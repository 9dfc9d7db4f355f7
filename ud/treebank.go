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

package ud

import "fmt"

// TreebankType describes which enhanced-graph phenomena a treebank
// does not annotate. Each active flag makes the evaluator strip the
// corresponding type of enhanced edges from both compared files before
// ELAS/EULAS scoring.
type TreebankType struct {
	NoGapping                            bool
	NoSharedParentsInCoordination        bool
	NoSharedDependentsInCoordination     bool
	NoControl                            bool
	NoExternalArgumentsOfRelativeClauses bool
	NoCaseInfo                           bool
}

// HasFilters tests whether at least one exclusion flag is active.
func (tt TreebankType) HasFilters() bool {
	return tt != TreebankType{}
}

// ParseTreebankType translates a string of digit flags into a TreebankType.
// Each digit 1-6 independently switches one exclusion on; '0' switches
// nothing on and is allowed to appear alone or alongside other digits.
// An empty string is treated the same way as "0".
func ParseTreebankType(flags string) (TreebankType, error) {
	var ans TreebankType
	for _, c := range flags {
		switch c {
		case '0':
		case '1':
			ans.NoGapping = true
		case '2':
			ans.NoSharedParentsInCoordination = true
		case '3':
			ans.NoSharedDependentsInCoordination = true
		case '4':
			ans.NoControl = true
		case '5':
			ans.NoExternalArgumentsOfRelativeClauses = true
		case '6':
			ans.NoCaseInfo = true
		default:
			return TreebankType{}, fmt.Errorf("invalid treebank type flag '%c' in %q", c, flags)
		}
	}
	return ans, nil
}
