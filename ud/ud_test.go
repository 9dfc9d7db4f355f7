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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentVsFunctionalDeprels(t *testing.T) {
	assert.True(t, IsContentDeprel("nsubj"))
	assert.True(t, IsContentDeprel("root"))
	assert.True(t, IsContentDeprel("conj"))
	assert.False(t, IsContentDeprel("aux"))
	assert.False(t, IsContentDeprel("case"))

	assert.True(t, IsFunctionalDeprel("aux"))
	assert.True(t, IsFunctionalDeprel("det"))
	assert.False(t, IsFunctionalDeprel("obj"))
	// punct belongs to neither category
	assert.False(t, IsContentDeprel("punct"))
	assert.False(t, IsFunctionalDeprel("punct"))
}

func TestUniversalFeatures(t *testing.T) {
	assert.True(t, IsUniversalFeature("Case"))
	assert.True(t, IsUniversalFeature("VerbForm"))
	assert.False(t, IsUniversalFeature("Style"))
	assert.False(t, IsUniversalFeature("case"))
}

func TestCaseDeprelsAndExtensions(t *testing.T) {
	assert.True(t, IsCaseDeprel("obl"))
	assert.True(t, IsCaseDeprel("conj"))
	assert.False(t, IsCaseDeprel("obj"))
	assert.True(t, IsUniversalDeprelExtension("relcl"))
	assert.False(t, IsUniversalDeprelExtension("naar"))
}

func TestParseTreebankTypeNone(t *testing.T) {
	tt, err := ParseTreebankType("0")
	assert.NoError(t, err)
	assert.False(t, tt.HasFilters())

	tt, err = ParseTreebankType("")
	assert.NoError(t, err)
	assert.False(t, tt.HasFilters())
}

func TestParseTreebankTypeFlags(t *testing.T) {
	tt, err := ParseTreebankType("135")
	assert.NoError(t, err)
	assert.True(t, tt.HasFilters())
	assert.True(t, tt.NoGapping)
	assert.False(t, tt.NoSharedParentsInCoordination)
	assert.True(t, tt.NoSharedDependentsInCoordination)
	assert.False(t, tt.NoControl)
	assert.True(t, tt.NoExternalArgumentsOfRelativeClauses)
	assert.False(t, tt.NoCaseInfo)
}

func TestParseTreebankTypeAllFlags(t *testing.T) {
	tt, err := ParseTreebankType("123456")
	assert.NoError(t, err)
	assert.True(t, tt.NoGapping)
	assert.True(t, tt.NoSharedParentsInCoordination)
	assert.True(t, tt.NoSharedDependentsInCoordination)
	assert.True(t, tt.NoControl)
	assert.True(t, tt.NoExternalArgumentsOfRelativeClauses)
	assert.True(t, tt.NoCaseInfo)
}

func TestParseTreebankTypeRejectsUnknown(t *testing.T) {
	_, err := ParseTreebankType("7")
	assert.Error(t, err)
	_, err = ParseTreebankType("1x")
	assert.Error(t, err)
}

func TestParseTreebankTypeZeroMixed(t *testing.T) {
	// zero inside a flag combination is allowed and means nothing
	tt, err := ParseTreebankType("102")
	assert.NoError(t, err)
	assert.True(t, tt.NoGapping)
	assert.True(t, tt.NoSharedParentsInCoordination)
}
