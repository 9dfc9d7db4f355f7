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

package treebank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTreebankConf(t *testing.T, dir, name, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	assert.NoError(t, err)
}

func TestLoadSkipsInvalidFiles(t *testing.T) {
	confDir := t.TempDir()
	writeTreebankConf(
		t, confDir, "ud-czech.json",
		`{"id": "ud-czech", "language": "cs", "goldPath": "cs-gold.conllu"}`,
	)
	writeTreebankConf(
		t, confDir, "ud-latin.json",
		`{"id": "ud-latin", "language": "la", "goldPath": "la-gold.conllu", "treebankType": "36"}`,
	)
	writeTreebankConf(t, confDir, "broken.json", `{"id": `)
	writeTreebankConf(t, confDir, "nogold.json", `{"id": "ud-nogold", "language": "en"}`)

	ts := TreebanksSetup{ConfFilesDir: confDir}
	err := ts.Load()
	assert.NoError(t, err)
	assert.Len(t, ts.GetAll(), 2)
	assert.Equal(t, "cs", ts.Get("ud-czech").Language)
	assert.Equal(t, "36", ts.Get("ud-latin").TreebankType)
}

func TestGetUnknownTreebank(t *testing.T) {
	ts := TreebanksSetup{}
	srch := ts.Get("ud-unknown")
	assert.Equal(t, "", srch.ID)
}

func TestPropsValidateRejectsBadTreebankType(t *testing.T) {
	props := Props{GoldPath: "gold.conllu", TreebankType: "9"}
	props.ID = "ud-czech"
	assert.Error(t, props.Validate())
}

func TestEvalOptionsDefaults(t *testing.T) {
	props := Props{GoldPath: "gold.conllu"}
	props.ID = "ud-czech"
	opts := props.EvalOptions()
	assert.True(t, opts.EvalDeprels)
	assert.Equal(t, "0", opts.TreebankType)
}

func TestEvalOptionsOverrides(t *testing.T) {
	noDeprels := false
	props := Props{
		GoldPath:     "gold.conllu",
		TreebankType: "14",
		EvalDeprels:  &noDeprels,
	}
	props.ID = "ud-czech"
	opts := props.EvalOptions()
	assert.False(t, opts.EvalDeprels)
	assert.Equal(t, "14", opts.TreebankType)
}

func TestResolvePath(t *testing.T) {
	ts := TreebanksSetup{DataDir: "/var/opt/udeval/data"}
	assert.Equal(t, "/var/opt/udeval/data/cs-gold.conllu", ts.ResolvePath("cs-gold.conllu"))
	assert.Equal(t, "/tmp/other.conllu", ts.ResolvePath("/tmp/other.conllu"))
}

func TestGetGoldPath(t *testing.T) {
	dataDir := t.TempDir()
	writeTreebankConf(t, dataDir, "cs-gold.conllu", "")
	ts := TreebanksSetup{DataDir: dataDir}

	tb := Props{GoldPath: "cs-gold.conllu"}
	tb.ID = "ud-czech"
	assert.Equal(t, filepath.Join(dataDir, "cs-gold.conllu"), ts.GetGoldPath(tb))

	tb.GoldPath = "missing.conllu"
	assert.Equal(t, "", ts.GetGoldPath(tb))
}
