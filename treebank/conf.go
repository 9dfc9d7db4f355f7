// Copyright 2019 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2019 Institute of the Czech National Corpus,
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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"udeval/eval"
	"udeval/ud"

	"github.com/bytedance/sonic"
	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/mquery-common/corp"
	"github.com/rs/zerolog/log"
)

// Props describes a single registered treebank. The embedded corpus
// setup covers the presentation part shared with other CNC tools
// (id, full name, description, tagsets), the rest is specific to
// treebank evaluation.
type Props struct {
	corp.CorpusSetup

	// Language is the ISO 639-1 code of the treebank language.
	Language string `json:"language"`

	// GoldPath is the location of the gold standard CoNLL-U file.
	// A relative path is resolved against the registry's DataDir.
	GoldPath string `json:"goldPath"`

	// TreebankType is a string of digit flags describing which
	// enhancement phenomena the annotation scheme of the treebank
	// leaves out (see the ud package for the flag meanings). Empty
	// value means a fully annotated treebank.
	TreebankType string `json:"treebankType"`

	// EvalDeprels, when set, overrides the default decision whether
	// the dependency metrics are computed for the treebank.
	EvalDeprels *bool `json:"evalDeprels,omitempty"`
}

func (p Props) Validate() error {
	if p.ID == "" {
		return errors.New("missing treebank id")
	}
	if p.GoldPath == "" {
		return fmt.Errorf("treebank %s: missing goldPath", p.ID)
	}
	if _, err := ud.ParseTreebankType(p.TreebankType); err != nil {
		return fmt.Errorf("treebank %s: %w", p.ID, err)
	}
	for _, tagset := range p.Tagsets {
		if err := tagset.Validate(); err != nil {
			return fmt.Errorf("treebank %s: %w", p.ID, err)
		}
	}
	return nil
}

// EvalOptions returns the default evaluation options of the treebank.
func (p Props) EvalOptions() eval.Options {
	opts := eval.DefaultOptions()
	if p.TreebankType != "" {
		opts.TreebankType = p.TreebankType
	}
	if p.EvalDeprels != nil {
		opts.EvalDeprels = *p.EvalDeprels
	}
	return opts
}

// TreebanksSetup defines the treebank registry configuration. Each
// registered treebank is described by a single JSON file in
// ConfFilesDir.
type TreebanksSetup struct {
	ConfFilesDir string `json:"confFilesDir"`
	DataDir      string `json:"dataDir"`
	treebanks    []Props
}

func (ts *TreebanksSetup) Load() error {
	files, err := os.ReadDir(ts.ConfFilesDir)
	if err != nil {
		return fmt.Errorf("failed to load treebank configs: %w", err)
	}
	for _, f := range files {
		confPath := filepath.Join(ts.ConfFilesDir, f.Name())
		tmp, err := os.ReadFile(confPath)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid treebank configuration file, skipping")
			continue
		}
		var props Props
		err = sonic.Unmarshal(tmp, &props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid treebank configuration file, skipping")
			continue
		}
		if err := props.Validate(); err != nil {
			log.Warn().
				Err(err).
				Str("file", confPath).
				Msg("encountered invalid treebank configuration file, skipping")
			continue
		}
		ts.treebanks = append(ts.treebanks, props)
		log.Info().Str("name", props.ID).Msg("loaded treebank configuration file")
	}
	return nil
}

// Get returns a treebank entry by its id. In case there is no such
// treebank, an empty Props value (ID == "") is returned.
func (ts *TreebanksSetup) Get(name string) Props {
	for _, v := range ts.treebanks {
		if v.ID == name {
			return v
		}
	}
	return Props{}
}

func (ts *TreebanksSetup) GetAll() []Props {
	ans := make([]Props, 0, len(ts.treebanks))
	ans = append(ans, ts.treebanks...)
	return ans
}

// ResolvePath resolves a data file location against the registry's
// DataDir. An absolute path is kept untouched.
func (ts *TreebanksSetup) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ts.DataDir, p)
}

// GetGoldPath resolves the gold standard file of a treebank and tests
// that it actually exists. An empty string is returned in case the
// file is missing.
func (ts *TreebanksSetup) GetGoldPath(tb Props) string {
	p := ts.ResolvePath(tb.GoldPath)
	pe := fs.PathExists(p)
	isf, _ := fs.IsFile(p)
	if pe && isf {
		return p
	}
	return ""
}
