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
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"udeval/conllu"
	"udeval/eval"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

// DataFile describes a single CoNLL-U file stored in the data
// directory.
type DataFile struct {
	Name         string  `json:"name"`
	LastModified *string `json:"lastModified"`
	Size         int64   `json:"size"`
}

// Actions provides HTTP access to the treebank registry.
type Actions struct {
	treebanks *TreebanksSetup
}

// TreebankList godoc
// @Summary      TreebankList shows all the registered treebanks
// @Produce      json
// @Success      200 {array} treebank.Props
// @Router       /treebanks [get]
func (a *Actions) TreebankList(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, a.treebanks.GetAll())
}

// TreebankInfo godoc
// @Summary      TreebankInfo shows a single registered treebank
// @Produce      json
// @Param        treebankId path string true "Treebank ID"
// @Success      200 {object} treebank.Props
// @Router       /treebanks/{treebankId} [get]
func (a *Actions) TreebankInfo(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	srch := a.treebanks.Get(treebankID)
	if srch.ID == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError("treebank %s not found", treebankID),
			http.StatusNotFound,
		)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, srch)
}

// CheckGoldFile loads the gold standard file of a treebank and reports
// its basic counts. This is mostly useful after deploying new data as
// it surfaces malformed trees without running a whole evaluation.
func (a *Actions) CheckGoldFile(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to check gold data of %s: %w"
	srch := a.treebanks.Get(treebankID)
	if srch.ID == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError("treebank %s not found", treebankID),
			http.StatusNotFound,
		)
		return
	}
	goldPath := a.treebanks.GetGoldPath(srch)
	if goldPath == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError("gold standard file of %s not found", treebankID),
			http.StatusNotFound,
		)
		return
	}
	sentences, err := conllu.ReadFile(goldPath)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnprocessableEntity)
		return
	}
	rep, err := eval.BuildRepresentation(sentences, srch.EvalOptions().EvalDeprels)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnprocessableEntity)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, struct {
		Treebank     string `json:"treebank"`
		GoldPath     string `json:"goldPath"`
		NumSentences int    `json:"numSentences"`
		NumTokens    int    `json:"numTokens"`
		NumWords     int    `json:"numWords"`
	}{
		Treebank:     treebankID,
		GoldPath:     goldPath,
		NumSentences: rep.NumSentences(),
		NumTokens:    rep.NumTokens(),
		NumWords:     rep.NumWords(),
	})
}

// DataFiles lists the CoNLL-U files available in the configured data
// directory. The returned names can be passed as a systemPath of an
// evaluation.
func (a *Actions) DataFiles(ctx *gin.Context) {
	files, err := fs.ListFilesInDir(a.treebanks.DataDir, false)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError("failed to list data files: %w", err),
			http.StatusInternalServerError,
		)
		return
	}
	ans := make([]DataFile, 0, 10)
	files.ForEach(func(finfo os.FileInfo, _ int) bool {
		name := filepath.Base(finfo.Name())
		if !strings.HasSuffix(name, ".conllu") {
			return true
		}
		mTimeString := finfo.ModTime().Format("2006-01-02T15:04:05-0700")
		ans = append(ans, DataFile{
			Name:         name,
			LastModified: &mTimeString,
			Size:         finfo.Size(),
		})
		return true
	})
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// NewActions is the default factory for treebank registry actions.
func NewActions(treebanks *TreebanksSetup) *Actions {
	return &Actions{treebanks: treebanks}
}
