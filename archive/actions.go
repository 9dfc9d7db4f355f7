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

package archive

import (
	"errors"
	"net/http"
	"strconv"

	"udeval/eval"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	dfltRunListLimit      = 20
	dfltScoreHistoryLimit = 50
)

// Actions provides HTTP access to the archive of evaluation runs.
type Actions struct {
	db *Adapter
}

func getLimitArg(ctx *gin.Context, dflt int) (int, error) {
	tmp := ctx.Request.URL.Query().Get("limit")
	if tmp == "" {
		return dflt, nil
	}
	limit, err := strconv.Atoi(tmp)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

// RunList godoc
// @Summary      RunList shows the newest archived evaluation runs of a treebank
// @Produce      json
// @Param        treebankId path string true "Evaluated treebank"
// @Param 		 limit query int false "Max. number of runs to show" default(20)
// @Success      200 {array} archive.RunRecord
// @Router       /archive/{treebankId} [get]
func (a *Actions) RunList(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to list evaluation runs of %s: %w"
	limit, err := getLimitArg(ctx, dfltRunListLimit)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusBadRequest)
		return
	}
	runs, err := a.db.LoadRuns(ctx.Request.Context(), treebankID, limit)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, runs)
}

// RunInfo godoc
// @Summary      RunInfo shows a single archived evaluation run including all its scores
// @Produce      json
// @Param        runId path string true "ID of an archived run"
// @Success      200 {object} archive.RunRecord
// @Router       /archive/run/{runId} [get]
func (a *Actions) RunInfo(ctx *gin.Context) {
	runID := ctx.Param("runId")
	baseErrTpl := "failed to show evaluation run %s: %w"
	rec, err := a.db.GetRun(ctx.Request.Context(), runID)
	if errors.Is(err, ErrRunNotFound) {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, runID, err), http.StatusNotFound)
		return

	} else if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, runID, err), http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, rec)
}

// ScoreHistory provides the development of a single metric over the
// archived runs of a treebank (the LAS metric if not specified).
func (a *Actions) ScoreHistory(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to load score history of %s: %w"
	metric := eval.Metric(ctx.Request.URL.Query().Get("metric"))
	if metric == "" {
		metric = eval.MetricLAS
	}
	if err := metric.Validate(); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnprocessableEntity)
		return
	}
	limit, err := getLimitArg(ctx, dfltScoreHistoryLimit)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusBadRequest)
		return
	}
	items, err := a.db.MetricHistory(ctx.Request.Context(), treebankID, metric, limit)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{
		"treebank": treebankID,
		"metric":   metric,
		"history":  items,
	})
}

// NewActions is the default factory for archive HTTP actions.
func NewActions(db *Adapter) *Actions {
	return &Actions{db: db}
}
