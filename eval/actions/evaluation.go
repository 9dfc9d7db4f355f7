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

package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"udeval/archive"
	"udeval/conllu"
	"udeval/eval"
	"udeval/jobs"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// evaluationArgs describe a client request for a treebank evaluation.
// Options left empty follow the treebank configuration.
type evaluationArgs struct {
	SystemPath   string `json:"systemPath"`
	EvalDeprels  *bool  `json:"evalDeprels"`
	TreebankType string `json:"treebankType"`
}

func (args evaluationArgs) applyTo(opts *eval.Options) {
	if args.EvalDeprels != nil {
		opts.EvalDeprels = *args.EvalDeprels
	}
	if args.TreebankType != "" {
		opts.TreebankType = args.TreebankType
	}
}

// adhocArgs describe an evaluation of an explicit file pair without
// any registered treebank involved.
type adhocArgs struct {
	GoldPath     string `json:"goldPath"`
	SystemPath   string `json:"systemPath"`
	EvalDeprels  *bool  `json:"evalDeprels"`
	TreebankType string `json:"treebankType"`
}

type metricDescription struct {
	Name            eval.Metric `json:"name"`
	RequiresDeprels bool        `json:"requiresDeprels"`
}

// Submit godoc
// @Summary      Submit starts a new evaluation job for a registered treebank
// @Description  The system output file is compared against the configured gold standard in a background job. Use the jobs API to track the progress and fetch the result.
// @Accept  	 json
// @Produce      json
// @Param        treebankId path string true "Evaluated treebank"
// @Param 		 args body evaluationArgs true "Evaluation arguments"
// @Success      201 {object} any
// @Router       /evaluation/{treebankId} [post]
func (a *Actions) Submit(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to start evaluation for %s: %w"
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
	var args evaluationArgs
	if err := json.NewDecoder(ctx.Request.Body).Decode(&args); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusBadRequest)
		return
	}
	if args.SystemPath == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, errors.New("missing systemPath")),
			http.StatusUnprocessableEntity,
		)
		return
	}
	systemPath := a.treebanks.ResolvePath(args.SystemPath)
	if isf, _ := fs.IsFile(systemPath); !isf {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("system file %s not found", args.SystemPath)),
			http.StatusNotFound,
		)
		return
	}
	opts := srch.EvalOptions()
	args.applyTo(&opts)
	if err := opts.Validate(); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnprocessableEntity)
		return
	}

	jobID, err := uuid.NewUUID()
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnauthorized)
		return
	}

	if prevRunning, ok := a.jobActions.LastUnfinishedJobOfType(treebankID, eval.JobType); ok {
		err := fmt.Errorf("the previous job %s not finished yet", prevRunning.GetID())
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, err),
			http.StatusConflict,
		)
		return
	}

	status := &eval.JobInfo{
		ID:         jobID.String(),
		Type:       eval.JobType,
		TreebankID: treebankID,
		Start:      jobs.CurrentDatetime(),
		Args: eval.JobArgs{
			TreebankID: treebankID,
			GoldPath:   goldPath,
			SystemPath: systemPath,
			Options:    opts,
		},
	}
	a.runEvaluationJob(status)
	uniresp.WriteJSONResponseWithStatus(ctx.Writer, http.StatusCreated, status.FullInfo())
}

// RestartEvaluationJob puts an interrupted job back to the queue. This
// is used for jobs which did not finish before the last shutdown.
func (a *Actions) RestartEvaluationJob(jinfo *eval.JobInfo) error {
	err := a.jobActions.TestAllowsJobRestart(jinfo)
	if err != nil {
		return err
	}
	jinfo.Start = jobs.CurrentDatetime()
	jinfo.NumRestarts++
	jinfo.Update = jobs.CurrentDatetime()
	a.runEvaluationJob(jinfo)
	log.Info().Msgf("Restarted evaluation job %s", jinfo.ID)
	return nil
}

func (a *Actions) runEvaluationJob(status *eval.JobInfo) {
	runCtx, cancel := context.WithCancel(a.ctx)
	a.registerRunningJob(status.ID, cancel)
	fn := func(updateJobChan chan<- jobs.GeneralJobInfo) {
		defer close(updateJobChan)
		defer a.clearRunningJob(status.ID)
		promise := a.cache.Promise(
			status.Args.GoldPath,
			status.Args.SystemPath,
			status.Args.Options,
			func() (eval.Result, error) {
				return a.evaluatePair(runCtx, status.Args)
			},
		)
		entry := <-promise
		if entry.Err != nil {
			updateJobChan <- status.WithError(entry.Err)
			return
		}
		a.archiveRun(status, entry.Result)
		newStatus := *status
		newStatus.Result = entry.Result
		updateJobChan <- newStatus.AsFinished()
	}
	a.jobActions.EnqueueJob(&fn, status)
}

// evaluatePair runs the whole comparison. Between the expensive phases
// the context is checked so that a stopped job does not keep loading
// and aligning data nobody wants anymore.
func (a *Actions) evaluatePair(ctx context.Context, args eval.JobArgs) (eval.Result, error) {
	goldSentences, err := conllu.ReadFile(args.GoldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gold file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	systemSentences, err := conllu.ReadFile(args.SystemPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load system file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return eval.Evaluate(goldSentences, systemSentences, args.Options)
}

func (a *Actions) archiveRun(status *eval.JobInfo, result eval.Result) {
	if a.archiveDB == nil {
		return
	}
	rec := archive.RunRecord{
		ID:         status.ID,
		TreebankID: status.TreebankID,
		GoldPath:   status.Args.GoldPath,
		SystemPath: status.Args.SystemPath,
		Options:    status.Args.Options,
		Created:    time.Now(),
		Scores:     result,
	}
	if err := a.archiveDB.InsertRun(a.ctx, rec); err != nil {
		log.Error().
			Err(err).
			Str("jobId", status.ID).
			Msg("failed to archive evaluation run")
	}
}

// GetResult godoc
// @Summary      GetResult provides scores of an already computed evaluation
// @Description  The result is served from the in-memory cache. In case the evaluation is still running, the call waits for it. For a pair which was never evaluated (or whose files changed since), 404 is returned.
// @Produce      json
// @Param        treebankId path string true "Evaluated treebank"
// @Param        systemPath query string true "Evaluated system output file"
// @Success      200 {object} eval.Result
// @Router       /evaluation/{treebankId}/result [get]
func (a *Actions) GetResult(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to get evaluation result for %s: %w"
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
	systemPathArg := ctx.Request.URL.Query().Get("systemPath")
	if systemPathArg == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, errors.New("missing systemPath argument")),
			http.StatusBadRequest,
		)
		return
	}
	systemPath := a.treebanks.ResolvePath(systemPathArg)
	opts := srch.EvalOptions()
	if v := ctx.Request.URL.Query().Get("evalDeprels"); v != "" {
		opts.EvalDeprels = v == "1"
	}
	if v := ctx.Request.URL.Query().Get("treebankType"); v != "" {
		opts.TreebankType = v
	}
	if err := opts.Validate(); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusUnprocessableEntity)
		return
	}
	entry, err := a.cache.Get(goldPath, systemPath, opts)
	if errors.Is(err, eval.ErrCacheEntryNotFound) {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, errors.New("no evaluation result available")),
			http.StatusNotFound,
		)
		return

	} else if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusInternalServerError)
		return
	}
	if entry.Err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, entry.Err), http.StatusUnprocessableEntity)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, entry.Result)
}

// ValidatePair tests that a system output describes the same text as
// the treebank's gold standard. On a mismatch, the answer carries the
// position of the first differing character along with a short context
// from both files.
func (a *Actions) ValidatePair(ctx *gin.Context) {
	treebankID := ctx.Param("treebankId")
	baseErrTpl := "failed to validate file pair for %s: %w"
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
	var args evaluationArgs
	if err := json.NewDecoder(ctx.Request.Body).Decode(&args); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusBadRequest)
		return
	}
	if args.SystemPath == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, errors.New("missing systemPath")),
			http.StatusUnprocessableEntity,
		)
		return
	}
	systemPath := a.treebanks.ResolvePath(args.SystemPath)
	if isf, _ := fs.IsFile(systemPath); !isf {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("system file %s not found", args.SystemPath)),
			http.StatusNotFound,
		)
		return
	}
	goldSentences, err := conllu.ReadFile(goldPath)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("gold file: %w", err)),
			http.StatusUnprocessableEntity,
		)
		return
	}
	systemSentences, err := conllu.ReadFile(systemPath)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("system file: %w", err)),
			http.StatusUnprocessableEntity,
		)
		return
	}
	gold, err := eval.BuildRepresentation(goldSentences, false)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("gold file: %w", err)),
			http.StatusUnprocessableEntity,
		)
		return
	}
	system, err := eval.BuildRepresentation(systemSentences, false)
	if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, treebankID, fmt.Errorf("system file: %w", err)),
			http.StatusUnprocessableEntity,
		)
		return
	}
	ans := struct {
		Treebank   string                  `json:"treebank"`
		SystemPath string                  `json:"systemPath"`
		Match      bool                    `json:"match"`
		Mismatch   *eval.TextMismatchError `json:"mismatch,omitempty"`
	}{
		Treebank:   treebankID,
		SystemPath: systemPath,
		Match:      true,
	}
	if err := eval.CheckTextsMatch(gold, system); err != nil {
		var tmErr *eval.TextMismatchError
		if !errors.As(err, &tmErr) {
			uniresp.WriteJSONErrorResponse(
				ctx.Writer, uniresp.NewActionError(baseErrTpl, treebankID, err), http.StatusInternalServerError)
			return
		}
		ans.Match = false
		ans.Mismatch = tmErr
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// AdHocEvaluation synchronously compares an explicit pair of CoNLL-U
// files. Unlike Submit, no registered treebank and no background job
// is involved, which makes the action suitable for smaller files and
// interactive use.
func (a *Actions) AdHocEvaluation(ctx *gin.Context) {
	baseErrTpl := "failed to evaluate file pair: %w"
	var args adhocArgs
	if err := json.NewDecoder(ctx.Request.Body).Decode(&args); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, err), http.StatusBadRequest)
		return
	}
	if args.GoldPath == "" || args.SystemPath == "" {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, errors.New("both goldPath and systemPath must be specified")),
			http.StatusUnprocessableEntity,
		)
		return
	}
	goldPath := a.treebanks.ResolvePath(args.GoldPath)
	if isf, _ := fs.IsFile(goldPath); !isf {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, fmt.Errorf("gold file %s not found", args.GoldPath)),
			http.StatusNotFound,
		)
		return
	}
	systemPath := a.treebanks.ResolvePath(args.SystemPath)
	if isf, _ := fs.IsFile(systemPath); !isf {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer,
			uniresp.NewActionError(baseErrTpl, fmt.Errorf("system file %s not found", args.SystemPath)),
			http.StatusNotFound,
		)
		return
	}
	opts := eval.DefaultOptions()
	if args.EvalDeprels != nil {
		opts.EvalDeprels = *args.EvalDeprels
	}
	if args.TreebankType != "" {
		opts.TreebankType = args.TreebankType
	}
	if err := opts.Validate(); err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, err), http.StatusUnprocessableEntity)
		return
	}
	entry, err := a.cache.Get(goldPath, systemPath, opts)
	if errors.Is(err, eval.ErrCacheEntryNotFound) {
		entry = <-a.cache.Promise(goldPath, systemPath, opts, func() (eval.Result, error) {
			return a.evaluatePair(a.ctx, eval.JobArgs{
				GoldPath:   goldPath,
				SystemPath: systemPath,
				Options:    opts,
			})
		})

	} else if err != nil {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, err), http.StatusInternalServerError)
		return
	}
	if entry.Err != nil {
		var tmErr *eval.TextMismatchError
		var mtErr *eval.MalformedTreeError
		status := http.StatusInternalServerError
		if errors.As(entry.Err, &tmErr) {
			status = http.StatusConflict

		} else if errors.As(entry.Err, &mtErr) {
			status = http.StatusUnprocessableEntity
		}
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError(baseErrTpl, entry.Err), status)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, entry.Result)
}

// Metrics godoc
// @Summary      Metrics lists the computed evaluation metrics in their canonical order
// @Produce      json
// @Success      200 {array} metricDescription
// @Router       /evaluation/metrics [get]
func (a *Actions) Metrics(ctx *gin.Context) {
	ans := make([]metricDescription, 0, len(eval.AllMetrics))
	for _, m := range eval.AllMetrics {
		ans = append(ans, metricDescription{
			Name:            m,
			RequiresDeprels: m.IsDependencyMetric(),
		})
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}
