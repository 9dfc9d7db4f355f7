// Copyright 2022 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2022 Institute of the Czech National Corpus,
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

package jobs

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"udeval/mail"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Actions schedules enqueued jobs with respect to the configured
// concurrency limit and declared job dependencies, and exposes the
// whole subsystem via HTTP.
type Actions struct {
	conf *Conf

	// jobList contains statuses of running, queued and recently
	// finished jobs
	jobList     map[string]GeneralJobInfo
	jobListLock sync.RWMutex

	// detachedJobs contains unfinished jobs restored from the
	// status file after a server restart. Respective producers
	// are expected to either restart or clear them.
	detachedJobs map[string]GeneralJobInfo

	// notifications maps job IDs to e-mail addresses subscribed
	// for the respective "job finished" message
	notifications     map[string][]string
	notificationsLock sync.Mutex

	// queueLock guards jobQueue, jobDeps and numRunning
	jobQueue   *JobQueue
	jobDeps    JobsDeps
	numRunning int
	queueLock  sync.Mutex

	msgPrinter *message.Printer
	language   string

	// jobStop is written to when a client requests deletion of an
	// unfinished job. Job producers must listen on the channel and
	// cancel the respective work.
	jobStop chan<- string
}

// registerJob inserts an initial job status
func (a *Actions) registerJob(status GeneralJobInfo) {
	a.jobListLock.Lock()
	a.jobList[status.GetID()] = status
	a.jobListLock.Unlock()
}

// updateJobStatus stores a new status version unless the job has
// been deleted in the meantime
func (a *Actions) updateJobStatus(status GeneralJobInfo) {
	a.jobListLock.Lock()
	if _, ok := a.jobList[status.GetID()]; ok {
		a.jobList[status.GetID()] = status
	}
	a.jobListLock.Unlock()
}

// EnqueueJob puts a job to the queue and starts it immediately in
// case there is a free slot. The fn function must close the provided
// status channel once done, with the last written item representing
// the final status (see GeneralJobInfo.AsFinished and WithError).
func (a *Actions) EnqueueJob(fn *QueuedFunc, initialStatus GeneralJobInfo) {
	a.registerJob(initialStatus)
	a.queueLock.Lock()
	defer a.queueLock.Unlock()
	a.jobQueue.Enqueue(fn, initialStatus)
	a.startQueuedJobs()
}

// EqueueJobAfter behaves like EnqueueJob except that the job does
// not start before its parent job finishes. A failed parent fails
// the enqueued job too, without running it.
func (a *Actions) EqueueJobAfter(fn *QueuedFunc, initialStatus GeneralJobInfo, parentJobID string) {
	a.registerJob(initialStatus)
	a.queueLock.Lock()
	defer a.queueLock.Unlock()
	err := a.jobDeps.Add(initialStatus.GetID(), parentJobID)
	if err != nil {
		log.Error().Err(err).
			Str("jobId", initialStatus.GetID()).
			Str("parentJobId", parentJobID).
			Msg("failed to register job dependency, the job will run independently")

	} else if parent, ok := a.GetJob(parentJobID); ok && parent.IsFinished() {
		a.jobDeps.SetParentFinished(parentJobID, parent.GetError() != nil)
	}
	a.jobQueue.Enqueue(fn, initialStatus)
	a.startQueuedJobs()
}

// startQueuedJobs starts as many waiting jobs as the concurrency
// limit allows. Jobs waiting for an unfinished parent are moved
// back in the queue. Must be called with queueLock locked.
func (a *Actions) startQueuedJobs() {
	for i := a.jobQueue.Size(); i > 0 && a.numRunning < a.conf.MaxNumConcurrentJobs; i-- {
		jobID, err := a.jobQueue.PeekID()
		if err == ErrorEmptyQueue {
			return
		}
		if failed, err := a.jobDeps.HasFailedParent(jobID); err == nil && failed {
			_, initialState, _ := a.jobQueue.Dequeue()
			finalStatus := initialState.WithError(fmt.Errorf("parent job failed"))
			a.updateJobStatus(finalStatus)
			a.jobDeps.SetParentFinished(jobID, true)
			continue
		}
		if mustWait, err := a.jobDeps.MustWait(jobID); err == nil && mustWait {
			a.jobQueue.DelayNext()
			continue
		}
		fn, initialState, err := a.jobQueue.Dequeue()
		if err != nil {
			return
		}
		if _, present := a.GetJob(initialState.GetID()); !present {
			// deleted while waiting in the queue
			continue
		}
		a.numRunning++
		go a.runJob(fn, initialState)
	}
}

func (a *Actions) runJob(fn *QueuedFunc, initialStatus GeneralJobInfo) {
	updates := make(chan GeneralJobInfo, 10)
	go (*fn)(updates)
	lastStatus := initialStatus
	for item := range updates {
		lastStatus = item
		a.updateJobStatus(item)
	}
	if !lastStatus.IsFinished() {
		// a producer failing to report its final status is always
		// a programming error
		lastStatus = lastStatus.WithError(fmt.Errorf("job did not report its final status"))
		a.updateJobStatus(lastStatus)
	}
	log.Info().
		Str("jobId", lastStatus.GetID()).
		Str("jobType", lastStatus.GetType()).
		Str("treebank", lastStatus.GetTreebank()).
		Err(lastStatus.GetError()).
		Msg("job finished")
	a.queueLock.Lock()
	a.numRunning--
	a.jobDeps.SetParentFinished(lastStatus.GetID(), lastStatus.GetError() != nil)
	a.startQueuedJobs()
	a.queueLock.Unlock()
	a.sendNotifications(lastStatus)
}

func (a *Actions) sendNotifications(status GeneralJobInfo) {
	a.notificationsLock.Lock()
	recipients := a.notifications[status.GetID()]
	delete(a.notifications, status.GetID())
	a.notificationsLock.Unlock()
	if len(recipients) == 0 {
		return
	}
	if a.conf.EmailNotification == nil {
		log.Warn().Msg("cannot send a job notification, e-mail is not configured")
		return
	}
	var signature string
	if a.conf.EmailNotification.HasSignature() {
		var err error
		signature, err = a.conf.EmailNotification.LocalizedSignature(a.language)
		if err != nil {
			log.Warn().Err(err).Msg("failed to obtain localized e-mail signature")
		}

	} else {
		signature = a.conf.EmailNotification.DefaultSignature(a.language)
	}
	err := mail.SendNotification(
		a.conf.EmailNotification,
		recipients,
		a.msgPrinter.Sprintf("A background job has finished"),
		a.msgPrinter.Sprintf("Job: %s", extractJobDescription(a.msgPrinter, status)),
		a.msgPrinter.Sprintf("ID: %s", status.GetID()),
		a.msgPrinter.Sprintf("Treebank: %s", status.GetTreebank()),
		localizedStatus(a.msgPrinter, status),
		signature,
	)
	if err != nil {
		log.Error().Err(err).
			Str("jobId", status.GetID()).
			Msg("failed to send a job notification")
	}
}

// GetJob provides the current status of a job
func (a *Actions) GetJob(jobID string) (GeneralJobInfo, bool) {
	a.jobListLock.RLock()
	defer a.jobListLock.RUnlock()
	v, ok := a.jobList[jobID]
	return v, ok
}

// LastUnfinishedJobOfType searches for the latest still running job
// of the specified type operating on the specified treebank.
func (a *Actions) LastUnfinishedJobOfType(treebankID, jobType string) (GeneralJobInfo, bool) {
	var ans GeneralJobInfo
	a.jobListLock.RLock()
	defer a.jobListLock.RUnlock()
	for _, job := range a.jobList {
		if job.GetTreebank() == treebankID && job.GetType() == jobType && !job.IsFinished() &&
			(ans == nil || ans.GetStartDT().Before(job.GetStartDT())) {
			ans = job
		}
	}
	return ans, ans != nil
}

// TestAllowsJobRestart tests whether a job can be restarted without
// exceeding the configured number of restarts.
func (a *Actions) TestAllowsJobRestart(jinfo GeneralJobInfo) error {
	maxRestarts := a.conf.MaxNumRestarts
	if maxRestarts == 0 {
		maxRestarts = dfltMaxNumRestarts
	}
	if jinfo.GetNumRestarts() >= maxRestarts {
		return fmt.Errorf(
			"cannot restart job %s, max. number of restarts (%d) reached", jinfo.GetID(), maxRestarts)
	}
	if curr, ok := a.GetJob(jinfo.GetID()); ok && !curr.IsFinished() {
		return fmt.Errorf("cannot restart job %s, the job is still running", jinfo.GetID())
	}
	return nil
}

// GetDetachedJobs lists unfinished jobs stored during the previous
// server shutdown
func (a *Actions) GetDetachedJobs() []GeneralJobInfo {
	a.jobListLock.RLock()
	defer a.jobListLock.RUnlock()
	ans := make([]GeneralJobInfo, 0, len(a.detachedJobs))
	for _, v := range a.detachedJobs {
		ans = append(ans, v)
	}
	return ans
}

// ClearDetachedJob removes a detached job record and reports whether
// the record was actually present
func (a *Actions) ClearDetachedJob(jobID string) bool {
	a.jobListLock.Lock()
	defer a.jobListLock.Unlock()
	_, ok := a.detachedJobs[jobID]
	delete(a.detachedJobs, jobID)
	return ok
}

// dumpJobsStatus stores unfinished jobs (incl. the not yet resolved
// detached ones) to the status file so they can be restored once the
// server starts again. The respective job status types must be
// registered via gob.Register.
func (a *Actions) dumpJobsStatus() {
	if a.conf.StatusDataPath == "" {
		log.Warn().Msg("no statusDataPath configured, unfinished jobs will be lost")
		return
	}
	a.jobListLock.RLock()
	data := make([]GeneralJobInfo, 0, len(a.jobList))
	for _, v := range a.jobList {
		if !v.IsFinished() {
			data = append(data, v)
		}
	}
	for _, v := range a.detachedJobs {
		data = append(data, v)
	}
	a.jobListLock.RUnlock()
	fw, err := os.Create(a.conf.StatusDataPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to store statuses of unfinished jobs")
		return
	}
	defer fw.Close()
	if err := gob.NewEncoder(fw).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to store statuses of unfinished jobs")
		return
	}
	log.Info().Int("numJobs", len(data)).Msg("stored statuses of unfinished jobs")
}

func (a *Actions) loadJobsStatus() error {
	if a.conf.StatusDataPath == "" {
		return nil
	}
	fr, err := os.Open(a.conf.StatusDataPath)
	if os.IsNotExist(err) {
		return nil

	} else if err != nil {
		return fmt.Errorf("failed to restore detached jobs: %w", err)
	}
	defer fr.Close()
	var data []GeneralJobInfo
	if err := gob.NewDecoder(fr).Decode(&data); err != nil {
		return fmt.Errorf("failed to restore detached jobs: %w", err)
	}
	for _, job := range data {
		a.detachedJobs[job.GetID()] = job
	}
	log.Info().Int("numJobs", len(data)).Msg("restored detached jobs")
	return nil
}

// JobList godoc
// @Summary      List current jobs
// @Description  Lists recent jobs in either full or compact form, sorted by the start time.
// @Produce      json
// @Param        compact query int false "Provide compact job descriptions" default(0)
// @Param        unfinishedOnly query int false "List only unfinished jobs" default(0)
// @Success      200 {array} any
// @Router       /jobs [get]
func (a *Actions) JobList(ctx *gin.Context) {
	if ctx.Request.URL.Query().Get("compact") == "1" {
		ans := make(JobInfoListCompact, 0, len(a.jobList))
		a.jobListLock.RLock()
		for _, v := range a.jobList {
			ans = append(ans, v.CompactVersion())
		}
		a.jobListLock.RUnlock()
		sort.Sort(ans)
		uniresp.WriteJSONResponse(ctx.Writer, ans)
		return
	}
	unfinishedOnly := ctx.Request.URL.Query().Get("unfinishedOnly") == "1"
	tmp := make(JobInfoList, 0, len(a.jobList))
	a.jobListLock.RLock()
	for _, v := range a.jobList {
		if unfinishedOnly && v.IsFinished() {
			continue
		}
		tmp = append(tmp, v)
	}
	a.jobListLock.RUnlock()
	sort.Sort(tmp)
	ans := make([]any, len(tmp))
	for i, v := range tmp {
		ans[i] = v.FullInfo()
	}
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// Utilization godoc
// @Summary      Show jobs subsystem utilization
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /jobs/utilization [get]
func (a *Actions) Utilization(ctx *gin.Context) {
	a.queueLock.Lock()
	ans := map[string]any{
		"maxNumConcurrentJobs": a.conf.MaxNumConcurrentJobs,
		"numRunning":           a.numRunning,
		"numWaiting":           a.jobQueue.Size(),
	}
	a.queueLock.Unlock()
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// JobInfo godoc
// @Summary      Get a job status
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} any
// @Router       /jobs/{jobId} [get]
func (a *Actions) JobInfo(ctx *gin.Context) {
	job, ok := a.GetJob(ctx.Param("jobId"))
	if !ok {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job not found"), http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, job.FullInfo())
}

// Delete godoc
// @Summary      Stop and remove a job
// @Description  Stops a running job (resp. removes a queued one before it has a chance to start) and removes its status record.
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} any
// @Router       /jobs/{jobId} [delete]
func (a *Actions) Delete(ctx *gin.Context) {
	jobID := ctx.Param("jobId")
	job, ok := a.GetJob(jobID)
	if !ok {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job not found"), http.StatusNotFound)
		return
	}
	if !job.IsFinished() {
		a.jobStop <- jobID
	}
	a.jobListLock.Lock()
	delete(a.jobList, jobID)
	a.jobListLock.Unlock()
	a.notificationsLock.Lock()
	delete(a.notifications, jobID)
	a.notificationsLock.Unlock()
	uniresp.WriteJSONResponse(ctx.Writer, job.FullInfo())
}

// ClearIfFinished godoc
// @Summary      Remove a job status record if the job is finished
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {object} jobs.JobInfoCompact
// @Router       /jobs/{jobId}/clearIfFinished [get]
func (a *Actions) ClearIfFinished(ctx *gin.Context) {
	job, ok := a.GetJob(ctx.Param("jobId"))
	if !ok {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job not found"), http.StatusNotFound)
		return
	}
	if !job.IsFinished() {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job is not finished"), http.StatusBadRequest)
		return
	}
	a.jobListLock.Lock()
	delete(a.jobList, job.GetID())
	a.jobListLock.Unlock()
	uniresp.WriteJSONResponse(ctx.Writer, job.CompactVersion())
}

// GetNotifications godoc
// @Summary      List e-mail addresses subscribed for a job notification
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Success      200 {array} string
// @Router       /jobs/{jobId}/emailNotification [get]
func (a *Actions) GetNotifications(ctx *gin.Context) {
	jobID := ctx.Param("jobId")
	if _, ok := a.GetJob(jobID); !ok {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job not found"), http.StatusNotFound)
		return
	}
	a.notificationsLock.Lock()
	ans := append([]string{}, a.notifications[jobID]...)
	a.notificationsLock.Unlock()
	uniresp.WriteJSONResponse(ctx.Writer, ans)
}

// CheckNotification godoc
// @Summary      Test whether an e-mail address is subscribed for a job notification
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Param        address path string true "E-mail address"
// @Success      200 {object} map[string]bool
// @Router       /jobs/{jobId}/emailNotification/{address} [get]
func (a *Actions) CheckNotification(ctx *gin.Context) {
	a.notificationsLock.Lock()
	registered := collections.SliceContains(a.notifications[ctx.Param("jobId")], ctx.Param("address"))
	a.notificationsLock.Unlock()
	if !registered {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("notification not found"), http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]bool{"registered": true})
}

// AddNotification godoc
// @Summary      Subscribe an e-mail address for a job notification
// @Description  Once the job finishes, a message is sent to all the subscribed addresses.
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Param        address path string true "E-mail address"
// @Success      200 {object} map[string]bool
// @Router       /jobs/{jobId}/emailNotification/{address} [put]
func (a *Actions) AddNotification(ctx *gin.Context) {
	jobID := ctx.Param("jobId")
	address := ctx.Param("address")
	job, ok := a.GetJob(jobID)
	if !ok {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job not found"), http.StatusNotFound)
		return
	}
	if job.IsFinished() {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("job has already finished"), http.StatusBadRequest)
		return
	}
	if !strings.Contains(address, "@") {
		uniresp.WriteJSONErrorResponse(
			ctx.Writer, uniresp.NewActionError("invalid e-mail address"), http.StatusUnprocessableEntity)
		return
	}
	a.notificationsLock.Lock()
	if !collections.SliceContains(a.notifications[jobID], address) {
		a.notifications[jobID] = append(a.notifications[jobID], address)
	}
	a.notificationsLock.Unlock()
	uniresp.WriteJSONResponse(ctx.Writer, map[string]bool{"registered": true})
}

// RemoveNotification godoc
// @Summary      Unsubscribe an e-mail address from a job notification
// @Produce      json
// @Param        jobId path string true "Job ID"
// @Param        address path string true "E-mail address"
// @Success      200 {object} map[string]bool
// @Router       /jobs/{jobId}/emailNotification/{address} [delete]
func (a *Actions) RemoveNotification(ctx *gin.Context) {
	jobID := ctx.Param("jobId")
	address := ctx.Param("address")
	a.notificationsLock.Lock()
	defer a.notificationsLock.Unlock()
	for i, addr := range a.notifications[jobID] {
		if addr == address {
			a.notifications[jobID] = append(a.notifications[jobID][:i], a.notifications[jobID][i+1:]...)
			uniresp.WriteJSONResponse(ctx.Writer, map[string]bool{"registered": false})
			return
		}
	}
	uniresp.WriteJSONErrorResponse(
		ctx.Writer, uniresp.NewActionError("notification not found"), http.StatusNotFound)
}

// NewActions is the default factory. Besides creating the instance
// it also restores detached jobs from the previous server run and
// installs a shutdown hook storing unfinished jobs to disk.
func NewActions(conf *Conf, lang string, ctx context.Context, jobStop chan<- string) *Actions {
	tag, err := language.Parse(lang)
	if err != nil {
		log.Warn().Msgf("unsupported language %s, falling back to English", lang)
		tag = language.English
	}
	ans := &Actions{
		conf:          conf,
		jobList:       make(map[string]GeneralJobInfo),
		detachedJobs:  make(map[string]GeneralJobInfo),
		notifications: make(map[string][]string),
		jobQueue:      &JobQueue{},
		jobDeps:       make(JobsDeps),
		msgPrinter:    message.NewPrinter(tag),
		language:      lang,
		jobStop:       jobStop,
	}
	if err := ans.loadJobsStatus(); err != nil {
		log.Error().Err(err).Msg("failed to restore detached jobs")
	}
	go func() {
		<-ctx.Done()
		ans.dumpJobsStatus()
	}()
	return ans
}
