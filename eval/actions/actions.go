// Copyright 2020 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2020 Institute of the Czech National Corpus,
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
	"sync"

	"udeval/archive"
	"udeval/eval"
	"udeval/jobs"
	"udeval/treebank"

	"github.com/rs/zerolog/log"
)

type Actions struct {
	treebanks *treebank.TreebanksSetup

	// ctx controls cancellation
	ctx context.Context

	// jobStopChannel receives job ID based on user interaction with job
	// HTTP API in case user asks for stopping a running evaluation
	jobStopChannel <-chan string

	jobActions *jobs.Actions

	// archiveDB stores finished evaluation runs. It may be nil in which
	// case the archiving is disabled.
	archiveDB *archive.Adapter

	cache *eval.ResultCache

	runningJobs     map[string]context.CancelFunc
	runningJobsLock sync.Mutex
}

func (a *Actions) registerRunningJob(jobID string, cancel context.CancelFunc) {
	a.runningJobsLock.Lock()
	defer a.runningJobsLock.Unlock()
	a.runningJobs[jobID] = cancel
}

func (a *Actions) clearRunningJob(jobID string) {
	a.runningJobsLock.Lock()
	defer a.runningJobsLock.Unlock()
	delete(a.runningJobs, jobID)
}

func (a *Actions) listenForJobStop() {
	for {
		select {
		case jobID := <-a.jobStopChannel:
			a.runningJobsLock.Lock()
			cancel, ok := a.runningJobs[jobID]
			a.runningJobsLock.Unlock()
			if ok {
				cancel()
				log.Info().Str("jobId", jobID).Msg("requested evaluation job stop")
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// NewActions is the default factory for Actions
func NewActions(
	ctx context.Context,
	treebanks *treebank.TreebanksSetup,
	jobStopChannel <-chan string,
	jobActions *jobs.Actions,
	archiveDB *archive.Adapter,
	cache *eval.ResultCache,
) *Actions {
	actions := &Actions{
		ctx:            ctx,
		treebanks:      treebanks,
		jobStopChannel: jobStopChannel,
		jobActions:     jobActions,
		archiveDB:      archiveDB,
		cache:          cache,
		runningJobs:    make(map[string]context.CancelFunc),
	}
	go actions.listenForJobStop()
	return actions
}
