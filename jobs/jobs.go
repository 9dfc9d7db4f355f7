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

// Package jobs provides a lightweight in-process system for running,
// queueing and monitoring asynchronous jobs (treebank evaluations,
// archive maintenance etc.). Jobs are identified by UUIDs, their
// statuses are exposed via HTTP and unfinished jobs survive server
// restarts as "detached" records.
package jobs

import (
	"udeval/mail"
)

const (
	dfltMaxNumRestarts = 2
)

// Conf configures the jobs subsystem
type Conf struct {

	// StatusDataPath specifies a file where statuses of unfinished
	// jobs are stored during server shutdown
	StatusDataPath string `json:"statusDataPath"`

	MaxNumConcurrentJobs int `json:"maxNumConcurrentJobs"`

	MaxNumRestarts int `json:"maxNumRestarts"`

	// EmailNotification allows sending e-mails to subscribed
	// users once their watched jobs finish
	EmailNotification *mail.EmailNotification `json:"emailNotification"`
}

// GeneralJobInfo defines a minimal interface needed for strictly
// typed job statuses to be manageable by the jobs subsystem.
// Any implementation should behave like a value type, i.e. methods
// returning a modified status must return a new value and keep
// the receiver untouched.
type GeneralJobInfo interface {

	// GetID returns job's unique identifier
	GetID() string

	// GetType returns a string identifier of the job's type
	// (e.g. "treebank-evaluation")
	GetType() string

	// GetStartDT provides a datetime information of when the job started
	GetStartDT() JSONTime

	// GetNumRestarts returns how many times the job was restarted
	// after an interrupted server run
	GetNumRestarts() int

	// GetTreebank returns an identifier of the treebank the job
	// operates on
	GetTreebank() string

	// IsFinished returns true if the job has finished,
	// no matter what the result was
	IsFinished() bool

	// AsFinished returns a new job status with the finished flag
	// set and the update time refreshed
	AsFinished() GeneralJobInfo

	// CompactVersion produces a reduced job status for listings
	CompactVersion() JobInfoCompact

	// FullInfo produces a JSON-marshallable version of the whole
	// status (note that the Error attribute, being of the `error`
	// type, requires an explicit conversion)
	FullInfo() any

	// GetError returns status' error. If nil then the job
	// has run (or is still running) without problems
	GetError() error

	// WithError produces a new finished job status with the
	// provided error attached
	WithError(err error) GeneralJobInfo
}

// JobInfoCompact is a simplified and unified job status for quick
// job listings where type-specific arguments and results do not matter
type JobInfoCompact struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Treebank string   `json:"treebank"`
	Start    JSONTime `json:"start"`
	Update   JSONTime `json:"update"`
	Finished bool     `json:"finished"`
	OK       bool     `json:"ok"`
}

// JobInfoList is a chronologically sortable list of job statuses
type JobInfoList []GeneralJobInfo

func (jil JobInfoList) Len() int {
	return len(jil)
}

func (jil JobInfoList) Less(i, j int) bool {
	return jil[i].GetStartDT().Before(jil[j].GetStartDT())
}

func (jil JobInfoList) Swap(i, j int) {
	jil[i], jil[j] = jil[j], jil[i]
}

type JobInfoListCompact []JobInfoCompact

func (jil JobInfoListCompact) Len() int {
	return len(jil)
}

func (jil JobInfoListCompact) Less(i, j int) bool {
	return jil[i].Start.Before(jil[j].Start)
}

func (jil JobInfoListCompact) Swap(i, j int) {
	jil[i], jil[j] = jil[j], jil[i]
}

// ErrorToString is a helper allowing serialization of job errors
// (which are of the `error` type and as such cannot be directly
// serialized to JSON)
func ErrorToString(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
