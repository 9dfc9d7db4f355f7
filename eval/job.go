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

package eval

import (
	"time"

	"udeval/jobs"
)

const JobType = "treebank-evaluation"

// JobArgs describe a single requested treebank evaluation
type JobArgs struct {
	TreebankID string  `json:"treebank"`
	GoldPath   string  `json:"goldPath"`
	SystemPath string  `json:"systemPath"`
	Options    Options `json:"options"`
}

// JobInfo collects information about a treebank evaluation job
type JobInfo struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	TreebankID  string        `json:"treebank"`
	Start       jobs.JSONTime `json:"start"`
	Update      jobs.JSONTime `json:"update"`
	Finished    bool          `json:"finished"`
	Error       error         `json:"error,omitempty"`
	Args        JobArgs       `json:"args"`
	Result      Result        `json:"result,omitempty"`
	NumRestarts int           `json:"numRestarts"`
}

func (j JobInfo) GetID() string {
	return j.ID
}

func (j JobInfo) GetType() string {
	return j.Type
}

func (j JobInfo) GetStartDT() jobs.JSONTime {
	return j.Start
}

func (j JobInfo) GetNumRestarts() int {
	return j.NumRestarts
}

func (j JobInfo) GetTreebank() string {
	return j.TreebankID
}

func (j JobInfo) IsFinished() bool {
	return j.Finished
}

func (j JobInfo) AsFinished() jobs.GeneralJobInfo {
	j.Update = jobs.CurrentDatetime()
	j.Finished = true
	return &j
}

func (j JobInfo) CompactVersion() jobs.JobInfoCompact {
	item := jobs.JobInfoCompact{
		ID:       j.ID,
		Type:     j.Type,
		Treebank: j.TreebankID,
		Start:    j.Start,
		Update:   j.Update,
		Finished: j.Finished,
		OK:       true,
	}
	if j.Error != nil {
		item.OK = false
	}
	return item
}

func (j JobInfo) FullInfo() any {
	return struct {
		ID          string        `json:"id"`
		Type        string        `json:"type"`
		TreebankID  string        `json:"treebank"`
		Start       jobs.JSONTime `json:"start"`
		Update      jobs.JSONTime `json:"update"`
		Finished    bool          `json:"finished"`
		Error       string        `json:"error,omitempty"`
		OK          bool          `json:"ok"`
		Args        JobArgs       `json:"args"`
		Result      Result        `json:"result,omitempty"`
		NumRestarts int           `json:"numRestarts"`
	}{
		ID:          j.ID,
		Type:        j.Type,
		TreebankID:  j.TreebankID,
		Start:       j.Start,
		Update:      j.Update,
		Finished:    j.Finished,
		Error:       jobs.ErrorToString(j.Error),
		OK:          j.Error == nil,
		Args:        j.Args,
		Result:      j.Result,
		NumRestarts: j.NumRestarts,
	}
}

func (j JobInfo) GetError() error {
	return j.Error
}

func (j JobInfo) WithError(err error) jobs.GeneralJobInfo {
	return &JobInfo{
		ID:          j.ID,
		Type:        j.Type,
		TreebankID:  j.TreebankID,
		Start:       j.Start,
		Update:      jobs.JSONTime(time.Now()),
		Finished:    true,
		Error:       err,
		Args:        j.Args,
		Result:      j.Result,
		NumRestarts: j.NumRestarts,
	}
}
