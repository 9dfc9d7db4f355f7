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

// Package batch evaluates whole directories of CoNLL-U files. Files
// are paired by their base name and each pair is scored separately,
// with a macro-averaged summary over the whole set.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"udeval/eval"

	"github.com/czcorpus/cnc-gokit/fs"
	"golang.org/x/exp/maps"
)

// FilePair links a gold standard file with the system output which
// is evaluated against it.
type FilePair struct {
	Name       string
	GoldPath   string
	SystemPath string
}

// FileResult is the outcome of a single pair evaluation. A failed
// evaluation keeps its error and has a nil score map.
type FileResult struct {
	Name   string
	Scores eval.Result
	Err    error
}

// PairFiles matches the CoNLL-U files of a gold directory with their
// same-named counterparts in a system directory. Both directories
// must provide the same set of file names.
func PairFiles(goldDir, systemDir string) ([]FilePair, error) {
	baseErrTpl := "failed to pair files: %w"
	goldFiles, err := listConlluFiles(goldDir)
	if err != nil {
		return nil, fmt.Errorf(baseErrTpl, err)
	}
	systemFiles, err := listConlluFiles(systemDir)
	if err != nil {
		return nil, fmt.Errorf(baseErrTpl, err)
	}
	if len(goldFiles) != len(systemFiles) {
		return nil, &eval.CountMismatchError{
			Unit:        "files",
			GoldCount:   len(goldFiles),
			SystemCount: len(systemFiles),
		}
	}
	systemByName := make(map[string]string)
	for _, p := range systemFiles {
		systemByName[filepath.Base(p)] = p
	}
	ans := make([]FilePair, 0, len(goldFiles))
	for _, p := range goldFiles {
		name := filepath.Base(p)
		systemPath, ok := systemByName[name]
		if !ok {
			names := maps.Keys(systemByName)
			sort.Strings(names)
			return nil, fmt.Errorf(
				baseErrTpl,
				fmt.Errorf("no system counterpart for %s (system files: %s)",
					name, strings.Join(names, ", ")),
			)
		}
		ans = append(ans, FilePair{Name: name, GoldPath: p, SystemPath: systemPath})
	}
	return ans, nil
}

func listConlluFiles(dir string) ([]string, error) {
	files, err := fs.ListFilesInDir(dir, false)
	if err != nil {
		return nil, err
	}
	var ans []string
	files.ForEach(func(finfo os.FileInfo, _ int) bool {
		name := filepath.Base(finfo.Name())
		if strings.HasSuffix(name, ".conllu") {
			ans = append(ans, filepath.Join(dir, name))
		}
		return true
	})
	sort.Strings(ans)
	return ans, nil
}

// Run evaluates all the pairs one by one. The onDone callback (may be
// nil) is invoked after each finished pair which allows for progress
// reporting. Broken pairs do not stop the run, their errors are kept
// in the respective results.
func Run(pairs []FilePair, opts eval.Options, onDone func(res FileResult)) []FileResult {
	ans := make([]FileResult, 0, len(pairs))
	for _, pair := range pairs {
		res := FileResult{Name: pair.Name}
		res.Scores, res.Err = eval.EvaluateFiles(pair.GoldPath, pair.SystemPath, opts)
		ans = append(ans, res)
		if onDone != nil {
			onDone(res)
		}
	}
	return ans
}

// MacroAverage provides the mean F1 per metric over all the results
// which evaluated without an error. This matches how the CoNLL shared
// tasks rank systems across multiple treebanks.
func MacroAverage(results []FileResult) map[eval.Metric]float64 {
	sums := make(map[eval.Metric]float64)
	numOK := 0
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		numOK++
		for metric, score := range res.Scores {
			sums[metric] += score.F1
		}
	}
	ans := make(map[eval.Metric]float64, len(sums))
	for metric, sum := range sums {
		ans[metric] = sum / float64(numOK)
	}
	return ans
}

// FormatResult writes a plain text table with all the scores of a
// single evaluation. The layout follows the output of the CoNLL 2018
// shared task evaluation script.
func FormatResult(w io.Writer, result eval.Result) {
	fmt.Fprintln(w, "Metric     | Precision |    Recall |  F1 Score | AligndAcc")
	fmt.Fprintln(w, "-----------+-----------+-----------+-----------+-----------")
	for _, metric := range eval.AllMetrics {
		score, ok := result[metric]
		if !ok {
			continue
		}
		alignedAcc := ""
		if score.AlignedAccuracy != nil {
			alignedAcc = fmt.Sprintf("%10.2f", *score.AlignedAccuracy)
		}
		fmt.Fprintf(w, "%-11s|%10.2f |%10.2f |%10.2f |%s\n",
			string(metric), score.Precision, score.Recall, score.F1, alignedAcc)
	}
}

// FormatSummary writes a plain text table with macro-averaged
// F1 scores, one row per metric.
func FormatSummary(w io.Writer, avg map[eval.Metric]float64) {
	fmt.Fprintln(w, "Metric     |  Avg F1")
	fmt.Fprintln(w, "-----------+---------")
	for _, metric := range eval.AllMetrics {
		value, ok := avg[metric]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%-11s|%8.2f\n", string(metric), value)
	}
}
