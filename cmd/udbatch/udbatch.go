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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"udeval/batch"
	"udeval/eval"

	"github.com/gosuri/uiprogress"
)

var (
	version   string
	buildDate string
	gitCommit string
)

func main() {
	evalCmd := flag.NewFlagSet("evaluate a single file pair", flag.ExitOnError)
	evalNoDeprels := evalCmd.Bool("no-deprels", false, "skip the dependency metrics (UAS, LAS, CLAS, MLAS, BLEX, ELAS, EULAS)")
	evalTbType := evalCmd.String("treebank-type", "0", "treebank type flags applied to the enhanced metrics")

	batchCmd := flag.NewFlagSet("evaluate a directory pair", flag.ExitOnError)
	batchNoDeprels := batchCmd.Bool("no-deprels", false, "skip the dependency metrics (UAS, LAS, CLAS, MLAS, BLEX, ELAS, EULAS)")
	batchTbType := batchCmd.String("treebank-type", "0", "treebank type flags applied to the enhanced metrics")

	versionCmd := flag.NewFlagSet("show version", flag.ExitOnError)

	evalCmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "udbatch\n\nUsage:\n\t%s [options] evaluate [gold file] [system file]\n\n", filepath.Base(os.Args[0]))
		evalCmd.PrintDefaults()
	}
	batchCmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n\t%s [options] batch [gold dir] [system dir]\n\n", filepath.Base(os.Args[0]))
		batchCmd.PrintDefaults()
	}
	versionCmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "\n\t%s version\n", filepath.Base(os.Args[0]))
		versionCmd.PrintDefaults()
	}

	generalUsage := func() {
		fmt.Fprintf(os.Stderr, "udbatch - evaluate parsed CoNLL-U files against their gold standards\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\t%s [options] evaluate [gold file] [system file]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\t%s [options] batch [gold dir] [system dir]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\t%s help [command]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "\t%s version\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}

	var action string
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	switch action {
	case "evaluate":
		evalCmd.Parse(os.Args[2:])
		runEvaluate(evalCmd.Arg(0), evalCmd.Arg(1), mkOptions(*evalNoDeprels, *evalTbType))
	case "batch":
		batchCmd.Parse(os.Args[2:])
		runBatch(batchCmd.Arg(0), batchCmd.Arg(1), mkOptions(*batchNoDeprels, *batchTbType))
	case "version":
		fmt.Printf("udbatch %s\nbuild date: %s\nlast commit: %s\n", version, buildDate, gitCommit)
	case "help":
		if len(os.Args) > 2 {
			helpCmd := os.Args[2]
			switch helpCmd {
			case "evaluate":
				evalCmd.Usage()
			case "batch":
				batchCmd.Usage()
			case "version":
				versionCmd.Usage()
			default:
				fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", helpCmd)
				generalUsage()
			}
		} else {
			generalUsage()
		}
	default:
		generalUsage()
	}
}

func mkOptions(noDeprels bool, tbType string) eval.Options {
	opts := eval.DefaultOptions()
	opts.EvalDeprels = !noDeprels
	opts.TreebankType = tbType
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "udbatch: %v\n", err)
		os.Exit(1)
	}
	return opts
}

func runEvaluate(goldPath, systemPath string, opts eval.Options) {
	if goldPath == "" || systemPath == "" {
		fmt.Fprintln(os.Stderr, "udbatch: both a gold file and a system file must be specified")
		os.Exit(1)
	}
	result, err := eval.EvaluateFiles(goldPath, systemPath, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "udbatch: %v\n", err)
		os.Exit(1)
	}
	batch.FormatResult(os.Stdout, result)
}

func runBatch(goldDir, systemDir string, opts eval.Options) {
	if goldDir == "" || systemDir == "" {
		fmt.Fprintln(os.Stderr, "udbatch: both a gold directory and a system directory must be specified")
		os.Exit(1)
	}
	pairs, err := batch.PairFiles(goldDir, systemDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "udbatch: %v\n", err)
		os.Exit(1)
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(pairs))
	bar.AppendCompleted()
	bar.PrependElapsed()
	bar.AppendFunc(func(b *uiprogress.Bar) string {
		if b.Current() == 0 {
			return ""
		}
		return pairs[b.Current()-1].Name
	})
	results := batch.Run(pairs, opts, func(res batch.FileResult) {
		bar.Incr()
	})
	uiprogress.Stop()

	numFailed := 0
	for _, res := range results {
		if res.Err != nil {
			numFailed++
			fmt.Fprintf(os.Stderr, "udbatch: %s: %v\n", res.Name, res.Err)
		}
	}
	fmt.Println()
	batch.FormatSummary(os.Stdout, batch.MacroAverage(results))
	fmt.Printf("\nevaluated %d of %d file pairs\n", len(results)-numFailed, len(results))
	if numFailed > 0 {
		os.Exit(1)
	}
}
