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

package main

import (
	"context"
	"encoding/gob"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"udeval/archive"
	"udeval/batch"
	"udeval/cnf"
	"udeval/debug"
	"udeval/docs"
	"udeval/eval"
	evalActions "udeval/eval/actions"
	"udeval/general"
	"udeval/jobs"
	"udeval/root"
	"udeval/treebank"

	_ "udeval/translations"
)

var (
	version   string
	buildDate string
	gitCommit string
)

func init() {
	gob.Register(&eval.JobInfo{})
	gob.Register(&jobs.DummyJobInfo{})
}

// @title           UDEval - Universal Dependencies Treebank Evaluation
// @description     Evaluation of parsed Universal Dependencies treebanks against their gold standards. The service computes the standard CoNLL shared task metrics (UPOS, UFeats, Lemmas, UAS, LAS, CLAS, MLAS, BLEX and the enhanced ELAS, EULAS) for registered treebanks and keeps a searchable archive of the runs.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost
// @BasePath  /

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	version := general.VersionInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "UDEval - Universal Dependencies Treebank Evaluation\n\nUsage:\n\t%s [options] start [config.json]\n\t%s [options] evaluate [gold.conllu] [system.conllu]\n\t%s [options] version\n",
			filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	action := flag.Arg(0)
	if action == "version" {
		fmt.Printf("udeval %s\nbuild date: %s\nlast commit: %s\n", version.Version, version.BuildDate, version.GitCommit)
		return

	} else if action == "evaluate" {
		if flag.Arg(1) == "" || flag.Arg(2) == "" {
			fmt.Fprintln(os.Stderr, "missing a gold file and/or a system file argument")
			os.Exit(1)
		}
		result, err := eval.EvaluateFiles(flag.Arg(1), flag.Arg(2), eval.DefaultOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to evaluate: %s\n", err)
			os.Exit(1)
		}
		batch.FormatResult(os.Stdout, result)
		return

	} else if action != "start" {
		log.Fatal().Msgf("Unknown action %s", action)
	}
	conf := cnf.LoadConfig(flag.Arg(1))
	logging.SetupLogging(conf.Logging)
	log.Info().Msg("Starting UDEval")
	cnf.ApplyDefaults(conf)
	if err := conf.TreebanksSetup.Load(); err != nil {
		log.Fatal().
			Err(err).
			Str("targetDirectory", conf.TreebanksSetup.ConfFilesDir).
			Msg("failed to load treebank configs")
	}

	docs.SwaggerInfo.Version = version.Version
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%d", conf.ListenAddress, conf.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	var archiveDB *archive.Adapter
	if conf.ArchiveDB != nil {
		var err error
		archiveDB, err = archive.OpenDB(conf.ArchiveDB)
		if err != nil {
			log.Fatal().Err(err).Send()
		}
		if err := archiveDB.WaitForReady(ctx); err != nil {
			log.Fatal().Err(err).Send()
		}
		log.Info().Msgf(
			"using evaluation archive SQL database: %s@%s", conf.ArchiveDB.Name, conf.ArchiveDB.Host)

	} else {
		log.Info().Msg("no archive database configured, evaluation runs will not be stored")
	}

	if !conf.Logging.Level.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware())
	engine.Use(uniresp.AlwaysJSONContentType())
	engine.NoMethod(uniresp.NoMethodHandler)
	engine.NoRoute(uniresp.NotFoundHandler)

	rootActions := root.Actions{Version: version, Conf: conf}

	jobStopChannel := make(chan string)
	jobActions := jobs.NewActions(conf.Jobs, conf.Language, ctx, jobStopChannel)

	resultCache := eval.NewResultCache(conf.GetLocation())

	treebankActions := treebank.NewActions(conf.TreebanksSetup)

	evalActionsHandler := evalActions.NewActions(
		ctx,
		conf.TreebanksSetup,
		jobStopChannel,
		jobActions,
		archiveDB,
		resultCache,
	)

	for _, dj := range jobActions.GetDetachedJobs() {
		if dj.IsFinished() {
			continue
		}
		switch tdj := dj.(type) {
		case *eval.JobInfo:
			err := evalActionsHandler.RestartEvaluationJob(tdj)
			if err != nil {
				log.Error().Err(err).Msgf("Failed to restart job %s. The job will be removed.", tdj.ID)
			}
			jobActions.ClearDetachedJob(tdj.ID)
		default:
			log.Error().Msg("unknown detached job type")
		}
	}

	engine.GET(
		"/", rootActions.RootAction)
	engine.GET(
		"/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET(
		"/treebanks", treebankActions.TreebankList)
	engine.GET(
		"/treebanks/dataFiles", treebankActions.DataFiles)
	engine.GET(
		"/treebanks/:treebankId", treebankActions.TreebankInfo)
	engine.GET(
		"/treebanks/:treebankId/checkGoldFile", treebankActions.CheckGoldFile)

	engine.GET(
		"/evaluation/metrics", evalActionsHandler.Metrics)
	engine.POST(
		"/evaluation/adhoc", evalActionsHandler.AdHocEvaluation)
	engine.POST(
		"/evaluation/:treebankId", evalActionsHandler.Submit)
	engine.GET(
		"/evaluation/:treebankId/result", evalActionsHandler.GetResult)
	engine.POST(
		"/evaluation/:treebankId/validate", evalActionsHandler.ValidatePair)

	if archiveDB != nil {
		archiveActions := archive.NewActions(archiveDB)
		engine.GET(
			"/archive/run/:runId", archiveActions.RunInfo)
		engine.GET(
			"/archive/:treebankId", archiveActions.RunList)
		engine.GET(
			"/archive/:treebankId/scoreHistory", archiveActions.ScoreHistory)
	}

	engine.GET(
		"/jobs", jobActions.JobList)
	engine.GET(
		"/jobs/utilization", jobActions.Utilization)
	engine.GET(
		"/jobs/:jobId", jobActions.JobInfo)
	engine.DELETE(
		"/jobs/:jobId", jobActions.Delete)
	engine.GET(
		"/jobs/:jobId/clearIfFinished", jobActions.ClearIfFinished)
	engine.GET(
		"/jobs/:jobId/emailNotification", jobActions.GetNotifications)
	engine.GET(
		"/jobs/:jobId/emailNotification/:address",
		jobActions.CheckNotification)
	engine.PUT(
		"/jobs/:jobId/emailNotification/:address",
		jobActions.AddNotification)
	engine.DELETE(
		"/jobs/:jobId/emailNotification/:address",
		jobActions.RemoveNotification)

	if conf.Logging.Level.IsDebugMode() {
		debugActions := debug.NewActions(jobActions)
		engine.POST("/debug/createJob", debugActions.CreateDummyJob)
		engine.POST("/debug/finishJob/:jobId", debugActions.FinishDummyJob)
		engine.GET("/debug/job/:jobId/dump", debugActions.DumpJob)
	}

	log.Info().Msgf("starting to listen at %s:%d", conf.ListenAddress, conf.ListenPort)
	srv := &http.Server{
		Handler:      engine,
		Addr:         fmt.Sprintf("%s:%d", conf.ListenAddress, conf.ListenPort),
		WriteTimeout: time.Duration(conf.ServerWriteTimeoutSecs) * time.Second,
		ReadTimeout:  time.Duration(conf.ServerReadTimeoutSecs) * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != nil {
			log.Error().Err(err).Send()
		}
	}()

	<-ctx.Done()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutDown); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
}
