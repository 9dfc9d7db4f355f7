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
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"udeval/eval"

	"github.com/rs/zerolog/log"
)

/*

CREATE TABLE udeval_evaluation (
	id VARCHAR(36) NOT NULL,
	treebank_id VARCHAR(127) NOT NULL,
	gold_path TEXT NOT NULL,
	system_path TEXT NOT NULL,
	eval_deprels TINYINT(1) NOT NULL,
	treebank_type VARCHAR(7) NOT NULL,
	created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id)
);

CREATE TABLE udeval_evaluation_score (
	evaluation_id VARCHAR(36) NOT NULL,
	metric VARCHAR(15) NOT NULL,
	gold_total INT NOT NULL,
	system_total INT NOT NULL,
	correct INT NOT NULL,
	aligned_total INT,
	prec FLOAT NOT NULL,
	recall FLOAT NOT NULL,
	f1 FLOAT NOT NULL,
	aligned_accuracy FLOAT,
	PRIMARY KEY (evaluation_id, metric),
	FOREIGN KEY (evaluation_id) REFERENCES udeval_evaluation(id)
);

*/

var ErrRunNotFound = errors.New("evaluation run not found")

// RunRecord is a single archived evaluation run. Scores may be empty
// in listings where only the run headers are fetched.
type RunRecord struct {
	ID         string       `json:"id"`
	TreebankID string       `json:"treebank"`
	GoldPath   string       `json:"goldPath"`
	SystemPath string       `json:"systemPath"`
	Options    eval.Options `json:"options"`
	Created    time.Time    `json:"created"`
	Scores     eval.Result  `json:"scores,omitempty"`
}

// MetricHistoryItem is one point of a metric development time series.
type MetricHistoryItem struct {
	RunID   string    `json:"runId"`
	Created time.Time `json:"created"`
	F1      float64   `json:"f1"`
}

// InsertRun stores a finished evaluation run along with all its
// metric scores in a single transaction.
func (a *Adapter) InsertRun(ctx context.Context, rec RunRecord) error {
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to archive evaluation run: %w", err)
	}
	rollback := func() {
		if err := tx.Rollback(); err != nil {
			log.Error().Err(err).Msg("InsertRun - failed to rollback a transaction")
		}
	}
	_, err = tx.ExecContext(
		ctx,
		"INSERT INTO udeval_evaluation "+
			"(id, treebank_id, gold_path, system_path, eval_deprels, treebank_type, created) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID,
		rec.TreebankID,
		rec.GoldPath,
		rec.SystemPath,
		rec.Options.EvalDeprels,
		rec.Options.TreebankType,
		rec.Created,
	)
	if err != nil {
		rollback()
		return fmt.Errorf("failed to archive evaluation run: %w", err)
	}
	for _, metric := range eval.AllMetrics {
		score, ok := rec.Scores[metric]
		if !ok {
			continue
		}
		var alignedTotal sql.NullInt64
		if score.AlignedTotal != nil {
			alignedTotal = sql.NullInt64{Int64: int64(*score.AlignedTotal), Valid: true}
		}
		var alignedAccuracy sql.NullFloat64
		if score.AlignedAccuracy != nil {
			alignedAccuracy = sql.NullFloat64{Float64: *score.AlignedAccuracy, Valid: true}
		}
		_, err = tx.ExecContext(
			ctx,
			"INSERT INTO udeval_evaluation_score "+
				"(evaluation_id, metric, gold_total, system_total, correct, aligned_total, "+
				"prec, recall, f1, aligned_accuracy) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			rec.ID,
			string(metric),
			score.GoldTotal,
			score.SystemTotal,
			score.Correct,
			alignedTotal,
			score.Precision,
			score.Recall,
			score.F1,
			alignedAccuracy,
		)
		if err != nil {
			rollback()
			return fmt.Errorf("failed to archive evaluation run: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to archive evaluation run: %w", err)
	}
	return nil
}

// GetRun loads a single archived run including its scores.
// In case there is no such run, ErrRunNotFound is returned.
func (a *Adapter) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := a.db.QueryRowContext(
		ctx,
		"SELECT id, treebank_id, gold_path, system_path, eval_deprels, treebank_type, created "+
			"FROM udeval_evaluation WHERE id = ? LIMIT 1",
		runID,
	)
	var rec RunRecord
	err := row.Scan(
		&rec.ID,
		&rec.TreebankID,
		&rec.GoldPath,
		&rec.SystemPath,
		&rec.Options.EvalDeprels,
		&rec.Options.TreebankType,
		&rec.Created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrRunNotFound

	} else if err != nil {
		return rec, fmt.Errorf("failed to load evaluation run: %w", err)
	}
	scores, err := a.loadScores(ctx, runID)
	if err != nil {
		return rec, err
	}
	rec.Scores = scores
	return rec, nil
}

func (a *Adapter) loadScores(ctx context.Context, runID string) (eval.Result, error) {
	rows, err := a.db.QueryContext(
		ctx,
		"SELECT metric, gold_total, system_total, correct, aligned_total, "+
			"prec, recall, f1, aligned_accuracy "+
			"FROM udeval_evaluation_score WHERE evaluation_id = ?",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation scores: %w", err)
	}
	defer rows.Close()
	ans := eval.Result{}
	for rows.Next() {
		var metric string
		var score eval.Score
		var alignedTotal sql.NullInt64
		var alignedAccuracy sql.NullFloat64
		err := rows.Scan(
			&metric,
			&score.GoldTotal,
			&score.SystemTotal,
			&score.Correct,
			&alignedTotal,
			&score.Precision,
			&score.Recall,
			&score.F1,
			&alignedAccuracy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load evaluation scores: %w", err)
		}
		if alignedTotal.Valid {
			v := int(alignedTotal.Int64)
			score.AlignedTotal = &v
		}
		if alignedAccuracy.Valid {
			v := alignedAccuracy.Float64
			score.AlignedAccuracy = &v
		}
		ans[eval.Metric(metric)] = &score
	}
	return ans, nil
}

// LoadRuns lists the newest archived runs of a treebank without their
// scores, newest first.
func (a *Adapter) LoadRuns(ctx context.Context, treebankID string, limit int) ([]RunRecord, error) {
	rows, err := a.db.QueryContext(
		ctx,
		"SELECT id, treebank_id, gold_path, system_path, eval_deprels, treebank_type, created "+
			"FROM udeval_evaluation "+
			"WHERE treebank_id = ? "+
			"ORDER BY created DESC "+
			"LIMIT ?",
		treebankID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load evaluation runs: %w", err)
	}
	defer rows.Close()
	ans := make([]RunRecord, 0, limit)
	for rows.Next() {
		var rec RunRecord
		err := rows.Scan(
			&rec.ID,
			&rec.TreebankID,
			&rec.GoldPath,
			&rec.SystemPath,
			&rec.Options.EvalDeprels,
			&rec.Options.TreebankType,
			&rec.Created,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load evaluation runs: %w", err)
		}
		ans = append(ans, rec)
	}
	return ans, nil
}

// MetricHistory loads the development of a single metric over the
// archived runs of a treebank, newest first.
func (a *Adapter) MetricHistory(
	ctx context.Context,
	treebankID string,
	metric eval.Metric,
	limit int,
) ([]MetricHistoryItem, error) {
	rows, err := a.db.QueryContext(
		ctx,
		"SELECT e.id, e.created, s.f1 "+
			"FROM udeval_evaluation AS e "+
			"JOIN udeval_evaluation_score AS s ON s.evaluation_id = e.id "+
			"WHERE e.treebank_id = ? AND s.metric = ? "+
			"ORDER BY e.created DESC "+
			"LIMIT ?",
		treebankID, string(metric), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load metric history: %w", err)
	}
	defer rows.Close()
	ans := make([]MetricHistoryItem, 0, limit)
	for rows.Next() {
		var item MetricHistoryItem
		if err := rows.Scan(&item.RunID, &item.Created, &item.F1); err != nil {
			return nil, fmt.Errorf("failed to load metric history: %w", err)
		}
		ans = append(ans, item)
	}
	return ans, nil
}
