package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dtnitsch/clipmetrics/models"
)

// CreateBatch inserts the row for a new dispatcher run.
func (db *DB) CreateBatch(batchID string, startedAt time.Time, targetCount int) error {
	_, err := db.Exec(`
		INSERT INTO batches (batch_id, started_at, target_count)
		VALUES (?, ?, ?)
	`, batchID, startedAt, targetCount)
	if err != nil {
		return fmt.Errorf("failed to create batch: %w", err)
	}
	return nil
}

// FinishBatch records the final counters of a completed run.
func (db *DB) FinishBatch(batchID string, finishedAt time.Time, resultCount, successCount int, totalCost float64) error {
	_, err := db.Exec(`
		UPDATE batches
		SET finished_at = ?, result_count = ?, success_count = ?, total_cost = ?
		WHERE batch_id = ?
	`, finishedAt, resultCount, successCount, totalCost, batchID)
	if err != nil {
		return fmt.Errorf("failed to finish batch: %w", err)
	}
	return nil
}

// BatchWriter binds snapshot and attempt writes to one batch. It is
// the persistence collaborator handed to the dispatcher: Save is
// called once per successful result, RecordAttempt once per method
// invocation.
type BatchWriter struct {
	db      *DB
	batchID string

	// DetectLanguage, when set, classifies the caption language before
	// the snapshot is stored.
	DetectLanguage func(caption string) string
}

// NewBatchWriter creates a writer for an existing batch row.
func (db *DB) NewBatchWriter(batchID string) *BatchWriter {
	return &BatchWriter{db: db, batchID: batchID}
}

// Save stores one successful extraction as a snapshot.
func (w *BatchWriter) Save(result models.Result) error {
	language := ""
	if w.DetectLanguage != nil && result.Metrics.Caption != "" {
		language = w.DetectLanguage(result.Metrics.Caption)
	}

	_, err := w.db.Exec(`
		INSERT INTO snapshots
		(batch_id, target, method, views, likes, comments, shares, bookmarks,
		 engagement_rate, caption, author, language, cost, duration_ms, captured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.batchID,
		result.Target,
		result.MethodName,
		result.Metrics.Views,
		result.Metrics.Likes,
		result.Metrics.Comments,
		result.Metrics.Shares,
		result.Metrics.Bookmarks,
		result.Metrics.EngagementRate,
		result.Metrics.Caption,
		result.Metrics.Author,
		language,
		result.Cost,
		result.Duration.Milliseconds(),
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// RecordAttempt stores one method invocation, successful or not.
func (w *BatchWriter) RecordAttempt(result models.Result) error {
	_, err := w.db.Exec(`
		INSERT INTO attempts
		(batch_id, target, method, success, error, cost, duration_ms, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		w.batchID,
		result.Target,
		result.MethodName,
		result.Success,
		result.Error,
		result.Cost,
		result.Duration.Milliseconds(),
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// MethodBreakdownRow aggregates one method's attempt history.
type MethodBreakdownRow struct {
	Method        string
	Attempts      int64
	Successes     int64
	SuccessRate   float64
	TotalCost     float64
	AvgCost       float64
	AvgDurationMs float64
}

// MethodBreakdown aggregates attempts per method. An empty batchID
// aggregates across all batches.
func (db *DB) MethodBreakdown(batchID string) ([]MethodBreakdownRow, error) {
	query := `
		SELECT method,
		       COUNT(*) AS attempts,
		       SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successes,
		       SUM(cost) AS total_cost,
		       AVG(cost) AS avg_cost,
		       AVG(duration_ms) AS avg_duration_ms
		FROM attempts
	`
	args := []interface{}{}
	if batchID != "" {
		query += " WHERE batch_id = ?"
		args = append(args, batchID)
	}
	query += " GROUP BY method ORDER BY attempts DESC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query method breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []MethodBreakdownRow
	for rows.Next() {
		var row MethodBreakdownRow
		if err := rows.Scan(&row.Method, &row.Attempts, &row.Successes, &row.TotalCost, &row.AvgCost, &row.AvgDurationMs); err != nil {
			return nil, fmt.Errorf("failed to scan method breakdown: %w", err)
		}
		if row.Attempts > 0 {
			row.SuccessRate = float64(row.Successes) / float64(row.Attempts)
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, rows.Err()
}

// BatchInfo mirrors one row of the batches table.
type BatchInfo struct {
	BatchID      string
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	TargetCount  int
	ResultCount  int
	SuccessCount int
	TotalCost    float64
}

// GetBatch fetches a single batch row.
func (db *DB) GetBatch(batchID string) (*BatchInfo, error) {
	var info BatchInfo
	err := db.QueryRow(`
		SELECT batch_id, started_at, finished_at, target_count, result_count, success_count, total_cost
		FROM batches WHERE batch_id = ?
	`, batchID).Scan(
		&info.BatchID, &info.StartedAt, &info.FinishedAt,
		&info.TargetCount, &info.ResultCount, &info.SuccessCount, &info.TotalCost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}
	return &info, nil
}

// ListBatches returns the most recent batches, newest first.
func (db *DB) ListBatches(limit int) ([]BatchInfo, error) {
	rows, err := db.Query(`
		SELECT batch_id, started_at, finished_at, target_count, result_count, success_count, total_cost
		FROM batches ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchInfo
	for rows.Next() {
		var info BatchInfo
		if err := rows.Scan(
			&info.BatchID, &info.StartedAt, &info.FinishedAt,
			&info.TargetCount, &info.ResultCount, &info.SuccessCount, &info.TotalCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, info)
	}
	return batches, rows.Err()
}

// RecentCaptions returns stored captions for keyword analysis, newest
// first. An empty batchID reads across all batches.
func (db *DB) RecentCaptions(batchID string, limit int) ([]string, error) {
	query := `SELECT caption FROM snapshots WHERE caption IS NOT NULL AND caption != ''`
	args := []interface{}{}
	if batchID != "" {
		query += " AND batch_id = ?"
		args = append(args, batchID)
	}
	query += " ORDER BY captured_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query captions: %w", err)
	}
	defer rows.Close()

	var captions []string
	for rows.Next() {
		var caption string
		if err := rows.Scan(&caption); err != nil {
			return nil, fmt.Errorf("failed to scan caption: %w", err)
		}
		captions = append(captions, caption)
	}
	return captions, rows.Err()
}

// LanguageBreakdown counts snapshots per detected caption language.
func (db *DB) LanguageBreakdown(batchID string) (map[string]int, error) {
	query := `SELECT language, COUNT(*) FROM snapshots WHERE language IS NOT NULL AND language != ''`
	args := []interface{}{}
	if batchID != "" {
		query += " AND batch_id = ?"
		args = append(args, batchID)
	}
	query += " GROUP BY language"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query language breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]int)
	for rows.Next() {
		var language string
		var count int
		if err := rows.Scan(&language, &count); err != nil {
			return nil, fmt.Errorf("failed to scan language breakdown: %w", err)
		}
		breakdown[language] = count
	}
	return breakdown, rows.Err()
}
