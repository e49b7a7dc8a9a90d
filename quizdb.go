package acestudy

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the SQLite attempt store
type DB struct {
	db *sql.DB
}

// OpenDB opens a new database connection
func OpenDB(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a shared in-memory database disappears with its last connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			context TEXT NOT NULL,
			sources TEXT NOT NULL,
			recommendations TEXT NOT NULL,
			answers TEXT NOT NULL,
			current_index INTEGER NOT NULL DEFAULT 0,
			time_limit INTEGER NOT NULL DEFAULT 0,
			seconds_remaining INTEGER NOT NULL DEFAULT 0,
			finished INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			attempt_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer INTEGER NOT NULL,
			explanation TEXT,
			PRIMARY KEY (attempt_id, question_num),
			FOREIGN KEY (attempt_id) REFERENCES attempts(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// Create stores a new attempt and its questions
func (db *DB) Create(ctx context.Context, a *Attempt) error {
	contextJSON, err := json.Marshal(a.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal study context: %w", err)
	}
	sourcesJSON, err := json.Marshal(nonNil(a.State.Sources))
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}
	recsJSON, err := json.Marshal(nonNil(a.State.Recommendations))
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}
	answersJSON, err := json.Marshal(nonNil(a.State.UserAnswers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, context, sources, recommendations, answers, current_index, time_limit, seconds_remaining, finished, score, started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, string(contextJSON), string(sourcesJSON), string(recsJSON), string(answersJSON),
		a.State.CurrentIndex, a.State.TimeLimit, a.State.SecondsRemaining, a.State.Finished, a.State.Score,
		a.StartedAt, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	for i, q := range a.State.Questions {
		optionsJSON, err := OptionsToJSON(q.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO questions (attempt_id, question_num, text, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?)",
			a.ID, i+1, q.Text, optionsJSON, q.CorrectIndex, q.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attempt: %w", err)
	}
	return nil
}

// Get retrieves an attempt by ID
func (db *DB) Get(ctx context.Context, id string) (*Attempt, error) {
	var a Attempt
	var contextJSON, sourcesJSON, recsJSON, answers string
	err := db.db.QueryRowContext(ctx,
		`SELECT id, context, sources, recommendations, answers, current_index, time_limit, seconds_remaining, finished, score, started_at, created_at
		FROM attempts WHERE id = ?`,
		id,
	).Scan(&a.ID, &contextJSON, &sourcesJSON, &recsJSON, &answers,
		&a.State.CurrentIndex, &a.State.TimeLimit, &a.State.SecondsRemaining, &a.State.Finished, &a.State.Score,
		&a.StartedAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if err := json.Unmarshal([]byte(contextJSON), &a.Context); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study context: %w", err)
	}
	if err := json.Unmarshal([]byte(sourcesJSON), &a.State.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}
	if err := json.Unmarshal([]byte(recsJSON), &a.State.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &a.State.UserAnswers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}

	questions, err := db.getQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	a.State.Questions = questions

	return &a, nil
}

func (db *DB) getQuestions(ctx context.Context, attemptID string) ([]Question, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT text, options, correct_answer, explanation FROM questions WHERE attempt_id = ? ORDER BY question_num",
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	questions := []Question{}
	for rows.Next() {
		var (
			q           Question
			optionsJSON string
			explanation sql.NullString
		)
		if err := rows.Scan(&q.Text, &optionsJSON, &q.CorrectIndex, &explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if q.Options, err = JSONToOptions(optionsJSON); err != nil {
			return nil, err
		}
		q.Explanation = explanation.String
		questions = append(questions, q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// Save writes back the mutable playback state of an attempt
func (db *DB) Save(ctx context.Context, a *Attempt) error {
	answersJSON, err := json.Marshal(nonNil(a.State.UserAnswers))
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	res, err := db.db.ExecContext(ctx,
		"UPDATE attempts SET answers = ?, current_index = ?, seconds_remaining = ?, finished = ?, score = ? WHERE id = ?",
		string(answersJSON), a.State.CurrentIndex, a.State.SecondsRemaining, a.State.Finished, a.State.Score, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrAttemptNotFound, a.ID)
	}
	return nil
}

// Delete removes an attempt and its questions. Unknown ids are not an error.
func (db *DB) Delete(ctx context.Context, id string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE attempt_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM attempts WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	return tx.Commit()
}

// PurgeExpired deletes attempts created before cutoff and reports how many
// were removed
func (db *DB) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM questions WHERE attempt_id IN (SELECT id FROM attempts WHERE created_at < ?)", cutoff,
	); err != nil {
		return 0, fmt.Errorf("failed to purge questions: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM attempts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge attempts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

// OptionsToJSON converts an options slice to a JSON string
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(nonNil(options))
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions converts a JSON string to an options slice
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
