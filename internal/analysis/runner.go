// Package analysis executes the fixed set of analytical SQL questions
// against the rebuilt store.
package analysis

import (
	"context"
	"database/sql"
	"fmt"
)

// QueryError reports a failed question. Questions run in sequence and
// are not fault-isolated: the first failure aborts the rest.
type QueryError struct {
	Number int
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to execute query %d: %v", e.Number, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Result is one question's tabular output.
type Result struct {
	Question Question
	Columns  []string
	Rows     [][]any
}

// Runner executes questions against an open database handle.
type Runner struct {
	db *sql.DB
}

// NewRunner creates a query runner.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// Run executes all ten questions in order. On failure the remaining
// questions are skipped and a *QueryError is returned alongside the
// results collected so far.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var results []Result
	for _, q := range Questions() {
		res, err := r.RunQuestion(ctx, q)
		if err != nil {
			return results, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// RunQuestion executes a single question and collects its rows.
func (r *Runner) RunQuestion(ctx context.Context, q Question) (*Result, error) {
	rows, err := r.db.QueryContext(ctx, q.SQL)
	if err != nil {
		return nil, &QueryError{Number: q.Number, Err: err}
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{Number: q.Number, Err: err}
	}

	result := &Result{Question: q, Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &QueryError{Number: q.Number, Err: err}
		}
		for i, v := range values {
			// Text columns come back as []byte from some drivers.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Number: q.Number, Err: err}
	}

	return result, nil
}
