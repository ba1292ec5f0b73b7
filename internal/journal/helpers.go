package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const runColumns = `id, source, status, total, found, not_found, restarts, passes, error_message, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		errMessage sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.Source, &status, &run.Total, &run.Found, &run.NotFound,
		&run.Restarts, &run.Passes, &errMessage, &startedAt, &finishedAt,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.ErrorMessage = errMessage.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return &run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func stripWildcards(value string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(value)
}
