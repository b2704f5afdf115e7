package log

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotOpen is returned by Recent before Open.
var ErrNotOpen = errors.New("audit log not open")

// Record is a stored entry as read back by Recent.
type Record struct {
	ID       int64          `json:"id"`
	Start    time.Time      `json:"start"`
	Duration time.Duration  `json:"duration_ns"`
	Source   string         `json:"source"`
	Action   string         `json:"action"`
	RunID    string         `json:"run_id,omitempty"`
	Target   string         `json:"target,omitempty"`
	Command  string         `json:"command,omitempty"`
	Manager  string         `json:"manager,omitempty"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// Filter narrows Recent.
type Filter struct {
	Project string        // project id from ProjectID; empty for all projects
	Action  string        // exact action; empty for all
	Since   time.Duration // only entries newer than this; zero for all
	Failed  bool          // only failures
	Limit   int           // maximum records; zero for 50
}

// Recent returns matching entries, newest first.
func Recent(f Filter) ([]Record, error) {
	mu.Lock()
	l := global
	mu.Unlock()
	if l == nil {
		return nil, ErrNotOpen
	}
	return l.recent(f)
}

func (l *Logger) recent(f Filter) ([]Record, error) {
	var where []string
	var args []any
	if f.Project != "" {
		where = append(where, "project = ?")
		args = append(args, f.Project)
	}
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.Since > 0 {
		where = append(where, "start >= ?")
		args = append(args, time.Now().Add(-f.Since).UnixMilli())
	}
	if f.Failed {
		where = append(where, "success = 0")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT id, start, end, source, action, run_id, target, command, manager, success, error, detail FROM log`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY start DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                                     Record
			start, end                            int64
			runID, target, command, manager, errS sql.NullString
			detail                                sql.NullString
			success                               int
		)
		if err := rows.Scan(&r.ID, &start, &end, &r.Source, &r.Action, &runID, &target,
			&command, &manager, &success, &errS, &detail); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		r.Start = time.UnixMilli(start)
		r.Duration = time.Duration(end-start) * time.Millisecond
		r.RunID, r.Target, r.Command, r.Manager, r.Error = runID.String, target.String, command.String, manager.String, errS.String
		r.Success = success == 1
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &r.Detail)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
