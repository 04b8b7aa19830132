package testdb

import (
	"context"
	"database/sql/driver"
	"io"
	"sync"
)

// Call kinds recorded by Recorder.
const (
	KindQuery    = "query"
	KindExec     = "exec"
	KindBegin    = "begin"
	KindCommit   = "commit"
	KindRollback = "rollback"
)

// Call is one interaction with the recording driver.
type Call struct {
	Kind string
	SQL  string
	Args []any
}

// Recorder is a database/sql connector that records every call made through
// it instead of talking to a server. Queries return no rows.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	queryErr error
	execErr  error
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Connect implements driver.Connector.
func (r *Recorder) Connect(context.Context) (driver.Conn, error) {
	return &conn{rec: r}, nil
}

// Driver implements driver.Connector.
func (r *Recorder) Driver() driver.Driver {
	return recordingDriver{rec: r}
}

// FailQueries makes every following query return err.
func (r *Recorder) FailQueries(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queryErr = err
}

// FailExecs makes every following exec return err.
func (r *Recorder) FailExecs(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.execErr = err
}

// Calls returns every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns the number of recorded calls, transaction control included.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Statements returns the recorded queries and execs.
func (r *Recorder) Statements() []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Kind == KindQuery || c.Kind == KindExec {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent query or exec.
func (r *Recorder) Last() (Call, bool) {
	stmts := r.Statements()
	if len(stmts) == 0 {
		return Call{}, false
	}
	return stmts[len(stmts)-1], true
}

// Reset clears recorded calls and injected errors.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.queryErr = nil
	r.execErr = nil
}

func (r *Recorder) add(kind, query string, args []driver.NamedValue) {
	values := make([]any, len(args))
	for i, nv := range args {
		values[i] = nv.Value
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Kind: kind, SQL: query, Args: values})
}

func (r *Recorder) errors() (query, exec error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queryErr, r.execErr
}

type recordingDriver struct {
	rec *Recorder
}

func (d recordingDriver) Open(string) (driver.Conn, error) {
	return &conn{rec: d.rec}, nil
}

type conn struct {
	rec *Recorder
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{rec: c.rec, query: query}, nil
}

func (*conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	c.rec.add(KindBegin, "BEGIN", nil)
	return &tx{rec: c.rec}, nil
}

func (c *conn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.rec.add(KindQuery, query, args)
	if err, _ := c.rec.errors(); err != nil {
		return nil, err
	}
	return &rows{}, nil
}

func (c *conn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.rec.add(KindExec, query, args)
	if _, err := c.rec.errors(); err != nil {
		return nil, err
	}
	return result{}, nil
}

type stmt struct {
	rec   *Recorder
	query string
}

func (*stmt) Close() error  { return nil }
func (*stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	s.rec.add(KindExec, s.query, named(args))
	return result{}, nil
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	s.rec.add(KindQuery, s.query, named(args))
	return &rows{}, nil
}

type tx struct {
	rec *Recorder
}

func (t *tx) Commit() error {
	t.rec.add(KindCommit, "COMMIT", nil)
	return nil
}

func (t *tx) Rollback() error {
	t.rec.add(KindRollback, "ROLLBACK", nil)
	return nil
}

type result struct{}

func (result) LastInsertId() (int64, error) { return 1, nil }
func (result) RowsAffected() (int64, error) { return 1, nil }

type rows struct{}

func (*rows) Columns() []string         { return []string{} }
func (*rows) Close() error              { return nil }
func (*rows) Next([]driver.Value) error { return io.EOF }

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}
