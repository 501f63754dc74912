/*
Package mock provides an in-memory database.Provider for tests.

Responses are matched on the exact SQL text, or on a substring when no exact
match exists, so introspection queries can be answered without repeating
them verbatim:

	p := mock.New()
	p.OnQuery("information_schema.columns").Return(
		mock.TextResult([]string{"table_name", "column_name"}, []string{"users", "id"}),
	)
	p.OnQuery("SELECT broken").ReturnError(errors.New(`relation "x" does not exist`))

Every Execute is recorded in Calls, and Acquired/Released count session
lifecycle events.
*/
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridoystarlord/querycanvas/database"
)

// Provider is a database.Provider backed by canned responses.
type Provider struct {
	mu        sync.Mutex
	responses []*Response
	// AcquireErr, when set, fails every Acquire.
	AcquireErr error

	Calls    []string
	Acquired int
	Released int
}

// Response is one configured outcome.
type Response struct {
	match  string
	result *database.ResultSet
	err    error
}

// New creates an empty Provider. Unmatched SQL returns an error.
func New() *Provider {
	return &Provider{}
}

// OnQuery registers a response for SQL equal to, or containing, match.
func (p *Provider) OnQuery(match string) *Response {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := &Response{match: match}
	p.responses = append(p.responses, r)
	return r
}

// Return sets the result set to hand back.
func (r *Response) Return(rs *database.ResultSet) *Response {
	r.result = rs
	return r
}

// ReturnError makes the query fail with err.
func (r *Response) ReturnError(err error) *Response {
	r.err = err
	return r
}

func (p *Provider) Acquire(ctx context.Context) (database.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.AcquireErr != nil {
		return nil, p.AcquireErr
	}
	p.Acquired++
	return &session{p: p}, nil
}

func (p *Provider) lookup(sql string) (*database.ResultSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, sql)

	for _, r := range p.responses {
		if r.match == sql {
			return r.resultSet()
		}
	}
	for _, r := range p.responses {
		if strings.Contains(sql, r.match) {
			return r.resultSet()
		}
	}
	return nil, fmt.Errorf("mock: no response configured for %q", sql)
}

// resultSet hands out a copy with its own type map; pgtype.Map caches scan
// plans and must not be shared between goroutines.
func (r *Response) resultSet() (*database.ResultSet, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.result == nil {
		return database.NewResultSet(nil, nil, nil), nil
	}
	return database.NewResultSet(pgtype.NewMap(), r.result.Columns, r.result.Rows), nil
}

type session struct {
	p        *Provider
	released bool
}

func (s *session) Execute(ctx context.Context, sql string) (*database.ResultSet, error) {
	if s.released {
		return nil, fmt.Errorf("mock: session used after release")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.p.lookup(sql)
}

func (s *session) Release() {
	if s.released {
		return
	}
	s.released = true

	s.p.mu.Lock()
	s.p.Released++
	s.p.mu.Unlock()
}

// TextResult builds a result set of text columns. A row value of nil is not
// expressible here; use Result for NULLs.
func TextResult(names []string, rows ...[]string) *database.ResultSet {
	cols := make([]database.Column, len(names))
	for i, n := range names {
		cols[i] = database.Column{Name: n, TypeTag: "TEXT", OID: pgtype.TextOID, Format: pgtype.TextFormatCode}
	}

	raw := make([][][]byte, len(rows))
	for i, row := range rows {
		raw[i] = make([][]byte, len(row))
		for j, v := range row {
			raw[i][j] = []byte(v)
		}
	}
	return database.NewResultSet(nil, cols, raw)
}

// Column describes a text-format result column by name and engine type tag.
type Column struct {
	Name string
	Tag  string
	OID  uint32
}

// Result builds a text-format result set. Each cell is given in PostgreSQL
// text output form; a nil pointer is SQL NULL.
func Result(columns []Column, rows ...[]*string) *database.ResultSet {
	cols := make([]database.Column, len(columns))
	for i, c := range columns {
		cols[i] = database.Column{Name: c.Name, TypeTag: c.Tag, OID: c.OID, Format: pgtype.TextFormatCode}
	}

	raw := make([][][]byte, len(rows))
	for i, row := range rows {
		raw[i] = make([][]byte, len(row))
		for j, v := range row {
			if v != nil {
				raw[i][j] = []byte(*v)
			}
		}
	}
	return database.NewResultSet(nil, cols, raw)
}

// S returns a pointer to s, for building Result rows.
func S(s string) *string { return &s }
