package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ridoystarlord/querycanvas/database"
	"github.com/ridoystarlord/querycanvas/introspect"
	"github.com/ridoystarlord/querycanvas/logging"
	"github.com/ridoystarlord/querycanvas/results"
	"github.com/ridoystarlord/querycanvas/schema"
)

var (
	// ErrSession means no database session could be acquired.
	ErrSession = errors.New("session error")
	// ErrQuery means a user or introspection query failed at the engine.
	ErrQuery = errors.New("query error")
	// ErrSerialization means the response could not be encoded.
	ErrSerialization = errors.New("serialization error")
)

// Service implements the schema and result pipelines. It holds no per-call
// state and is safe for concurrent use.
type Service struct {
	provider database.Provider
	schema   string
	log      *zap.SugaredLogger
}

// New creates a Service reading the given database schema (e.g. "public").
func New(provider database.Provider, dbSchema string, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{provider: provider, schema: dbSchema, log: log}
}

// Schema introspects the working schema and builds its reference graph.
func (s *Service) Schema(ctx context.Context) (schema.Graph, error) {
	sess, err := s.acquire(ctx)
	if err != nil {
		return schema.Graph{}, err
	}
	defer sess.Release()

	columns, err := introspect.Columns(ctx, sess, s.schema)
	if err != nil {
		s.log.Errorw("column introspection failed", "schema", s.schema, "error", err)
		return schema.Graph{}, fmt.Errorf("%w: could not get columns", ErrQuery)
	}

	foreignKeys, err := introspect.ForeignKeys(ctx, sess, s.schema)
	if err != nil {
		s.log.Errorw("foreign key introspection failed", "schema", s.schema, "error", err)
		return schema.Graph{}, fmt.Errorf("%w: could not get foreign key info", ErrQuery)
	}

	g := schema.Build(columns, foreignKeys)
	s.log.Debugw("schema built", "tables", len(g.Tables), "references", len(g.References))
	return g, nil
}

// GetSchema returns the schema graph as
// {"tables": {...}, "references": {...}}.
func (s *Service) GetSchema(ctx context.Context) (string, error) {
	g, err := s.Schema(ctx)
	if err != nil {
		return "", err
	}

	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("%w: JSON serialization failed", ErrSerialization)
	}
	return string(b), nil
}

// Results runs query verbatim and encodes every cell.
func (s *Service) Results(ctx context.Context, query string) ([]results.Row, error) {
	sess, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	start := time.Now()
	rs, err := sess.Execute(ctx, query)
	if err != nil {
		s.log.Infow("query failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	rows := results.Encode(rs)
	s.log.Debugw("query executed",
		"columns", len(rs.Columns),
		"rows", len(rows),
		"duration", time.Since(start))
	return rows, nil
}

// GetResults runs query and returns its rows as
// [[["col", value], ...], ...].
func (s *Service) GetResults(ctx context.Context, query string) (string, error) {
	rows, err := s.Results(ctx, query)
	if err != nil {
		return "", err
	}

	out, err := results.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return out, nil
}

func (s *Service) acquire(ctx context.Context) (database.Session, error) {
	sess, err := s.provider.Acquire(ctx)
	if err != nil {
		s.log.Errorw("could not acquire session", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSession, err)
	}
	return sess, nil
}
