package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Provider hands out sessions. Each caller gets exclusive use of its session
// until Release.
type Provider interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session runs SQL and materializes the whole result.
type Session interface {
	Execute(ctx context.Context, sql string) (*ResultSet, error)
	Release()
}

// Pool is the pgxpool backed Provider.
type Pool struct {
	pool *pgxpool.Pool
}

// Open creates a connection pool for connStr and checks it with a ping.
func Open(ctx context.Context, connStr string) (*Pool, error) {
	if connStr == "" {
		return nil, errors.New("database URL not configured")
	}

	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// Acquire takes a connection from the pool.
func (p *Pool) Acquire(ctx context.Context) (Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to acquire connection: %w", err)
	}
	return &pooledSession{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the pool (should be called on application shutdown)
func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

type pooledSession struct {
	conn *pgxpool.Conn
}

func (s *pooledSession) Execute(ctx context.Context, sql string) (*ResultSet, error) {
	rows, err := s.conn.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	typeMap := s.conn.Conn().TypeMap()
	fields := rows.FieldDescriptions()

	rs := &ResultSet{
		Columns: make([]Column, len(fields)),
		typeMap: typeMap,
	}
	for i, fd := range fields {
		rs.Columns[i] = Column{
			Name:    fd.Name,
			TypeTag: TypeTag(typeMap, fd.DataTypeOID),
			OID:     fd.DataTypeOID,
			Format:  fd.Format,
		}
	}

	for rows.Next() {
		// RawValues is only valid until the next call to Next.
		raw := rows.RawValues()
		row := make([][]byte, len(raw))
		for i, b := range raw {
			if b != nil {
				row[i] = append([]byte{}, b...)
			}
		}
		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}

func (s *pooledSession) Release() {
	s.conn.Release()
}
