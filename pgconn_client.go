package pgmodel

import (
	"context"
	"io"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgproto3/v2"
	"github.com/lib/pq"
	errors "golang.org/x/xerrors"
)

// pgconnClient is the Client for a *pgconn.PgConn.
type pgconnClient struct {
	conn          *pgconn.PgConn
	notifications []*Notification
}

func (c *pgconnClient) Exec(ctx context.Context, sql string) (*Result, error) {
	results, err := c.conn.Exec(ctx, sql).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Result{}, nil
	}

	r := results[len(results)-1]
	return &Result{
		FieldDescriptions: r.FieldDescriptions,
		Rows:              r.Rows,
		CommandTag:        r.CommandTag.String(),
	}, nil
}

func (c *pgconnClient) ExecParams(ctx context.Context, sql string, paramOIDs []uint32, paramValues [][]byte, paramFormats []int16, resultFormat int16) (*Result, error) {
	rr := c.conn.ExecParams(ctx, sql, paramValues, paramOIDs, paramFormats, []int16{resultFormat})

	result := &Result{}
	for rr.NextRow() {
		row := make([][]byte, len(rr.Values()))
		copy(row, rr.Values())
		result.Rows = append(result.Rows, row)
	}

	fds := rr.FieldDescriptions()
	result.FieldDescriptions = make([]pgproto3.FieldDescription, len(fds))
	copy(result.FieldDescriptions, fds)

	tag, err := rr.Close()
	if err != nil {
		return nil, err
	}
	result.CommandTag = tag.String()

	return result, nil
}

func (c *pgconnClient) CopyFrom(ctx context.Context, sql string, r io.Reader) (int64, error) {
	tag, err := c.conn.CopyFrom(ctx, r, sql)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return 0, &CopyError{Message: pgErr.Message, err: err}
		}
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgconnClient) WaitForNotification(ctx context.Context) (*Notification, error) {
	for len(c.notifications) == 0 {
		if err := c.conn.WaitForNotification(ctx); err != nil {
			return nil, err
		}
	}

	n := c.notifications[0]
	c.notifications = c.notifications[1:]
	return n, nil
}

func (c *pgconnClient) onNotification(_ *pgconn.PgConn, n *pgconn.Notification) {
	c.notifications = append(c.notifications, &Notification{PID: n.PID, Channel: n.Channel, Payload: n.Payload})
}

func (c *pgconnClient) EscapeIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

// EscapeLiteral quotes s as a string literal. It is only safe with standard_conforming_strings on and a UTF8 client
// encoding, so any other server setting is an error.
func (c *pgconnClient) EscapeLiteral(s string) (string, error) {
	if c.conn.ParameterStatus("standard_conforming_strings") != "on" {
		return "", &EscapeError{Value: s, err: errors.New("standard_conforming_strings must be on")}
	}
	if c.conn.ParameterStatus("client_encoding") != "UTF8" {
		return "", &EscapeError{Value: s, err: errors.New("client_encoding must be UTF8")}
	}

	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

func (c *pgconnClient) ParameterStatus(key string) string {
	return c.conn.ParameterStatus(key)
}

func (c *pgconnClient) TxStatus() byte {
	return c.conn.TxStatus()
}

func (c *pgconnClient) IsClosed() bool {
	return c.conn.IsClosed()
}

func (c *pgconnClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
