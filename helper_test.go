package pgmodel_test

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/pgtype"
	"github.com/jackc/pgproto3/v2"
	"github.com/stretchr/testify/require"
)

type statement struct {
	sql     string
	oids    []uint32
	values  [][]byte
	formats []int16
}

// spyClient records every statement and answers with queued results.
type spyClient struct {
	mux        sync.Mutex
	statements []statement
	results    []*pgmodel.Result
	err        error

	copySQL  string
	copyData []byte
	copyRows int64
	copyErr  error

	parameters    map[string]string
	txStatus      byte
	notifications chan *pgmodel.Notification
	closed        bool
}

func newSpyClient(results ...*pgmodel.Result) *spyClient {
	return &spyClient{
		results:       results,
		parameters:    map[string]string{"server_version": "13.4 (Debian 13.4-1.pgdg100+1)"},
		txStatus:      'I',
		notifications: make(chan *pgmodel.Notification, 1),
	}
}

func (c *spyClient) next() (*pgmodel.Result, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(c.results) == 0 {
		return &pgmodel.Result{}, nil
	}
	r := c.results[0]
	c.results = c.results[1:]
	return r, nil
}

func (c *spyClient) Exec(ctx context.Context, sql string) (*pgmodel.Result, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.statements = append(c.statements, statement{sql: sql})
	return c.next()
}

func (c *spyClient) ExecParams(ctx context.Context, sql string, paramOIDs []uint32, paramValues [][]byte, paramFormats []int16, resultFormat int16) (*pgmodel.Result, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.statements = append(c.statements, statement{sql: sql, oids: paramOIDs, values: paramValues, formats: paramFormats})
	return c.next()
}

func (c *spyClient) CopyFrom(ctx context.Context, sql string, r io.Reader) (int64, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return 0, err
	}

	c.mux.Lock()
	defer c.mux.Unlock()
	c.copySQL = sql
	c.copyData = data
	return c.copyRows, c.copyErr
}

func (c *spyClient) WaitForNotification(ctx context.Context) (*pgmodel.Notification, error) {
	select {
	case n := <-c.notifications:
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *spyClient) EscapeIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (c *spyClient) EscapeLiteral(s string) (string, error) {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

func (c *spyClient) ParameterStatus(key string) string {
	return c.parameters[key]
}

func (c *spyClient) TxStatus() byte {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.txStatus
}

func (c *spyClient) IsClosed() bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.closed
}

func (c *spyClient) Close(ctx context.Context) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.closed = true
	return nil
}

func (c *spyClient) sqls() []string {
	c.mux.Lock()
	defer c.mux.Unlock()
	sqls := make([]string, len(c.statements))
	for i, s := range c.statements {
		sqls[i] = s.sql
	}
	return sqls
}

// newResult builds a result with one column per name. Column types and formats are those of the values of the first
// row, encoded in their preferred format.
func newResult(t testing.TB, names []string, rows ...[]pgtype.Value) *pgmodel.Result {
	t.Helper()

	result := &pgmodel.Result{FieldDescriptions: make([]pgproto3.FieldDescription, len(names))}
	for i, name := range names {
		result.FieldDescriptions[i].Name = []byte(name)
	}

	for r, row := range rows {
		require.Len(t, row, len(names))
		values := make([][]byte, len(row))
		for i, v := range row {
			o, buf, format, err := pgtype.Encode(v)
			require.NoError(t, err)
			if r == 0 {
				result.FieldDescriptions[i].DataTypeOID = uint32(o)
				result.FieldDescriptions[i].Format = int16(format)
			}
			values[i] = buf
		}
		result.Rows = append(result.Rows, values)
	}

	return result
}

type event struct {
	UUID      pgtype.UUID                       `db:"uuid,pk"`
	Name      pgtype.Text                       `db:"name"`
	VisitorID pgtype.Option[pgtype.Int4]        `db:"visitor_id"`
	CreatedAt pgtype.Option[pgtype.Timestamptz] `db:"created_at,readonly"`
}

var eventModel = pgmodel.MustNewModel[event]("events")

var eventColumns = []string{"uuid", "name", "visitor_id", "created_at"}

const eventProjection = `"uuid" as "uuid", "name" as "name", "visitor_id" as "visitor_id", "created_at" as "created_at"`

func testUUID(s string) pgtype.UUID {
	return pgtype.UUID(uuid.Must(uuid.FromString(s)))
}

var pageviewUUID = testUUID("f2a3ad9e-3a36-4f1f-9b5a-1b8b7a4c9a01")

func eventRow(e event) []pgtype.Value {
	return []pgtype.Value{e.UUID, e.Name, e.VisitorID, e.CreatedAt}
}

func newTestConn(t testing.TB, client pgmodel.Client) *pgmodel.Conn {
	conn := pgmodel.NewConn(client, nil)
	t.Cleanup(func() { conn.Close(context.Background()) })
	return conn
}
