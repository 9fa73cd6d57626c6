package pgmodel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgmodel"
	"github.com/jackc/pgmodel/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	A pgtype.Option[pgtype.Text] `db:"a"`
	B pgtype.Text                `db:"b"`
}

var pairModel = pgmodel.MustNewModel[pair]("pairs")

func TestEncodeCopy(t *testing.T) {
	buf, err := pgmodel.EncodeCopy(pairModel, []pair{{B: "a"}})
	require.NoError(t, err)
	assert.Equal(t, "\\N\ta\n", string(buf))

	buf, err = pgmodel.EncodeCopy(pairModel, []pair{
		{A: pgtype.Some(pgtype.Text("x")), B: "y"},
		{A: pgtype.Some(pgtype.Text("")), B: ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "x\ty\n\t\n", string(buf))

	buf, err = pgmodel.EncodeCopy(pairModel, nil)
	require.NoError(t, err)
	assert.Empty(t, buf)
}

type copyNote struct {
	title string
	body  pgtype.Option[pgtype.Text]
}

func (n copyNote) Get(field string) (pgtype.Value, bool) {
	switch field {
	case "title":
		return pgtype.Text(n.title), true
	case "body":
		return n.body, true
	}
	return nil, false
}

func TestEncodeCopyEntityNull(t *testing.T) {
	m, err := pgmodel.NewModel[copyNote]("notes", "title")
	require.NoError(t, err)
	m = m.WithColumns("title", "body")

	buf, err := pgmodel.EncodeCopy(m, []copyNote{
		{title: "first", body: pgtype.Some(pgtype.Text("x"))},
		{title: "second"},
		{title: "", body: pgtype.Some(pgtype.Text(""))},
	})
	require.NoError(t, err)
	assert.Equal(t, "first\tx\nsecond\t\\N\n\t\n", string(buf))
}

func TestEncodeCopyTypedValues(t *testing.T) {
	buf, err := pgmodel.EncodeCopy(eventModel, []event{pageview})
	require.NoError(t, err)
	assert.Equal(t, "f2a3ad9e-3a36-4f1f-9b5a-1b8b7a4c9a01\tpageview\t3\n", string(buf))
}

func TestCopy(t *testing.T) {
	client := newSpyClient()
	client.copyRows = 2
	conn := newTestConn(t, client)

	n, err := pgmodel.Copy(context.Background(), conn, pairModel, []pair{{B: "a"}, {A: pgtype.Some(pgtype.Text("b")), B: "c"}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.Equal(t, `COPY pairs ("a", "b") FROM STDIN`, client.copySQL)
	assert.Equal(t, "\\N\ta\nb\tc\n", string(client.copyData))
}

func TestCopyError(t *testing.T) {
	client := newSpyClient()
	client.copyErr = errors.New(`null value in column "b" violates not-null constraint`)
	conn := newTestConn(t, client)

	_, err := pgmodel.Copy(context.Background(), conn, pairModel, []pair{{B: "a"}})
	var copyErr *pgmodel.CopyError
	require.True(t, errors.As(err, &copyErr))
	assert.Equal(t, `null value in column "b" violates not-null constraint`, copyErr.Message)
	assert.True(t, errors.Is(err, client.copyErr))
}
