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

var pageview = event{
	UUID:      pageviewUUID,
	Name:      "pageview",
	VisitorID: pgtype.Some(pgtype.Int4(3)),
}

func TestFindAll(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns, eventRow(pageview)))
	conn := newTestConn(t, client)

	events, err := pgmodel.FindAll(context.Background(), conn, eventModel, "ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []event{pageview}, events)

	assert.Equal(t, []string{"SELECT " + eventProjection + " FROM events ORDER BY name;"}, client.sqls())
}

func TestFindWhere(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns))
	conn := newTestConn(t, client)

	events, err := pgmodel.FindWhere(context.Background(), conn, eventModel,
		"name = $* and visitor_id = $*", []pgtype.Value{pgtype.Text("pageview"), pgtype.Int4(3)}, "")
	require.NoError(t, err)
	assert.Empty(t, events)

	require.Len(t, client.statements, 1)
	s := client.statements[0]
	assert.Equal(t, "SELECT "+eventProjection+" FROM events WHERE name = $1 and visitor_id = $2;", s.sql)
	assert.Equal(t, []uint32{25, 23}, s.oids)
	assert.Equal(t, [][]byte{[]byte("pageview"), {0, 0, 0, 3}}, s.values)
	assert.Equal(t, []int16{0, 1}, s.formats)
}

func TestFindWhereEmptyClause(t *testing.T) {
	client := newSpyClient()
	conn := newTestConn(t, client)

	_, err := pgmodel.FindWhere(context.Background(), conn, eventModel, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT " + eventProjection + " FROM events WHERE true;"}, client.sqls())
}

func TestFindByPK(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns, eventRow(pageview)), newResult(t, eventColumns))
	conn := newTestConn(t, client)
	pk := pgmodel.PrimaryKey{"uuid": pageviewUUID}

	e, ok, err := pgmodel.FindByPK(context.Background(), conn, eventModel, pk)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pageview, e)

	_, ok, err = pgmodel.FindByPK(context.Background(), conn, eventModel, pk)
	require.NoError(t, err)
	assert.False(t, ok)

	want := "SELECT " + eventProjection + ` FROM events WHERE "uuid" = $1;`
	assert.Equal(t, []string{want, want}, client.sqls())
}

func TestPrimaryKeyMismatch(t *testing.T) {
	client := newSpyClient()
	conn := newTestConn(t, client)

	for _, pk := range []pgmodel.PrimaryKey{
		{"id": pgtype.Int4(1)},
		{"uuid": pageviewUUID, "name": pgtype.Text("pageview")},
		{},
	} {
		_, _, err := pgmodel.FindByPK(context.Background(), conn, eventModel, pk)
		var mismatch *pgmodel.PrimaryKeyMismatchError
		require.True(t, errors.As(err, &mismatch), "%v", pk)
		assert.Equal(t, []string{"uuid"}, mismatch.Declared)

		_, _, err = pgmodel.DeleteByPK(context.Background(), conn, eventModel, pk)
		assert.True(t, errors.As(err, &mismatch))

		_, _, err = pgmodel.UpdateByPK(context.Background(), conn, eventModel, pk, map[string]pgtype.Value{"name": pgtype.Text("x")})
		assert.True(t, errors.As(err, &mismatch))
	}

	assert.Empty(t, client.sqls())
}

func TestCompositePrimaryKeyClauseIsInDeclaredOrder(t *testing.T) {
	type membership struct {
		GroupID pgtype.Int4 `db:"group_id"`
		UserID  pgtype.Int4 `db:"user_id"`
		Role    pgtype.Text `db:"role"`
	}
	model := pgmodel.MustNewModel[membership]("memberships", "user_id", "group_id")

	client := newSpyClient()
	conn := newTestConn(t, client)

	_, _, err := pgmodel.FindByPK(context.Background(), conn, model, pgmodel.PrimaryKey{"group_id": pgtype.Int4(7), "user_id": pgtype.Int4(9)})
	require.NoError(t, err)

	require.Len(t, client.statements, 1)
	s := client.statements[0]
	assert.Equal(t, `SELECT "group_id" as "group_id", "user_id" as "user_id", "role" as "role" FROM memberships WHERE "user_id" = $1 AND "group_id" = $2;`, s.sql)
	assert.Equal(t, [][]byte{{0, 0, 0, 9}, {0, 0, 0, 7}}, s.values)
}

func TestCountWhere(t *testing.T) {
	client := newSpyClient(newResult(t, []string{"count"}, []pgtype.Value{pgtype.Int8(42)}))
	conn := newTestConn(t, client)

	n, err := pgmodel.CountWhere(context.Background(), conn, eventModel, "visitor_id = $*", []pgtype.Value{pgtype.Int4(3)})
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
	assert.Equal(t, []string{"SELECT COUNT(*) FROM events WHERE visitor_id = $1;"}, client.sqls())
}

func TestExistWhere(t *testing.T) {
	client := newSpyClient(newResult(t, []string{"result"}, []pgtype.Value{pgtype.Bool(true)}))
	conn := newTestConn(t, client)

	exists, err := pgmodel.ExistWhere(context.Background(), conn, eventModel, "name = $*", []pgtype.Value{pgtype.Text("pageview")})
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"SELECT EXISTS (SELECT true FROM events WHERE name = $1) AS result;"}, client.sqls())
}

func TestInsertOneListsProvidedFields(t *testing.T) {
	stored := pageview
	stored.VisitorID = pgtype.None[pgtype.Int4]()

	client := newSpyClient(newResult(t, eventColumns, eventRow(stored)))
	conn := newTestConn(t, client)

	e, err := pgmodel.InsertOne(context.Background(), conn, eventModel, stored)
	require.NoError(t, err)
	assert.Equal(t, stored, e)

	require.Len(t, client.statements, 1)
	s := client.statements[0]
	assert.Equal(t, `INSERT INTO events ("uuid", "name") VALUES($1, $2) RETURNING `+eventProjection+";", s.sql)
	assert.Len(t, s.values, 2)
}

func TestInsertOneWithoutFields(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns, eventRow(pageview)))
	conn := newTestConn(t, client)

	_, err := pgmodel.InsertOne(context.Background(), conn, eventModel.WithColumns("visitor_id"), event{})
	require.NoError(t, err)
	assert.Equal(t, []string{"INSERT INTO events DEFAULT VALUES RETURNING " + eventProjection + ";"}, client.sqls())
}

func TestInsertOneWithoutReturnedRow(t *testing.T) {
	conn := newTestConn(t, newSpyClient())

	_, err := pgmodel.InsertOne(context.Background(), conn, eventModel, pageview)
	require.Error(t, err)
}

func TestUpsertOne(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns))
	conn := newTestConn(t, client)

	_, ok, err := pgmodel.UpsertOne(context.Background(), conn, eventModel, pageview, "(uuid)", "nothing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{
		`INSERT INTO events ("uuid", "name", "visitor_id") VALUES($1, $2, $3) on conflict (uuid) do nothing RETURNING ` + eventProjection + ";",
	}, client.sqls())
}

func TestUpsertOneRequiresOnConflictSupport(t *testing.T) {
	client := newSpyClient()
	client.parameters["server_version"] = "9.4.26"
	conn := newTestConn(t, client)

	_, _, err := pgmodel.UpsertOne(context.Background(), conn, eventModel, pageview, "(uuid)", "nothing")
	require.Error(t, err)
	assert.Empty(t, client.sqls())
}

func TestUpdateByPK(t *testing.T) {
	renamed := pageview
	renamed.Name = "click"

	client := newSpyClient(newResult(t, eventColumns, eventRow(renamed)))
	conn := newTestConn(t, client)

	e, ok, err := pgmodel.UpdateByPK(context.Background(), conn, eventModel,
		pgmodel.PrimaryKey{"uuid": pageviewUUID},
		map[string]pgtype.Value{"name": pgtype.Text("click"), "unknown": pgtype.Int4(1)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, renamed, e)

	require.Len(t, client.statements, 1)
	s := client.statements[0]
	assert.Equal(t, `UPDATE events SET "name" = $2 WHERE "uuid" = $1 RETURNING `+eventProjection+";", s.sql)
	require.Len(t, s.values, 2)
	assert.Equal(t, []byte("click"), s.values[1])
}

func TestUpdateByPKWithoutProjectionFieldsIsNoop(t *testing.T) {
	var warnings []string
	client := newSpyClient()
	conn := pgmodel.NewConn(client, &pgmodel.Config{
		LogLevel: pgmodel.LogLevelWarn,
		Logger: pgmodel.LoggerFunc(func(ctx context.Context, level pgmodel.LogLevel, msg string, data map[string]interface{}) {
			if level == pgmodel.LogLevelWarn {
				warnings = append(warnings, msg)
			}
		}),
	})

	_, ok, err := pgmodel.UpdateByPK(context.Background(), conn, eventModel,
		pgmodel.PrimaryKey{"uuid": pageviewUUID},
		map[string]pgtype.Value{"unknown": pgtype.Int4(1)})
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Empty(t, client.sqls())
	assert.Len(t, warnings, 1)
}

func TestUpdateOneSetsAbsentFieldsToNull(t *testing.T) {
	stored := pageview
	stored.VisitorID = pgtype.None[pgtype.Int4]()

	client := newSpyClient(newResult(t, eventColumns, eventRow(stored)))
	conn := newTestConn(t, client)

	_, ok, err := pgmodel.UpdateOne(context.Background(), conn, eventModel, pgmodel.PrimaryKey{"uuid": pageviewUUID}, stored)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, client.statements, 1)
	s := client.statements[0]
	assert.Equal(t, `UPDATE events SET "uuid" = $2, "name" = $3, "visitor_id" = $4 WHERE "uuid" = $1 RETURNING `+eventProjection+";", s.sql)
	require.Len(t, s.values, 4)
	assert.Nil(t, s.values[3])
}

func TestDeleteOne(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns, eventRow(pageview)))
	conn := newTestConn(t, client)

	e, ok, err := pgmodel.DeleteOne(context.Background(), conn, eventModel, pageview)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pageview, e)
	assert.Equal(t, []string{`DELETE FROM events WHERE "uuid" = $1 RETURNING ` + eventProjection + ";"}, client.sqls())
}

func TestDeleteWhere(t *testing.T) {
	client := newSpyClient(newResult(t, eventColumns, eventRow(pageview), eventRow(pageview)))
	conn := newTestConn(t, client)

	events, err := pgmodel.DeleteWhere(context.Background(), conn, eventModel, "name = $*", []pgtype.Value{pgtype.Text("pageview")})
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, []string{"DELETE FROM events WHERE name = $1 RETURNING " + eventProjection + ";"}, client.sqls())
}

func TestPaginateFindWhere(t *testing.T) {
	client := newSpyClient(
		newResult(t, eventColumns, eventRow(pageview)),
		newResult(t, []string{"count"}, []pgtype.Value{pgtype.Int8(21)}),
	)
	conn := newTestConn(t, client)

	pager, err := pgmodel.PaginateFindWhere(context.Background(), conn, eventModel, "name = $*", []pgtype.Value{pgtype.Text("pageview")}, 10, 3, "order by name")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT " + eventProjection + " FROM events WHERE name = $1 order by name offset 20 fetch first 10 rows only;",
		"SELECT COUNT(*) FROM events WHERE name = $1;",
	}, client.sqls())

	assert.Equal(t, []event{pageview}, pager.Items)
	assert.EqualValues(t, 21, pager.Count)
	assert.Equal(t, 3, pager.Page)
	assert.Equal(t, 3, pager.LastPage())
	assert.True(t, pager.IsLast())
	assert.EqualValues(t, 21, pager.ResultMin())
	assert.EqualValues(t, 21, pager.ResultMax())
}

func TestPaginateFindWhereRejectsPageZero(t *testing.T) {
	client := newSpyClient()
	conn := newTestConn(t, client)

	_, err := pgmodel.PaginateFindWhere(context.Background(), conn, eventModel, "", nil, 10, 0, "")
	assert.True(t, errors.Is(err, pgmodel.ErrInvalidPage))

	_, err = pgmodel.PaginateFindWhere(context.Background(), conn, eventModel, "", nil, 0, 1, "")
	assert.Error(t, err)

	assert.Empty(t, client.sqls())
}
