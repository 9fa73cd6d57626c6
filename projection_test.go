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

func TestProjection(t *testing.T) {
	p, err := pgmodel.NewProjection("events",
		pgmodel.ProjectionField{Name: "uuid", Type: pgtype.UUIDType},
		pgmodel.ProjectionField{Name: "name", Type: pgtype.TextType},
	)
	require.NoError(t, err)
	assert.Equal(t, "events", p.Relation())
	assert.Equal(t, `"uuid" as "uuid", "name" as "name"`, p.String())

	p2, err := p.AddField("visits", "count(*)", pgtype.Int8Type)
	require.NoError(t, err)
	assert.Equal(t, []string{"uuid", "name"}, p.Names(), "AddField must not modify the receiver")
	assert.Equal(t, []string{"uuid", "name", "visits"}, p2.Names())
	assert.Equal(t, 3, p2.Len())

	_, err = p2.AddField("name", "", pgtype.TextType)
	assert.Error(t, err)
	_, err = p2.AddField("", "1", pgtype.Int4Type)
	assert.Error(t, err)

	p3, err := p2.SetField("name", `upper("name")`)
	require.NoError(t, err)
	assert.Equal(t, `"uuid" as "uuid", upper("name") as "name", count(*) as "visits"`, p3.String())
	assert.Equal(t, `"uuid" as "uuid", "name" as "name", count(*) as "visits"`, p2.String())

	_, err = p3.SetField("missing", "1")
	var missingErr *pgmodel.MissingFieldError
	assert.True(t, errors.As(err, &missingErr))

	p4 := p3.UnsetField("name").UnsetField("missing")
	assert.Equal(t, []string{"uuid", "visits"}, p4.Names())
	assert.True(t, p3.Has("name"))
	assert.False(t, p4.Has("name"))
}

func TestProjectionWithModel(t *testing.T) {
	p, err := eventModel.Projection().AddField("is_recent", "created_at > now() - interval '1 day'", pgtype.BoolType)
	require.NoError(t, err)

	client := newSpyClient()
	conn := newTestConn(t, client)

	_, err = pgmodel.FindAll(context.Background(), conn, eventModel.WithProjection(p), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT " + eventProjection + `, created_at > now() - interval '1 day' as "is_recent" FROM events;`}, client.sqls())
}
