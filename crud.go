package pgmodel

import (
	"context"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/jackc/pgmodel/pgtype"
	errors "golang.org/x/xerrors"
)

// Model operations are package-level functions because Go methods cannot take type parameters. Every clause may use
// "$*" markers, rewritten in order to the positional parameters params.

// minUpsertVersion is the first server version that understands INSERT ... ON CONFLICT.
var minUpsertVersion = semver.MustParse("9.5.0")

func findBySQL[E any](ctx context.Context, conn *Conn, model *Model[E], sql string, params []pgtype.Value) ([]E, error) {
	rows, err := conn.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	return model.Scan(rows)
}

// findOneBySQL returns the first entity of the result. ok is false if there is none.
func findOneBySQL[E any](ctx context.Context, conn *Conn, model *Model[E], sql string, params []pgtype.Value) (e E, ok bool, err error) {
	rows, err := conn.Query(ctx, sql, params...)
	if err != nil {
		return e, false, err
	}
	if rows.Len() == 0 {
		return e, false, nil
	}
	e, err = model.CreateEntity(rows.Row(0))
	if err != nil {
		return e, false, err
	}
	return e, true, nil
}

// FindAll returns every entity of the relation of model. suffix, such as "ORDER BY name", is appended to the query.
func FindAll[E any](ctx context.Context, conn *Conn, model *Model[E], suffix string) ([]E, error) {
	return findBySQL(ctx, conn, model, model.selectAllSQL(suffix), nil)
}

// FindWhere returns the entities matching clause. An empty clause matches every row.
func FindWhere[E any](ctx context.Context, conn *Conn, model *Model[E], clause string, params []pgtype.Value, suffix string) ([]E, error) {
	return findBySQL(ctx, conn, model, model.selectWhereSQL(clause, suffix), params)
}

// FindByPK returns the entity with primary key pk. ok is false if there is none.
func FindByPK[E any](ctx context.Context, conn *Conn, model *Model[E], pk PrimaryKey) (e E, ok bool, err error) {
	clause, params, err := model.pkClause(pk, 1)
	if err != nil {
		return e, false, err
	}
	return findOneBySQL(ctx, conn, model, model.selectWhereSQL(clause, ""), params)
}

// CountWhere returns the number of rows matching clause.
func CountWhere[E any](ctx context.Context, conn *Conn, model *Model[E], clause string, params []pgtype.Value) (int64, error) {
	row, err := conn.QueryOne(ctx, model.countSQL(clause), params...)
	if err != nil {
		return 0, err
	}

	var n pgtype.Int8
	if err := row.GetIndex(0, &n); err != nil {
		return 0, err
	}
	return int64(n), nil
}

// ExistWhere reports if at least one row matches clause.
func ExistWhere[E any](ctx context.Context, conn *Conn, model *Model[E], clause string, params []pgtype.Value) (bool, error) {
	row, err := conn.QueryOne(ctx, model.existSQL(clause), params...)
	if err != nil {
		return false, err
	}

	var b pgtype.Bool
	if err := row.Get("result", &b); err != nil {
		return false, err
	}
	return bool(b), nil
}

// InsertOne inserts entity and returns it as stored, with the values computed by the server. Only the columns the
// entity provides are listed so the server applies its defaults to the others.
func InsertOne[E any](ctx context.Context, conn *Conn, model *Model[E], entity E) (E, error) {
	e, ok, err := insert(ctx, conn, model, entity, "")
	if err != nil {
		return e, err
	}
	if !ok {
		return e, errors.Errorf("insert into %s returned no row", model.relation)
	}
	return e, nil
}

// UpsertOne inserts entity and runs action when it conflicts on target, as in
//
//	UpsertOne(ctx, conn, model, event, "(uuid)", "update set name = excluded.name")
//
// ok is false when the action skipped the row, as "nothing" does.
func UpsertOne[E any](ctx context.Context, conn *Conn, model *Model[E], entity E, target, action string) (e E, ok bool, err error) {
	// Servers that do not report their version are assumed to be recent.
	if v, err := conn.ServerVersion(ctx); err == nil && v.LessThan(minUpsertVersion) {
		return e, false, errors.Errorf("upsert requires PostgreSQL %v or later, server is %v", minUpsertVersion, v)
	}
	return insert(ctx, conn, model, entity, "on conflict "+target+" do "+action)
}

func insert[E any](ctx context.Context, conn *Conn, model *Model[E], entity E, suffix string) (E, bool, error) {
	fields, params := model.Values(entity, model.columns)
	return findOneBySQL(ctx, conn, model, model.insertSQL(fields, suffix), params)
}

// UpdateOne writes every column of entity to the row with primary key pk. Columns entity does not provide are set to
// NULL.
func UpdateOne[E any](ctx context.Context, conn *Conn, model *Model[E], pk PrimaryKey, entity E) (E, bool, error) {
	params := model.Params(entity, model.columns)
	data := make(map[string]pgtype.Value, len(params))
	for i, name := range model.columns {
		data[name] = params[i]
	}
	return UpdateByPK(ctx, conn, model, pk, data)
}

// UpdateByPK sets the fields of data on the row with primary key pk and returns the updated entity. Fields that are
// not part of the projection of model are ignored. When no field is left nothing is sent and ok is false.
func UpdateByPK[E any](ctx context.Context, conn *Conn, model *Model[E], pk PrimaryKey, data map[string]pgtype.Value) (e E, ok bool, err error) {
	clause, params, err := model.pkClause(pk, 1)
	if err != nil {
		return e, false, err
	}

	var fields []string
	for _, name := range model.projection.Names() {
		if v, present := data[name]; present {
			fields = append(fields, name)
			params = append(params, v)
		}
	}

	if len(fields) == 0 {
		conn.log(ctx, LogLevelWarn, "update without any field of the projection", map[string]interface{}{
			"relation": model.relation,
			"fields":   len(data),
		})
		return e, false, nil
	}

	return findOneBySQL(ctx, conn, model, model.updateSQL(fields, clause, len(pk)), params)
}

// DeleteOne deletes the row of entity, found by its primary key, and returns it as it was. ok is false if there was
// none.
func DeleteOne[E any](ctx context.Context, conn *Conn, model *Model[E], entity E) (e E, ok bool, err error) {
	pk, err := model.PrimaryKeyOf(entity)
	if err != nil {
		return e, false, err
	}
	return DeleteByPK(ctx, conn, model, pk)
}

// DeleteByPK deletes the row with primary key pk and returns it as it was. ok is false if there was none.
func DeleteByPK[E any](ctx context.Context, conn *Conn, model *Model[E], pk PrimaryKey) (e E, ok bool, err error) {
	clause, params, err := model.pkClause(pk, 1)
	if err != nil {
		return e, false, err
	}
	return findOneBySQL(ctx, conn, model, model.deleteSQL(clause), params)
}

// DeleteWhere deletes the rows matching clause and returns them as they were.
func DeleteWhere[E any](ctx context.Context, conn *Conn, model *Model[E], clause string, params []pgtype.Value) ([]E, error) {
	return findBySQL(ctx, conn, model, model.deleteSQL(clause), params)
}

// PaginateFindWhere returns page number page, counted from 1, of the entities matching clause with at most
// maxPerPage entities per page. It issues one query for the page and one to count the matching rows. The server still
// reads and skips every row before the page, so deep pages get slower.
func PaginateFindWhere[E any](ctx context.Context, conn *Conn, model *Model[E], clause string, params []pgtype.Value, maxPerPage, page int, suffix string) (*Pager[E], error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if maxPerPage < 1 {
		return nil, errors.Errorf("maxPerPage must be 1 or greater, got %d", maxPerPage)
	}

	items, err := FindWhere(ctx, conn, model, clause, params, paginationSuffix(suffix, maxPerPage, page))
	if err != nil {
		return nil, err
	}

	count, err := CountWhere(ctx, conn, model, clause, params)
	if err != nil {
		return nil, err
	}

	return NewPager(items, count, page, maxPerPage), nil
}

func paginationSuffix(suffix string, maxPerPage, page int) string {
	return suffix + " offset " + strconv.Itoa(maxPerPage*(page-1)) + " fetch first " + strconv.Itoa(maxPerPage) + " rows only"
}
