package pgmodel

import (
	"reflect"
	"strings"

	"github.com/jackc/pgmodel/pgtype"
	errors "golang.org/x/xerrors"
)

// Entity is implemented by types that expose their field values by name. ok is false when the entity does not
// provide field.
type Entity interface {
	Get(field string) (value pgtype.Value, ok bool)
}

// RowScanner is implemented by pointers to types that build themselves from a row. Model.CreateEntity defers to it
// entirely.
type RowScanner interface {
	ScanRow(row *Row) error
}

var (
	valueType    = reflect.TypeOf((*pgtype.Value)(nil)).Elem()
	decoderType  = reflect.TypeOf((*pgtype.Decoder)(nil)).Elem()
	nullableType = reflect.TypeOf((*pgtype.Nullable)(nil)).Elem()
	entityType   = reflect.TypeOf((*Entity)(nil)).Elem()
	scannerType  = reflect.TypeOf((*RowScanner)(nil)).Elem()
)

type modelField struct {
	name     string
	index    []int
	typ      pgtype.Type
	nullable bool
	readonly bool
	pk       bool
}

// Model maps the entity type E to a relation. It holds the writable columns, the primary key and the projection
// used to read entities back.
//
// For a struct E, every field with a db tag is a column:
//
//	type Event struct {
//		UUID      pgtype.UUID                       `db:"uuid,pk"`
//		Name      pgtype.Text                       `db:"name"`
//		VisitorID pgtype.Option[pgtype.Int4]        `db:"visitor_id"`
//		Props     pgtype.JSONB[map[string]any]      `db:"properties"`
//		CreatedAt pgtype.Option[pgtype.Timestamptz] `db:"created_at,readonly"`
//	}
//
// Field types must implement pgtype.Value and their pointers pgtype.Decoder. The pk option marks primary key columns.
// A readonly field is read from rows but never written. Embedded structs without a tag are walked as if their fields
// were declared inline. A Model is immutable and safe for concurrent use.
type Model[E any] struct {
	relation   string
	primaryKey []string
	columns    []string
	projection Projection
	fields     []modelField
	byName     map[string]int
	isEntity   bool
	isScanner  bool
}

// NewModel builds the model of E stored in relation. primaryKey overrides the fields tagged pk.
func NewModel[E any](relation string, primaryKey ...string) (*Model[E], error) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	if t.Kind() == reflect.Ptr || t.Kind() == reflect.Interface {
		return nil, errors.Errorf("model entity must not be a pointer or interface type: %v", t)
	}

	m := &Model[E]{
		relation:  relation,
		byName:    make(map[string]int),
		isEntity:  t.Implements(entityType),
		isScanner: reflect.PtrTo(t).Implements(scannerType),
	}

	if t.Kind() == reflect.Struct {
		if err := m.walk(t, nil); err != nil {
			return nil, err
		}
	}
	if len(m.fields) == 0 && !m.isEntity && !m.isScanner {
		return nil, errors.Errorf("%v has no db fields and does not implement Entity or RowScanner", t)
	}

	projectionFields := make([]ProjectionField, len(m.fields))
	for i, f := range m.fields {
		projectionFields[i] = ProjectionField{Name: f.name, Type: f.typ}
		if !f.readonly {
			m.columns = append(m.columns, f.name)
		}
		if f.pk && len(primaryKey) == 0 {
			m.primaryKey = append(m.primaryKey, f.name)
		}
	}

	projection, err := NewProjection(relation, projectionFields...)
	if err != nil {
		return nil, err
	}
	m.projection = projection

	if len(primaryKey) > 0 {
		m.primaryKey = append([]string(nil), primaryKey...)
	}
	if len(m.fields) > 0 {
		for _, name := range m.primaryKey {
			if _, ok := m.byName[name]; !ok {
				return nil, errors.Errorf("primary key field %q is not a column of %v", name, t)
			}
		}
	}

	return m, nil
}

// MustNewModel is like NewModel but panics on error.
func MustNewModel[E any](relation string, primaryKey ...string) *Model[E] {
	m, err := NewModel[E](relation, primaryKey...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Model[E]) walk(t reflect.Type, base []int) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, hasTag := sf.Tag.Lookup("db")
		index := append(append([]int(nil), base...), i)

		if sf.Anonymous && sf.PkgPath == "" && !hasTag && sf.Type.Kind() == reflect.Struct && !sf.Type.Implements(valueType) {
			if err := m.walk(sf.Type, index); err != nil {
				return err
			}
			continue
		}
		if !hasTag || tag == "-" {
			continue
		}
		if sf.PkgPath != "" {
			return errors.Errorf("field %s has a db tag but is not exported", sf.Name)
		}

		name, pk, readonly, err := parseTag(tag)
		if err != nil {
			return errors.Errorf("field %s: %w", sf.Name, err)
		}
		if _, ok := m.byName[name]; ok {
			return errors.Errorf("field %s: duplicate column %q", sf.Name, name)
		}

		ft := sf.Type
		if ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Interface {
			return errors.Errorf("field %s: %v must not be a pointer or interface", sf.Name, ft)
		}
		if !ft.Implements(valueType) || !reflect.PtrTo(ft).Implements(decoderType) {
			return errors.Errorf("field %s: %v must implement pgtype.Value and *%v pgtype.Decoder", sf.Name, ft, ft)
		}

		m.byName[name] = len(m.fields)
		m.fields = append(m.fields, modelField{
			name:     name,
			index:    index,
			typ:      reflect.Zero(ft).Interface().(pgtype.Value).Type(),
			nullable: ft.Implements(nullableType),
			readonly: readonly,
			pk:       pk,
		})
	}
	return nil
}

// parseTag parses "name[,pk][,readonly]".
func parseTag(tag string) (name string, pk, readonly bool, err error) {
	options := strings.Split(tag, ",")
	name = options[0]
	if name == "" {
		return "", false, false, errors.Errorf("empty column name in tag %q", tag)
	}

	for _, o := range options[1:] {
		switch strings.ToLower(o) {
		case "pk":
			pk = true
		case "readonly":
			readonly = true
		default:
			return "", false, false, errors.Errorf("unexpected tag option %q", o)
		}
	}
	return name, pk, readonly, nil
}

func (m *Model[E]) Relation() string {
	return m.relation
}

// PrimaryKey returns the primary key fields in declared order.
func (m *Model[E]) PrimaryKey() []string {
	return append([]string(nil), m.primaryKey...)
}

// Columns returns the writable columns in declared order.
func (m *Model[E]) Columns() []string {
	return append([]string(nil), m.columns...)
}

func (m *Model[E]) Projection() Projection {
	return m.projection
}

// WithProjection returns a copy of m that selects p.
func (m *Model[E]) WithProjection(p Projection) *Model[E] {
	m2 := *m
	m2.projection = p
	return &m2
}

// WithColumns returns a copy of m with the writable columns replaced. It is needed by Entity implementations that
// carry no db tags.
func (m *Model[E]) WithColumns(columns ...string) *Model[E] {
	m2 := *m
	m2.columns = append([]string(nil), columns...)
	return &m2
}

// WithPrimaryKey returns a copy of m with the primary key replaced.
func (m *Model[E]) WithPrimaryKey(primaryKey ...string) *Model[E] {
	m2 := *m
	m2.primaryKey = append([]string(nil), primaryKey...)
	return &m2
}

// CreateEntity builds an entity from row. Each field of the projection is decoded from the column of the same name.
// A missing column is a *MissingFieldError unless the field is nullable, in which case it is left NULL.
func (m *Model[E]) CreateEntity(row *Row) (E, error) {
	var e E
	if m.isScanner {
		err := any(&e).(RowScanner).ScanRow(row)
		return e, err
	}

	v := reflect.ValueOf(&e).Elem()
	for _, f := range m.fields {
		if !m.projection.Has(f.name) {
			continue
		}

		i, ok := row.Index(f.name)
		if !ok {
			if f.nullable {
				continue
			}
			return e, &MissingFieldError{Name: f.name}
		}

		dst := v.FieldByIndex(f.index).Addr().Interface().(pgtype.Decoder)
		if err := row.GetIndex(i, dst); err != nil {
			return e, err
		}
	}

	return e, nil
}

// Get returns the value of field in e. ok is false if e does not provide the field: it is unknown or holds NULL.
func (m *Model[E]) Get(e E, field string) (pgtype.Value, bool) {
	if m.isEntity {
		return any(e).(Entity).Get(field)
	}

	i, ok := m.byName[field]
	if !ok {
		return nil, false
	}

	v := reflect.ValueOf(e).FieldByIndex(m.fields[i].index).Interface().(pgtype.Value)
	if n, ok := v.(pgtype.Nullable); ok && n.IsNull() {
		return nil, false
	}
	return v, true
}

// Values returns the fields e provides among fields, in order, with their values. Fields e does not provide are
// skipped.
func (m *Model[E]) Values(e E, fields []string) ([]string, []pgtype.Value) {
	names := make([]string, 0, len(fields))
	values := make([]pgtype.Value, 0, len(fields))
	for _, f := range fields {
		if v, ok := m.Get(e, f); ok {
			names = append(names, f)
			values = append(values, v)
		}
	}
	return names, values
}

// Params returns the value of each of fields in e. Fields e does not provide are NULL.
func (m *Model[E]) Params(e E, fields []string) []pgtype.Value {
	params := make([]pgtype.Value, len(fields))
	for i, f := range fields {
		if v, ok := m.Get(e, f); ok {
			params[i] = v
		} else {
			params[i] = pgtype.Null{}
		}
	}
	return params
}

// PrimaryKeyOf extracts the primary key of e.
func (m *Model[E]) PrimaryKeyOf(e E) (PrimaryKey, error) {
	pk := make(PrimaryKey, len(m.primaryKey))
	for _, name := range m.primaryKey {
		v, ok := m.Get(e, name)
		if !ok {
			return nil, &MissingFieldError{Name: name}
		}
		pk[name] = v
	}
	return pk, nil
}

// Scan builds one entity per row.
func (m *Model[E]) Scan(rows *Rows) ([]E, error) {
	entities := make([]E, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		e, err := m.CreateEntity(rows.Row(i))
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
