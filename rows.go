package pgmodel

import (
	"strconv"

	"github.com/jackc/pgmodel/pgtype"
	errors "golang.org/x/xerrors"
)

// Column describes one column of a result.
type Column struct {
	Name   string
	Type   pgtype.Type
	Format pgtype.Format
}

// Rows is the complete result of a query.
type Rows struct {
	columns    []Column
	values     [][][]byte
	typeMap    *pgtype.Map
	commandTag string
}

func newRows(m *pgtype.Map, result *Result) *Rows {
	columns := make([]Column, len(result.FieldDescriptions))
	for i, fd := range result.FieldDescriptions {
		columns[i] = Column{
			Name:   string(fd.Name),
			Type:   typeForOID(m, fd.DataTypeOID),
			Format: pgtype.Format(fd.Format),
		}
	}

	return &Rows{
		columns:    columns,
		values:     result.Rows,
		typeMap:    m,
		commandTag: result.CommandTag,
	}
}

func (rs *Rows) Columns() []Column {
	return rs.columns
}

// Len returns the number of rows.
func (rs *Rows) Len() int {
	return len(rs.values)
}

// Row returns row i. It panics if i is out of range.
func (rs *Rows) Row(i int) *Row {
	return &Row{columns: rs.columns, values: rs.values[i], typeMap: rs.typeMap}
}

// CommandTag returns the command tag reported by the server, such as "SELECT 3".
func (rs *Rows) CommandTag() string {
	return rs.commandTag
}

// Row is one row of a result. Its raw values are decoded on demand.
type Row struct {
	columns []Column
	values  [][]byte
	typeMap *pgtype.Map
}

// NewRow builds a row from raw values. Each value must be encoded in the format of its column.
func NewRow(columns []Column, values [][]byte) *Row {
	return &Row{columns: columns, values: values, typeMap: pgtype.NewMap()}
}

func (r *Row) Len() int {
	return len(r.values)
}

func (r *Row) Columns() []Column {
	return r.columns
}

// Index returns the position of the first column called name.
func (r *Row) Index(name string) (int, bool) {
	for i, c := range r.columns {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Raw returns the undecoded value of column name. A nil slice is NULL.
func (r *Row) Raw(name string) ([]byte, bool) {
	i, ok := r.Index(name)
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Get decodes column name into dst.
func (r *Row) Get(name string, dst pgtype.Decoder) error {
	i, ok := r.Index(name)
	if !ok {
		return &MissingFieldError{Name: name}
	}
	return r.decode(i, dst)
}

// GetIndex decodes column i into dst.
func (r *Row) GetIndex(i int, dst pgtype.Decoder) error {
	if i < 0 || i >= len(r.values) {
		return &MissingFieldError{Name: strconv.Itoa(i)}
	}
	return r.decode(i, dst)
}

func (r *Row) decode(i int, dst pgtype.Decoder) error {
	c := r.columns[i]
	if err := pgtype.DecodeFormat(dst, c.Type, c.Format, r.values[i]); err != nil {
		return errors.Errorf("column %q: %w", c.Name, err)
	}
	return nil
}

// Value decodes column name into the default Go value for its type.
func (r *Row) Value(name string) (interface{}, error) {
	i, ok := r.Index(name)
	if !ok {
		return nil, &MissingFieldError{Name: name}
	}

	c := r.columns[i]
	v, err := r.typeMap.DecodeValue(c.Type.OID, c.Format, r.values[i])
	if err != nil {
		return nil, errors.Errorf("column %q: %w", c.Name, err)
	}
	return v, nil
}

// Values decodes every column into the default Go value for its type.
func (r *Row) Values() ([]interface{}, error) {
	values := make([]interface{}, len(r.values))
	for i, c := range r.columns {
		v, err := r.typeMap.DecodeValue(c.Type.OID, c.Format, r.values[i])
		if err != nil {
			return nil, errors.Errorf("column %q: %w", c.Name, err)
		}
		values[i] = v
	}
	return values, nil
}
