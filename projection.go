package pgmodel

import (
	"strings"

	"github.com/jackc/pgmodel/pgtype"
	"github.com/lib/pq"
	errors "golang.org/x/xerrors"
)

// ProjectionField is one output column of a projection. Expr is the SQL expression that computes it.
type ProjectionField struct {
	Name string
	Expr string
	Type pgtype.Type
}

// Projection is the ordered list of columns a model selects. Field names are unique. Methods that change a
// projection return a modified copy.
type Projection struct {
	relation string
	fields   []ProjectionField
}

// NewProjection returns a projection of relation that selects fields.
func NewProjection(relation string, fields ...ProjectionField) (Projection, error) {
	p := Projection{relation: relation}
	for _, f := range fields {
		var err error
		if p, err = p.AddField(f.Name, f.Expr, f.Type); err != nil {
			return Projection{}, err
		}
	}
	return p, nil
}

// Relation returns the relation the projection selects from.
func (p Projection) Relation() string {
	return p.relation
}

// Fields returns a copy of the fields in order.
func (p Projection) Fields() []ProjectionField {
	return append([]ProjectionField(nil), p.fields...)
}

func (p Projection) Names() []string {
	names := make([]string, len(p.fields))
	for i, f := range p.fields {
		names[i] = f.Name
	}
	return names
}

func (p Projection) Len() int {
	return len(p.fields)
}

// Field returns the field called name.
func (p Projection) Field(name string) (ProjectionField, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f, true
		}
	}
	return ProjectionField{}, false
}

func (p Projection) Has(name string) bool {
	_, ok := p.Field(name)
	return ok
}

// AddField returns p with a field called name computed by expr appended. An empty expr selects the column called
// name. Adding a name that is already present is an error.
func (p Projection) AddField(name, expr string, t pgtype.Type) (Projection, error) {
	if name == "" {
		return p, errors.New("projection field name is empty")
	}
	if p.Has(name) {
		return p, errors.Errorf("projection already has a field called %q", name)
	}
	if expr == "" {
		expr = pq.QuoteIdentifier(name)
	}

	fields := make([]ProjectionField, len(p.fields), len(p.fields)+1)
	copy(fields, p.fields)
	p.fields = append(fields, ProjectionField{Name: name, Expr: expr, Type: t})
	return p, nil
}

// SetField returns p with the expression of field name replaced by expr.
func (p Projection) SetField(name, expr string) (Projection, error) {
	for i, f := range p.fields {
		if f.Name == name {
			fields := append([]ProjectionField(nil), p.fields...)
			fields[i].Expr = expr
			p.fields = fields
			return p, nil
		}
	}
	return p, &MissingFieldError{Name: name}
}

// UnsetField returns p without field name. Removing an absent field is not an error.
func (p Projection) UnsetField(name string) Projection {
	fields := make([]ProjectionField, 0, len(p.fields))
	for _, f := range p.fields {
		if f.Name != name {
			fields = append(fields, f)
		}
	}
	p.fields = fields
	return p
}

// String renders the select list, such as `"id" as "id", upper("name") as "name"`.
func (p Projection) String() string {
	var sb strings.Builder
	for i, f := range p.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Expr)
		sb.WriteString(" as ")
		sb.WriteString(pq.QuoteIdentifier(f.Name))
	}
	return sb.String()
}
