package pgmodel

import (
	"github.com/jackc/pgmodel/pgtype"
	"github.com/lib/pq/oid"
	errors "golang.org/x/xerrors"
)

// PrimaryKey maps each primary key field of a relation to its value.
type PrimaryKey map[string]pgtype.Value

// encodeParams encodes each parameter in its preferred format. A nil parameter is sent as an untyped NULL.
func encodeParams(params []pgtype.Value) ([]uint32, [][]byte, []int16, error) {
	oids := make([]uint32, len(params))
	values := make([][]byte, len(params))
	formats := make([]int16, len(params))

	for i, p := range params {
		if p == nil {
			p = pgtype.Null{}
		}

		o, buf, format, err := pgtype.Encode(p)
		if err != nil {
			return nil, nil, nil, errors.Errorf("cannot encode parameter $%d: %w", i+1, err)
		}

		oids[i] = uint32(o)
		values[i] = buf
		formats[i] = int16(format)
	}

	return oids, values, formats, nil
}

// typeForOID resolves o through m, falling back to the built-in descriptors.
func typeForOID(m *pgtype.Map, o uint32) pgtype.Type {
	if t, ok := m.TypeForOID(oid.Oid(o)); ok {
		return t
	}
	return pgtype.TypeForOID(oid.Oid(o))
}
