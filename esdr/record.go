package esdr

import (
	"fmt"

	"github.com/samdb/go-hdc"
	"github.com/samdb/go-hdc/numeric"
	"github.com/samdb/go-hdc/symbol"
)

// Value is one field's value in a Record: a string, an integer, a real
// number, or an ordered collection of any of those (but not a nested
// Record — the reference silently skips fields that aren't one of
// str/int/float/list, and so does SetValue).
type Value any

// Record is the untyped structured data that SetValue composes into an
// ESDR: a mapping of field name to Value.
type Record map[string]Value

// FieldKind reports which encoder produced a field's contribution to an
// ESDR's bit pattern.
type FieldKind string

const (
	FieldSymbol  FieldKind = "symbol"
	FieldNumeric FieldKind = "numeric"
)

// SetValue composes record into e's bit pattern. For each field: the field
// name is encoded with fieldEncoder to produce a per-field bit-pool
// population; a string value is then encoded with symbolEncoder against
// that population, a numeric value with numericEncoder. An ordered
// collection is expanded element-by-element with synthesized field names
// "{field}_{index}". Every resulting pattern is merged into e with
// overwrite semantics and no label, so that two fields sharing the same
// literal value do not collide — each field defines its own bit
// sub-population via fieldEncoder.
//
// SetValue returns, for every field it touched, which kind of encoder
// produced its contribution.
func (e *ESDR) SetValue(record Record, fieldEncoder *symbol.Encoder, symbolEncoder *symbol.Encoder, numericEncoder *numeric.Encoder) (map[string]FieldKind, error) {
	fields := make(map[string]FieldKind)

	for field, value := range record {
		switch v := value.(type) {
		case string:
			if err := e.setScalar(field, v, fieldEncoder, symbolEncoder, numericEncoder, fields); err != nil {
				return nil, err
			}
		case int64:
			if err := e.setScalar(field, v, fieldEncoder, symbolEncoder, numericEncoder, fields); err != nil {
				return nil, err
			}
		case int:
			if err := e.setScalar(field, int64(v), fieldEncoder, symbolEncoder, numericEncoder, fields); err != nil {
				return nil, err
			}
		case float64:
			if err := e.setScalar(field, v, fieldEncoder, symbolEncoder, numericEncoder, fields); err != nil {
				return nil, err
			}
		case []Value:
			for idx, item := range v {
				itemField := fmt.Sprintf("%s_%d", field, idx)
				if err := e.setScalar(itemField, item, fieldEncoder, symbolEncoder, numericEncoder, fields); err != nil {
					return nil, err
				}
				// the kind recorded under the original field name tracks
				// the last element processed, matching the reference.
				fields[field] = fields[itemField]
			}
		default:
			// not a string/int/float/list: silently skipped, as in the
			// reference implementation.
		}
	}

	return fields, nil
}

func (e *ESDR) setScalar(field string, value any, fieldEncoder, symbolEncoder *symbol.Encoder, numericEncoder *numeric.Encoder, fields map[string]FieldKind) error {
	fieldPattern, err := fieldEncoder.Encode(hdc.Str(field), nil)
	if err != nil {
		return fmt.Errorf("esdr.SetValue: encoding field %q: %w", field, err)
	}

	var valuePattern hdc.BitPattern
	switch v := value.(type) {
	case string:
		valuePattern, err = symbolEncoder.Encode(hdc.Str(v), &fieldPattern)
		fields[field] = FieldSymbol
	case int64:
		valuePattern, err = numericEncoder.Encode(float64(v), &fieldPattern)
		fields[field] = FieldNumeric
	case int:
		valuePattern, err = numericEncoder.Encode(float64(v), &fieldPattern)
		fields[field] = FieldNumeric
	case float64:
		valuePattern, err = numericEncoder.Encode(v, &fieldPattern)
		fields[field] = FieldNumeric
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("esdr.SetValue: encoding field %q's value: %w", field, err)
	}

	for _, k := range valuePattern.Keys() {
		e.bits.Set(k, valuePattern.Get(k))
	}
	e.sumBits = e.bits.SumOfWeights()
	return nil
}
