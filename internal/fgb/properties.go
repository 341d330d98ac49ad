package fgb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb/geojson"
)

// column is the schema entry kept alongside the writer column, since
// writer.Column does not expose its type after construction.
type column struct {
	name string
	typ  flattypes.ColumnType
}

// schema infers one column per property name, sorted by name so that the
// output is stable across runs. Conflicting scalar types are widened.
func schema(features []*geojson.Feature) []column {
	types := make(map[string]flattypes.ColumnType)
	for _, f := range features {
		if f == nil {
			continue
		}
		for name, value := range f.Properties {
			if value == nil {
				continue
			}
			t := columnType(value)
			if prev, ok := types[name]; ok {
				t = widen(prev, t)
			}
			types[name] = t
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	cols := make([]column, len(names))
	for i, name := range names {
		cols[i] = column{name: name, typ: types[name]}
	}
	return cols
}

func writerColumns(cols []column, builder *flatbuffers.Builder) []*writer.Column {
	out := make([]*writer.Column, 0, len(cols))
	for _, c := range cols {
		wc := writer.NewColumn(builder)
		wc.SetName(c.name)
		wc.SetTitle(c.name)
		wc.SetType(c.typ)
		wc.SetNullable(true)
		out = append(out, wc)
	}
	return out
}

func columnType(value interface{}) flattypes.ColumnType {
	switch value.(type) {
	case bool:
		return flattypes.ColumnTypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		return flattypes.ColumnTypeLong
	case float32, float64, json.Number:
		return flattypes.ColumnTypeDouble
	default:
		return flattypes.ColumnTypeString
	}
}

func widen(a, b flattypes.ColumnType) flattypes.ColumnType {
	switch {
	case a == b:
		return a
	case a == flattypes.ColumnTypeString || b == flattypes.ColumnTypeString:
		return flattypes.ColumnTypeString
	case a == flattypes.ColumnTypeBool || b == flattypes.ColumnTypeBool:
		return flattypes.ColumnTypeString
	default:
		return flattypes.ColumnTypeDouble
	}
}

// encodeProperties writes [uint16 column index][value] pairs in column order.
// Strings are length-prefixed with a uint32, as the format requires.
func encodeProperties(props geojson.Properties, cols []column) []byte {
	if len(props) == 0 {
		return nil
	}

	var buf bytes.Buffer
	var scratch [8]byte
	for i, c := range cols {
		value, ok := props[c.name]
		if !ok || value == nil {
			continue
		}

		binary.LittleEndian.PutUint16(scratch[:2], uint16(i))
		buf.Write(scratch[:2])

		switch c.typ {
		case flattypes.ColumnTypeBool:
			if b, _ := value.(bool); b {
				buf.WriteByte(1)
			} else {
				buf.WriteByte(0)
			}
		case flattypes.ColumnTypeLong:
			binary.LittleEndian.PutUint64(scratch[:], uint64(toInt64(value)))
			buf.Write(scratch[:])
		case flattypes.ColumnTypeDouble:
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(toFloat64(value)))
			buf.Write(scratch[:])
		default:
			s := toString(value)
			binary.LittleEndian.PutUint32(scratch[:4], uint32(len(s)))
			buf.Write(scratch[:4])
			buf.WriteString(s)
		}
	}

	return buf.Bytes()
}

// decodeProperties is the inverse of encodeProperties. It also understands
// the narrower integer and float column types other writers produce. Numbers
// come back as float64, matching what a GeoJSON decode yields.
func decodeProperties(data []byte, header *flattypes.Header) (geojson.Properties, error) {
	props := make(geojson.Properties)
	for off := 0; off < len(data); {
		if off+2 > len(data) {
			return nil, fmt.Errorf("%w: truncated column index", ErrInvalidData)
		}
		idx := int(binary.LittleEndian.Uint16(data[off:]))
		off += 2

		var col flattypes.Column
		if idx >= header.ColumnsLength() || !header.Columns(&col, idx) {
			return nil, fmt.Errorf("%w: column %d out of range", ErrInvalidData, idx)
		}

		value, n, err := readValue(data[off:], col.Type())
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name(), err)
		}
		off += n
		props[string(col.Name())] = value
	}

	return props, nil
}

func readValue(data []byte, t flattypes.ColumnType) (interface{}, int, error) {
	need := func(n int) error {
		if len(data) < n {
			return fmt.Errorf("%w: truncated value", ErrInvalidData)
		}
		return nil
	}

	switch t {
	case flattypes.ColumnTypeBool:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return data[0] != 0, 1, nil
	case flattypes.ColumnTypeByte:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return float64(int8(data[0])), 1, nil
	case flattypes.ColumnTypeUByte:
		if err := need(1); err != nil {
			return nil, 0, err
		}
		return float64(data[0]), 1, nil
	case flattypes.ColumnTypeShort:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return float64(int16(binary.LittleEndian.Uint16(data))), 2, nil
	case flattypes.ColumnTypeUShort:
		if err := need(2); err != nil {
			return nil, 0, err
		}
		return float64(binary.LittleEndian.Uint16(data)), 2, nil
	case flattypes.ColumnTypeInt:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return float64(int32(binary.LittleEndian.Uint32(data))), 4, nil
	case flattypes.ColumnTypeUInt:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return float64(binary.LittleEndian.Uint32(data)), 4, nil
	case flattypes.ColumnTypeLong:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return float64(int64(binary.LittleEndian.Uint64(data))), 8, nil
	case flattypes.ColumnTypeULong:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return float64(binary.LittleEndian.Uint64(data)), 8, nil
	case flattypes.ColumnTypeFloat:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), 4, nil
	case flattypes.ColumnTypeDouble:
		if err := need(8); err != nil {
			return nil, 0, err
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data)), 8, nil
	case flattypes.ColumnTypeString, flattypes.ColumnTypeDateTime, flattypes.ColumnTypeJson:
		if err := need(4); err != nil {
			return nil, 0, err
		}
		n := int(binary.LittleEndian.Uint32(data))
		if err := need(4 + n); err != nil {
			return nil, 0, err
		}
		return string(data[4 : 4+n]), 4 + n, nil
	}

	return nil, 0, fmt.Errorf("%w: column type %d", ErrInvalidData, t)
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	}
	return 0
}

func toFloat64(v interface{}) float64 {
	switch val := v.(type) {
	case float32:
		return float64(val)
	case float64:
		return val
	case json.Number:
		f, _ := val.Float64()
		return f
	}
	return float64(toInt64(v))
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return fmt.Sprint(v)
}
