// Package record decodes the SQLite record format: a variable-length
// header of serial-type codes followed by tightly packed big-endian field
// bodies.
//
// Grounded on original_source/src/cursor/record.rs (parse_record_header's
// serial-type table and the "unsupported field type" error text) and
// original_source/src/cursor/value.rs (the borrowed Value<'p> / owned
// OwnedValue split, including OwnedValue's Display formatting — null,
// decimal ints, default float formatting, UTF-8 text, ASCII-filtered
// blob — which this package's String() methods reproduce).
package record

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"litesql/internal/bytesio"
)

// FieldKind identifies a decoded field's logical type.
type FieldKind int

const (
	KindNull FieldKind = iota
	KindInt
	KindFloat
	KindText
	KindBlob
)

// Field describes one field's position and kind within a record's
// payload, without yet materializing its value. ConstValue carries the
// literal for the zero-body-size "constant 0" / "constant 1" serial
// types (8 and 9), which Size alone cannot distinguish.
type Field struct {
	Offset     int
	Size       int
	Kind       FieldKind
	ConstValue int64
}

// Header is the parsed serial-type header of one record: one Field per
// column, in on-disk order.
type Header struct {
	Fields []Field
}

// ParseHeader parses the serial-type header at the start of payload and
// returns a Header describing where each field's body lives within
// payload and what kind it is.
func ParseHeader(payload []byte) (Header, error) {
	n, headerLen, err := bytesio.ReadVarint(payload, 0)
	if err != nil {
		return Header{}, fmt.Errorf("read record header length: %w", err)
	}

	var fields []Field
	currentOffset := int(headerLen)
	pos := n
	for pos < int(headerLen) {
		consumed, serialType, err := bytesio.ReadVarint(payload, pos)
		if err != nil {
			return Header{}, fmt.Errorf("read serial type: %w", err)
		}
		pos += consumed

		kind, size, constValue, err := decodeSerialType(serialType)
		if err != nil {
			return Header{}, err
		}

		fields = append(fields, Field{Offset: currentOffset, Size: size, Kind: kind, ConstValue: constValue})
		currentOffset += size
	}

	return Header{Fields: fields}, nil
}

func decodeSerialType(serialType int64) (kind FieldKind, size int, constValue int64, err error) {
	switch {
	case serialType == 0:
		return KindNull, 0, 0, nil
	case serialType == 1:
		return KindInt, 1, 0, nil
	case serialType == 2:
		return KindInt, 2, 0, nil
	case serialType == 3:
		return KindInt, 3, 0, nil
	case serialType == 4:
		return KindInt, 4, 0, nil
	case serialType == 5:
		return KindInt, 6, 0, nil
	case serialType == 6:
		return KindInt, 8, 0, nil
	case serialType == 7:
		return KindFloat, 8, 0, nil
	case serialType == 8:
		return KindInt, 0, 0, nil
	case serialType == 9:
		return KindInt, 0, 1, nil
	case serialType == 10 || serialType == 11:
		return 0, 0, 0, fmt.Errorf("unsupported field type: %d", serialType)
	case serialType >= 12 && serialType%2 == 0:
		return KindBlob, int((serialType - 12) / 2), 0, nil
	case serialType >= 13 && serialType%2 == 1:
		return KindText, int((serialType - 13) / 2), 0, nil
	default:
		return 0, 0, 0, fmt.Errorf("unsupported field type: %d", serialType)
	}
}

// Value is a field's materialized value, borrowed from the underlying
// page buffer: Blob references payload directly rather than copying.
// Text is a Go string converted from the payload bytes, so it is a copy.
// A Value's Blob must not outlive the page it was read from.
type Value struct {
	Kind FieldKind
	Int  int64
	Flt  float64
	Text string
	Blob []byte
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	case KindText:
		return v.Text
	case KindBlob:
		return asciiFilter(v.Blob)
	default:
		return ""
	}
}

// Owned converts a borrowed Value into one that owns its data, safe to
// keep after the source page is no longer referenced.
func (v Value) Owned() OwnedValue {
	o := OwnedValue{Kind: v.Kind, Int: v.Int, Flt: v.Flt}
	if v.Kind == KindText {
		o.Text = string([]byte(v.Text))
	}
	if v.Kind == KindBlob {
		o.Blob = append([]byte(nil), v.Blob...)
	}
	return o
}

// OwnedValue is a Value whose Text/Blob contents are independently
// allocated, so it can be held across later pager/scanner calls that may
// reuse or evict the page the value originally came from.
type OwnedValue struct {
	Kind FieldKind
	Int  int64
	Flt  float64
	Text string
	Blob []byte
}

func (v OwnedValue) String() string {
	return Value(v).String()
}

func asciiFilter(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c < utf8.RuneSelf {
			out = append(out, c)
		}
	}
	return string(out)
}

// ReadField materializes field i of header from payload.
func ReadField(payload []byte, h Header, i int) (Value, error) {
	if i < 0 || i >= len(h.Fields) {
		return Value{}, fmt.Errorf("field %d out of range (record has %d fields)", i, len(h.Fields))
	}
	f := h.Fields[i]

	switch f.Kind {
	case KindNull:
		return Value{Kind: KindNull}, nil
	case KindFloat:
		v, err := bytesio.ReadBEF64(payload, f.Offset)
		if err != nil {
			return Value{}, fmt.Errorf("field %d: %w", i, err)
		}
		return Value{Kind: KindFloat, Flt: v}, nil
	case KindInt:
		if f.Size == 0 {
			return Value{Kind: KindInt, Int: f.ConstValue}, nil
		}
		iv, err := readSignedInt(payload, f.Offset, f.Size)
		if err != nil {
			return Value{}, fmt.Errorf("field %d: %w", i, err)
		}
		return Value{Kind: KindInt, Int: iv}, nil
	case KindText:
		if f.Offset+f.Size > len(payload) {
			return Value{}, fmt.Errorf("field %d: text body out of bounds", i)
		}
		raw := payload[f.Offset : f.Offset+f.Size]
		if !utf8.Valid(raw) {
			return Value{}, fmt.Errorf("field %d: invalid UTF-8 in text field", i)
		}
		return Value{Kind: KindText, Text: string(raw)}, nil
	case KindBlob:
		if f.Offset+f.Size > len(payload) {
			return Value{}, fmt.Errorf("field %d: blob body out of bounds", i)
		}
		return Value{Kind: KindBlob, Blob: payload[f.Offset : f.Offset+f.Size]}, nil
	default:
		return Value{}, fmt.Errorf("field %d: unknown field kind", i)
	}
}

// readSignedInt reads a signed big-endian integer of the given byte
// width, sign-extended to 64 bits. A width of 0 returns 0. Serial types
// 8 (constant 0) and 9 (constant 1) never reach this function: both have
// zero body bytes, so ParseHeader records their value in Field.ConstValue
// and ReadField returns that directly.
func readSignedInt(payload []byte, offset, width int) (int64, error) {
	switch width {
	case 0:
		return 0, nil
	case 1:
		return bytesio.ReadBEI8(payload, offset)
	case 2:
		return bytesio.ReadBEI16(payload, offset)
	case 3:
		return bytesio.ReadBEI24(payload, offset)
	case 4:
		return bytesio.ReadBEI32(payload, offset)
	case 6:
		return bytesio.ReadBEI48(payload, offset)
	case 8:
		return bytesio.ReadBEI64(payload, offset)
	default:
		return 0, fmt.Errorf("unsupported integer width: %d", width)
	}
}

// FieldCount returns the number of fields described by h.
func (h Header) FieldCount() int {
	return len(h.Fields)
}
