// Package page decodes one raw page buffer into a typed header and cell
// list.
//
// Grounded on original_source/src/page/pager.rs (parse_page /
// parse_table_leaf_page / parse_page_header / parse_cell_pointers /
// parse_table_leaf_cell) for exact byte layout, and on the teacher's
// internal/storage/mem_page.go (PageType constants, header field names,
// the page-1-is-offset-by-100 rule) for Go naming and structure.
package page

import (
	"errors"
	"fmt"

	"litesql/internal/bytesio"
)

// Type identifies the on-disk page kind (the first byte of the page body).
type Type byte

const (
	TypeInteriorIndex Type = 0x02
	TypeInteriorTable Type = 0x05
	TypeLeafIndex     Type = 0x0A
	TypeLeafTable     Type = 0x0D
)

func (t Type) String() string {
	switch t {
	case TypeInteriorIndex:
		return "interior-index"
	case TypeInteriorTable:
		return "interior-table"
	case TypeLeafIndex:
		return "leaf-index"
	case TypeLeafTable:
		return "leaf-table"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

func (t Type) IsLeaf() bool {
	return t == TypeLeafTable || t == TypeLeafIndex
}

func (t Type) IsInterior() bool {
	return t == TypeInteriorTable || t == TypeInteriorIndex
}

// headerLen returns the on-disk page header size for this page type.
func (t Type) headerLen() int {
	if t.IsInterior() {
		return 12
	}
	return 8
}

// Header is the decoded 8- or 12-byte b-tree page header.
type Header struct {
	Type                Type
	FirstFreeblock      uint16
	CellCount           uint16
	CellContentStart    int // a stored 0 means 65536
	FragmentedFreeBytes byte
	RightMostPointer    uint32 // interior pages only
}

// CellKind distinguishes the two cell shapes this core decodes.
type CellKind byte

const (
	CellTableLeaf CellKind = iota
	CellTableInterior
)

// Cell is a decoded table leaf or table interior cell, in on-disk order.
type Cell struct {
	Kind CellKind

	// Table leaf fields.
	PayloadSize int64
	RowID       int64
	Payload     []byte

	// Table interior fields.
	LeftChildPage uint32
	Key           int64
}

// Page is the decoded form of one raw page buffer.
type Page struct {
	Number       int
	Header       Header
	CellPointers []int
	Cells        []Cell
}

// Parse decodes a raw page buffer into a Page. pageNo is the page's
// 1-based position in the file; page 1 carries the 100-byte database
// header before its body, so cell pointers on page 1 are adjusted to
// index into the body rather than the raw buffer.
func Parse(raw []byte, pageNo int) (*Page, error) {
	bodyOffset := 0
	if pageNo == 1 {
		bodyOffset = 100
	}
	body := raw[bodyOffset:]

	if len(body) < 1 {
		return nil, fmt.Errorf("page %d: empty page body", pageNo)
	}

	typ := Type(body[0])
	switch typ {
	case TypeInteriorIndex, TypeLeafIndex:
		return nil, &unimplementedError{fmt.Sprintf("page %d: index pages are not decoded in this core (type %s)", pageNo, typ)}
	case TypeInteriorTable, TypeLeafTable:
		// handled below
	default:
		return nil, fmt.Errorf("page %d: unknown page type 0x%02x", pageNo, body[0])
	}

	header, err := parseHeader(body, typ)
	if err != nil {
		return nil, fmt.Errorf("page %d: parse header: %w", pageNo, err)
	}

	pointerTableStart := typ.headerLen()
	pointers := make([]int, header.CellCount)
	for i := 0; i < int(header.CellCount); i++ {
		raw16, err := bytesio.ReadBEU16(body, pointerTableStart+2*i)
		if err != nil {
			return nil, fmt.Errorf("page %d: cell pointer %d: %w", pageNo, i, err)
		}
		pointers[i] = int(raw16) - bodyOffset
	}

	cells := make([]Cell, header.CellCount)
	for i, ptr := range pointers {
		var cell Cell
		var err error
		switch typ {
		case TypeLeafTable:
			cell, err = parseTableLeafCell(body, ptr)
		case TypeInteriorTable:
			cell, err = parseTableInteriorCell(body, ptr)
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: cell %d: %w", pageNo, i, err)
		}
		cells[i] = cell
	}

	return &Page{
		Number:       pageNo,
		Header:       header,
		CellPointers: pointers,
		Cells:        cells,
	}, nil
}

func parseHeader(body []byte, typ Type) (Header, error) {
	cellCount, err := bytesio.ReadBEU16(body, 3)
	if err != nil {
		return Header{}, err
	}
	firstFreeblock, err := bytesio.ReadBEU16(body, 1)
	if err != nil {
		return Header{}, err
	}
	contentStartRaw, err := bytesio.ReadBEU16(body, 5)
	if err != nil {
		return Header{}, err
	}
	contentStart := int(contentStartRaw)
	if contentStart == 0 {
		contentStart = 65536
	}
	fragBytes, err := bytesio.ReadU8(body, 7)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Type:                typ,
		FirstFreeblock:      firstFreeblock,
		CellCount:           cellCount,
		CellContentStart:    contentStart,
		FragmentedFreeBytes: fragBytes,
	}

	if typ.IsInterior() {
		rightMost, err := bytesio.ReadBEU32(body, 8)
		if err != nil {
			return Header{}, err
		}
		h.RightMostPointer = rightMost
	}

	return h, nil
}

func parseTableLeafCell(body []byte, ptr int) (Cell, error) {
	n1, payloadSize, err := bytesio.ReadVarint(body, ptr)
	if err != nil {
		return Cell{}, fmt.Errorf("read payload size: %w", err)
	}
	n2, rowID, err := bytesio.ReadVarint(body, ptr+n1)
	if err != nil {
		return Cell{}, fmt.Errorf("read row id: %w", err)
	}

	payloadStart := ptr + n1 + n2
	payloadEnd := payloadStart + int(payloadSize)
	if payloadEnd > len(body) {
		// The payload spills onto overflow pages; this core does not
		// walk the overflow chain, per the open question in the design.
		return Cell{}, &unimplementedError{fmt.Sprintf("row %d: payload overflow is not supported", rowID)}
	}

	return Cell{
		Kind:        CellTableLeaf,
		PayloadSize: payloadSize,
		RowID:       rowID,
		Payload:     body[payloadStart:payloadEnd],
	}, nil
}

func parseTableInteriorCell(body []byte, ptr int) (Cell, error) {
	leftChild, err := bytesio.ReadBEU32(body, ptr)
	if err != nil {
		return Cell{}, fmt.Errorf("read left child: %w", err)
	}
	_, key, err := bytesio.ReadVarint(body, ptr+4)
	if err != nil {
		return Cell{}, fmt.Errorf("read key: %w", err)
	}
	return Cell{
		Kind:          CellTableInterior,
		LeftChildPage: leftChild,
		Key:           key,
	}, nil
}

// unimplementedError marks a decode path intentionally left unimplemented
// (index pages, overflow chains) rather than broken.
type unimplementedError struct {
	msg string
}

func (e *unimplementedError) Error() string { return e.msg }

// IsUnimplemented reports whether err, or any error it wraps, represents
// a deliberately unimplemented decode path. Callers up the stack (the
// pager, the schema loader) wrap this error with
// fmt.Errorf("...: %w", err), so this must unwrap rather than type-assert
// err directly.
func IsUnimplemented(err error) bool {
	var unimpl *unimplementedError
	return errors.As(err, &unimpl)
}
