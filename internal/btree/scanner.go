// Package btree implements a depth-first traversal over a table B-tree,
// yielding record cursors in on-disk order.
//
// Grounded on original_source/src/cursor/scanner.rs's Scanner (the
// pager+page+cell-index state and next_record's Option<Result<Cursor>>
// shape) and the teacher's internal/pager/cursor.go Cursor (the
// parent-page/parent-index bookkeeping used to walk back up after
// exhausting a leaf, generalized here into an explicit stack so depth
// isn't hard-coded to one level, as spec.md §4.F requires).
package btree

import (
	"fmt"

	"litesql/internal/pager"
	"litesql/internal/page"
	"litesql/internal/record"
)

// Cursor is a handle to one decoded record: its parsed serial-type header
// plus the payload it was decoded from. Both header and payload borrow
// into the pager's cached page and must not outlive the Scanner call that
// produced them once the scanner has moved on to goad further pages.
type Cursor struct {
	RowID   int64
	Header  record.Header
	Payload []byte
}

// Field reads field i of the cursor's current record.
func (c Cursor) Field(i int) (record.Value, error) {
	return record.ReadField(c.Payload, c.Header, i)
}

// positionedPage tracks where a scanner's depth-first walk currently sits
// within one page: which cell comes next, with one extra slot
// (len(cells)) standing for "visit the rightmost child of an interior
// page", and one past that (len(cells)+1) meaning this page is done.
type positionedPage struct {
	page      *page.Page
	cellIndex int
}

// Scanner performs a depth-first, left-to-right traversal of a table
// B-tree rooted at rootPage, yielding one Cursor per leaf cell in the
// order they're encountered — including the interior page's rightmost
// child, which carries no explicit cell of its own.
type Scanner struct {
	pager *pager.Pager
	root  int
	stack []positionedPage
	done  bool
}

// NewScanner constructs a Scanner over rootPage. The scan itself is
// lazy: no pages are read until the first Next call.
func NewScanner(p *pager.Pager, rootPage int) *Scanner {
	return &Scanner{pager: p, root: rootPage}
}

// Next advances to the next leaf record, or returns ok=false once the
// tree is exhausted. Every leaf cell in the tree is visited exactly once.
func (s *Scanner) Next() (cur Cursor, ok bool, err error) {
	if s.done {
		return Cursor{}, false, nil
	}

	if len(s.stack) == 0 {
		rootPg, err := s.pager.ReadPage(s.root)
		if err != nil {
			return Cursor{}, false, err
		}
		s.stack = append(s.stack, positionedPage{page: rootPg, cellIndex: 0})
	}

	for len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		numCells := len(top.page.Cells)

		switch {
		case top.page.Header.Type.IsInterior() && top.cellIndex == numCells:
			// Emit the rightmost child once, then mark this page past-done.
			top.cellIndex = numCells + 1
			childPg, err := s.pager.ReadPage(int(top.page.Header.RightMostPointer))
			if err != nil {
				return Cursor{}, false, err
			}
			s.stack = append(s.stack, positionedPage{page: childPg, cellIndex: 0})

		case top.cellIndex < numCells:
			cell := top.page.Cells[top.cellIndex]
			top.cellIndex++

			switch cell.Kind {
			case page.CellTableLeaf:
				header, err := record.ParseHeader(cell.Payload)
				if err != nil {
					return Cursor{}, false, fmt.Errorf("parse record header: %w", err)
				}
				return Cursor{RowID: cell.RowID, Header: header, Payload: cell.Payload}, true, nil

			case page.CellTableInterior:
				childPg, err := s.pager.ReadPage(int(cell.LeftChildPage))
				if err != nil {
					return Cursor{}, false, err
				}
				s.stack = append(s.stack, positionedPage{page: childPg, cellIndex: 0})

			default:
				return Cursor{}, false, fmt.Errorf("unexpected cell kind in table b-tree")
			}

		default:
			// This page is fully traversed (cellIndex > numCells for an
			// interior page, or == numCells for a leaf). Pop it.
			s.stack = s.stack[:len(s.stack)-1]
		}
	}

	s.done = true
	return Cursor{}, false, nil
}
