package btree

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"litesql/internal/pager"
)

const testPageSize = 512

// buildRecordPayload encodes a record with one integer field whose
// value is small enough for a single-byte body (serial type 1).
func buildRecordPayload(v byte) []byte {
	// header: varint(header_len=2), varint(serial_type=1) ; body: 1 byte
	return []byte{2, 1, v}
}

// writeLeafPage writes a table-leaf page with the given (rowID, value)
// cells into buf (already sized to one page).
func writeLeafPage(buf []byte, cells [][2]byte) {
	buf[0] = 0x0D // leaf table
	buf[3] = 0
	buf[4] = byte(len(cells))

	cellSize := 5 // payload-size varint + rowid varint + 3-byte payload
	end := len(buf)
	pointers := make([]int, len(cells))
	for i, c := range cells {
		payload := buildRecordPayload(c[1])
		start := end - (2 + len(payload))
		buf[start] = byte(len(payload))
		buf[start+1] = c[0] // row id
		copy(buf[start+2:], payload)
		pointers[i] = start
		end = start
	}
	buf[5] = byte(end >> 8)
	buf[6] = byte(end)

	for i, p := range pointers {
		buf[8+2*i] = byte(p >> 8)
		buf[8+2*i+1] = byte(p)
	}
	_ = cellSize
}

func openTestPager(t *testing.T, pages [][]byte) *pager.Pager {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "btree-test-*.db")
	require.NoError(t, err)
	for _, p := range pages {
		_, err := f.Write(p)
		require.NoError(t, err)
	}
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	return pager.Open(f, testPageSize, logrus.StandardLogger())
}

func TestScanner_SingleLeafPage(t *testing.T) {
	buf := make([]byte, testPageSize)
	writeLeafPage(buf, [][2]byte{{1, 10}, {2, 20}, {3, 30}})

	// Page 1 carries the 100-byte file header in real databases; put the
	// leaf under test at page 2 so this test doesn't need to account for
	// that offset.
	p := openTestPager(t, [][]byte{make([]byte, testPageSize), buf})
	s := NewScanner(p, 2)

	var rowIDs []int64
	for {
		cur, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		rowIDs = append(rowIDs, cur.RowID)
	}

	require.Equal(t, []int64{1, 2, 3}, rowIDs)
}

func TestScanner_FieldDecodesValue(t *testing.T) {
	buf := make([]byte, testPageSize)
	writeLeafPage(buf, [][2]byte{{1, 55}})

	p := openTestPager(t, [][]byte{make([]byte, testPageSize), buf})
	s := NewScanner(p, 2)

	cur, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)

	v, err := cur.Field(0)
	require.NoError(t, err)
	require.Equal(t, int64(55), v.Int)
}

func TestScanner_EmptyTreeYieldsNoRows(t *testing.T) {
	buf := make([]byte, testPageSize)
	writeLeafPage(buf, nil)

	p := openTestPager(t, [][]byte{make([]byte, testPageSize), buf})
	s := NewScanner(p, 2)

	_, ok, err := s.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScanner_InteriorPageVisitsChildrenThenRightmost(t *testing.T) {
	// Page 1 is left as an unused stand-in for the file header page, since
	// page 1 carries a 100-byte offset this test doesn't want to model.
	// Page 2 is the interior root; its one cell points at leaf page 3,
	// with page 4 as the rightmost child.
	leaf3 := make([]byte, testPageSize)
	writeLeafPage(leaf3, [][2]byte{{1, 1}})
	leaf4 := make([]byte, testPageSize)
	writeLeafPage(leaf4, [][2]byte{{2, 2}})

	interior := make([]byte, testPageSize)
	interior[0] = 0x05 // interior table
	interior[4] = 1    // cell count
	interior[8], interior[9], interior[10], interior[11] = 0, 0, 0, 4
	cellStart := 490
	interior[5] = byte(cellStart >> 8)
	interior[6] = byte(cellStart)
	interior[12] = byte(cellStart >> 8)
	interior[13] = byte(cellStart)
	cell := interior[cellStart:]
	cell[0], cell[1], cell[2], cell[3] = 0, 0, 0, 3 // left child = page 3
	cell[4] = 99                                    // key (unused by the scanner)

	p := openTestPager(t, [][]byte{make([]byte, testPageSize), interior, leaf3, leaf4})
	s := NewScanner(p, 2)

	var rowIDs []int64
	for {
		cur, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		rowIDs = append(rowIDs, cur.RowID)
	}

	require.Equal(t, []int64{1, 2}, rowIDs)
}
