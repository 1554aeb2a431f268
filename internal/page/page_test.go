package page

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildLeafPage constructs a raw table-leaf page with one cell holding
// rowID and an already-encoded payload (no varint headers needed since
// we control payloadSize directly).
func buildLeafPage(pageSize int, rowID int64, payload []byte) []byte {
	buf := make([]byte, pageSize)
	buf[0] = byte(TypeLeafTable)

	cellStart := pageSize - (1 /*payload size varint*/ + 1 /*row id varint*/ + len(payload))
	buf[0+0] = byte(TypeLeafTable)
	buf[3] = 0x00
	buf[4] = 0x01 // cell count = 1
	buf[5] = byte(cellStart >> 8)
	buf[6] = byte(cellStart)

	// cell pointer array (1 entry right after the 8-byte header)
	buf[8] = byte(cellStart >> 8)
	buf[9] = byte(cellStart)

	cell := buf[cellStart:]
	cell[0] = byte(len(payload)) // payload size varint (single byte, <128)
	cell[1] = byte(rowID)        // row id varint (single byte, <128)
	copy(cell[2:], payload)

	return buf
}

func TestParse_LeafTablePage(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	buf := buildLeafPage(512, 7, payload)

	pg, err := Parse(buf, 2)
	require.NoError(t, err)
	require.Equal(t, TypeLeafTable, pg.Header.Type)
	require.Equal(t, uint16(1), pg.Header.CellCount)
	require.Len(t, pg.Cells, 1)
	require.Equal(t, int64(7), pg.Cells[0].RowID)
	require.Equal(t, payload, pg.Cells[0].Payload)
}

func TestParse_Page1AdjustsForFileHeader(t *testing.T) {
	payload := []byte{0x42}
	inner := buildLeafPage(512, 1, payload)

	buf := make([]byte, 100+len(inner))
	copy(buf[100:], inner)

	// Real SQLite stores page-1 cell pointers as offsets from the raw
	// page start, which includes the 100-byte file header - not as
	// offsets into the body. buildLeafPage wrote a body-relative
	// pointer; rewrite it to the absolute form Parse must reverse.
	bodyRelative := int(inner[8])<<8 | int(inner[9])
	absolute := bodyRelative + 100
	buf[100+8] = byte(absolute >> 8)
	buf[100+9] = byte(absolute)

	pg, err := Parse(buf, 1)
	require.NoError(t, err)
	require.Len(t, pg.Cells, 1)
	require.Equal(t, payload, pg.Cells[0].Payload)
}

func TestParse_RejectsIndexPageAsUnimplemented(t *testing.T) {
	buf := make([]byte, 512)
	buf[0] = byte(TypeLeafIndex)
	buf[5], buf[6] = 0x02, 0x00

	_, err := Parse(buf, 2)
	require.Error(t, err)
	require.True(t, IsUnimplemented(err))
}

func TestParse_RejectsUnknownPageType(t *testing.T) {
	buf := make([]byte, 512)
	buf[0] = 0xFF

	_, err := Parse(buf, 2)
	require.Error(t, err)
	require.False(t, IsUnimplemented(err))
}

func TestParse_InteriorTableCell(t *testing.T) {
	buf := make([]byte, 512)
	buf[0] = byte(TypeInteriorTable)
	buf[4] = 0x01 // cell count = 1
	buf[5], buf[6] = 0x02, 0x00
	// right-most pointer at offset 8 (4 bytes)
	buf[8], buf[9], buf[10], buf[11] = 0, 0, 0, 9

	cellStart := 500
	buf[12] = byte(cellStart >> 8)
	buf[13] = byte(cellStart)
	cell := buf[cellStart:]
	cell[0], cell[1], cell[2], cell[3] = 0, 0, 0, 3 // left child page = 3
	cell[4] = 42                                    // key varint

	pg, err := Parse(buf, 2)
	require.NoError(t, err)
	require.Equal(t, uint32(9), pg.Header.RightMostPointer)
	require.Len(t, pg.Cells, 1)
	require.Equal(t, uint32(3), pg.Cells[0].LeftChildPage)
	require.Equal(t, int64(42), pg.Cells[0].Key)
}
