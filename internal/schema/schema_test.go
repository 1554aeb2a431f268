package schema

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"litesql/internal/pager"
)

const testPageSize = 512

// textField returns the serial-type byte and body for a text field.
func textField(s string) (serialType byte, body []byte) {
	return byte(13 + 2*len(s)), []byte(s)
}

// intField returns the serial-type byte and single-byte body for a
// small non-negative integer field.
func intField(v byte) (serialType byte, body []byte) {
	return 1, []byte{v}
}

// buildMasterRow encodes one sqlite_master record: (type, name,
// tbl_name, rootpage, sql), all fields small enough for single-byte
// varints.
func buildMasterRow(typ, name, tblName string, rootPage byte, sql string) []byte {
	fields := [][2]interface{}{}
	st1, b1 := textField(typ)
	st2, b2 := textField(name)
	st3, b3 := textField(tblName)
	st4, b4 := intField(rootPage)
	st5, b5 := textField(sql)

	serialTypes := []byte{st1, st2, st3, st4, st5}
	bodies := [][]byte{b1, b2, b3, b4, b5}
	_ = fields

	headerLen := byte(len(serialTypes) + 1)
	payload := append([]byte{headerLen}, serialTypes...)
	for _, b := range bodies {
		payload = append(payload, b...)
	}
	return payload
}

// writeLeafPage writes a table-leaf page whose cells are the given
// (rowID, payload) pairs, assuming each cell's on-disk size (2 varint
// bytes + payload) fits comfortably within one page. bodyOffset is the
// number of bytes preceding buf in the raw page (100 for page 1's file
// header, 0 otherwise); cell pointers are stored in real SQLite files
// as offsets from the raw page start, so bodyOffset is added to each
// pointer recorded in the page.
func writeLeafPage(buf []byte, rows [][]byte, bodyOffset int) {
	buf[0] = 0x0D
	buf[4] = byte(len(rows))

	end := len(buf)
	pointers := make([]int, len(rows))
	for i, payload := range rows {
		start := end - (2 + len(payload))
		buf[start] = byte(len(payload))
		buf[start+1] = byte(i + 1) // row id
		copy(buf[start+2:], payload)
		pointers[i] = start + bodyOffset
		end = start
	}
	buf[5] = byte(end >> 8)
	buf[6] = byte(end)
	for i, p := range pointers {
		buf[8+2*i] = byte(p >> 8)
		buf[8+2*i+1] = byte(p)
	}
}

// openTestPager writes page1Body (sized testPageSize-100) behind a
// 100-byte file-header stand-in, producing a single page-1-sized page.
func openTestPager(t *testing.T, page1Body []byte) *pager.Pager {
	t.Helper()
	buf := make([]byte, testPageSize)
	copy(buf[100:], page1Body)

	f, err := os.CreateTemp(t.TempDir(), "schema-test-*.db")
	require.NoError(t, err)
	_, err = f.Write(buf)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)

	return pager.Open(f, testPageSize, logrus.StandardLogger())
}

func TestLoad_ExtractsTablesAndSkipsOtherTypes(t *testing.T) {
	rows := [][]byte{
		buildMasterRow("table", "people", "people", 2, "CREATE TABLE people (id INTEGER, name TEXT)"),
		buildMasterRow("index", "people_idx", "people", 3, "CREATE INDEX people_idx ON people (id)"),
	}

	page1 := make([]byte, testPageSize-100)
	writeLeafPage(page1, rows, 100)

	p := openTestPager(t, page1)
	tables, err := Load(p)
	require.NoError(t, err)

	require.Len(t, tables, 1)
	require.Equal(t, "people", tables[0].Name)
	require.Equal(t, 2, tables[0].RootPage)
	require.Equal(t, []Column{{Name: "id", Type: TypeInteger}, {Name: "name", Type: TypeText}}, tables[0].Columns)
}

func TestLoad_NoTables(t *testing.T) {
	page1 := make([]byte, testPageSize-100)
	writeLeafPage(page1, nil, 100)

	p := openTestPager(t, page1)
	tables, err := Load(p)
	require.NoError(t, err)
	require.Empty(t, tables)
}

func TestTable_ColumnIndex(t *testing.T) {
	tbl := Table{Columns: []Column{{Name: "a"}, {Name: "b"}}}
	require.Equal(t, 1, tbl.ColumnIndex("b"))
	require.Equal(t, -1, tbl.ColumnIndex("missing"))
}
