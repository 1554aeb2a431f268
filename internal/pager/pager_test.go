package pager

import (
	"io"
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"litesql/internal/page"
)

const testPageSize = 512

// writeBlankDB writes n pages of testPageSize, each a valid empty
// leaf-table page, to a temp file and returns the opened handle.
func writeBlankDB(t *testing.T, n int) *os.File {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "pager-test-*.db")
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		buf := make([]byte, testPageSize)
		buf[0] = byte(page.TypeLeafTable)
		// cell content start with no cells is page size.
		buf[5] = byte(testPageSize >> 8)
		buf[6] = byte(testPageSize)
		_, err := f.Write(buf)
		require.NoError(t, err)
	}

	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	return f
}

func TestPager_ReadPage_DecodesLeafPage(t *testing.T) {
	f := writeBlankDB(t, 2)
	p := Open(f, testPageSize, logrus.StandardLogger())

	pg, err := p.ReadPage(2)
	require.NoError(t, err)
	require.Equal(t, 2, pg.Number)
	require.Equal(t, page.TypeLeafTable, pg.Header.Type)
	require.Equal(t, 0, int(pg.Header.CellCount))
}

func TestPager_ReadPage_RejectsPageZero(t *testing.T) {
	f := writeBlankDB(t, 1)
	p := Open(f, testPageSize, logrus.StandardLogger())

	_, err := p.ReadPage(0)
	require.Error(t, err)
}

func TestPager_ReadPage_CacheIsCoherentAcrossConcurrentReaders(t *testing.T) {
	f := writeBlankDB(t, 3)
	p := Open(f, testPageSize, logrus.StandardLogger())

	const readers = 16
	results := make([]*page.Page, readers)

	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		i := i
		go func() {
			defer wg.Done()
			pg, err := p.ReadPage(3)
			require.NoError(t, err)
			results[i] = pg
		}()
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		require.Same(t, results[0], results[i], "all readers must observe the identical cached page")
	}
}

func TestPager_ReadPage_SurfacesIOErrors(t *testing.T) {
	f := writeBlankDB(t, 1)
	p := Open(f, testPageSize, logrus.StandardLogger())

	// Page 5 is beyond the end of the file.
	_, err := p.ReadPage(5)
	require.Error(t, err)
}
