// Package fileheader parses the 100-byte SQLite database file header.
//
// Grounded on original_source/src/page/pager.rs's parse_header (the magic
// prefix check and the page-size derivation rule) and the teacher's
// internal/storage/file_header.go ParseFileHeader (which fields are carried
// forward vs. ignored).
package fileheader

import (
	"encoding/binary"
	"fmt"
)

// Size is the fixed length of the database file header.
const Size = 100

var magic = [16]byte{'S', 'Q', 'L', 'i', 't', 'e', ' ', 'f', 'o', 'r', 'm', 'a', 't', ' ', '3', 0}

// Header is the decoded form of the 100-byte database header. Only
// PageSize is interpreted and validated; the remaining fields are carried
// for completeness but never validated, per the design.
type Header struct {
	PageSize                 int
	FileFormatWriteVersion   byte
	FileFormatReadVersion    byte
	ReservedSpace            byte
	MaxEmbeddedPayloadFrac   byte
	MinEmbeddedPayloadFrac   byte
	LeafPayloadFrac          byte
	FileChangeCounter        uint32
	DatabaseSizeInPages      uint32
	SchemaCookie             uint32
	SchemaFormatNumber       uint32
	DefaultPageCacheSize     uint32
	LargestRootBTreePage     uint32
	TextEncoding             uint32
	UserVersion              uint32
	IncrementalVacuumMode    uint32
	ApplicationID            uint32
	VersionValidFor          uint32
	SQLiteVersionNumber      uint32
}

// Parse validates and decodes the first 100 bytes of a SQLite database
// file. buf must be at least Size bytes long.
func Parse(buf []byte) (Header, error) {
	if len(buf) < Size {
		return Header{}, fmt.Errorf("header: buffer too short: got %d bytes, want %d", len(buf), Size)
	}

	for i, b := range magic {
		if buf[i] != b {
			return Header{}, fmt.Errorf("Invalid header prefix: %q", buf[:len(magic)])
		}
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	pageSize, err := derivePageSize(rawPageSize)
	if err != nil {
		return Header{}, err
	}

	h := Header{
		PageSize:               pageSize,
		FileFormatWriteVersion: buf[18],
		FileFormatReadVersion:  buf[19],
		ReservedSpace:          buf[20],
		MaxEmbeddedPayloadFrac: buf[21],
		MinEmbeddedPayloadFrac: buf[22],
		LeafPayloadFrac:        buf[23],
		FileChangeCounter:      binary.BigEndian.Uint32(buf[24:28]),
		DatabaseSizeInPages:    binary.BigEndian.Uint32(buf[28:32]),
		SchemaCookie:           binary.BigEndian.Uint32(buf[40:44]),
		SchemaFormatNumber:     binary.BigEndian.Uint32(buf[44:48]),
		DefaultPageCacheSize:   binary.BigEndian.Uint32(buf[48:52]),
		LargestRootBTreePage:   binary.BigEndian.Uint32(buf[52:56]),
		TextEncoding:           binary.BigEndian.Uint32(buf[56:60]),
		UserVersion:            binary.BigEndian.Uint32(buf[60:64]),
		IncrementalVacuumMode:  binary.BigEndian.Uint32(buf[64:68]),
		ApplicationID:          binary.BigEndian.Uint32(buf[68:72]),
		VersionValidFor:        binary.BigEndian.Uint32(buf[92:96]),
		SQLiteVersionNumber:    binary.BigEndian.Uint32(buf[96:100]),
	}

	return h, nil
}

func derivePageSize(raw uint16) (int, error) {
	if raw == 1 {
		return 65536, nil
	}
	if raw < 512 || raw > 32768 || raw&(raw-1) != 0 {
		return 0, fmt.Errorf("page size is not a power of two in [512, 32768]: %d", raw)
	}
	return int(raw), nil
}
