package source

import "encoding/hex"

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a document.
	FileFlags uint8
)

const (
	// FileVirtual indicates the document was added from memory (test, stdin).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single document.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Hash    [32]byte
	Flags   FileFlags
}

// HashHex returns the content hash as lowercase hex.
func (f *File) HashHex() string {
	return hex.EncodeToString(f.Hash[:])
}
