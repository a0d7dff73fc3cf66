package entitystore

import "errors"

var (
	// ErrBadMagic means a file's magic number doesn't match MagicEntity.
	ErrBadMagic = errors.New("entitystore: bad magic number")
	// ErrUnsupportedVersion means a file's header version is newer than
	// this package understands.
	ErrUnsupportedVersion = errors.New("entitystore: unsupported version")
	// ErrTruncated means a file ended before a length field it declared
	// was satisfied.
	ErrTruncated = errors.New("entitystore: file truncated")
	// ErrChecksumMismatch means a record's CRC32 didn't match its
	// stored value.
	ErrChecksumMismatch = errors.New("entitystore: checksum mismatch")
)
