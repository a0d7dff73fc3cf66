package region

import "errors"

var (
	// ErrBadMagic means a file's magic number doesn't match MagicRegion.
	ErrBadMagic = errors.New("region: bad magic number")
	// ErrUnsupportedVersion means a file's header version is newer than
	// this package understands.
	ErrUnsupportedVersion = errors.New("region: unsupported version")
	// ErrTruncated means a file ended before a length field it declared
	// was satisfied.
	ErrTruncated = errors.New("region: file truncated")
	// ErrNotFound means a requested sector key has no index entry.
	ErrNotFound = errors.New("region: sector key not found")
)
