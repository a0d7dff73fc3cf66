package codec

import "errors"

// Sentinel errors wrapped with fmt.Errorf("...: %w", ...) at each call
// site, matching the teacher's own error-handling convention, so callers
// can use errors.Is.
var (
	// ErrTruncated means a buffer ended before a length field it
	// declared was satisfied.
	ErrTruncated = errors.New("codec: buffer truncated")

	// ErrDecoderInconsistency means a decoded structure is internally
	// inconsistent (spec.md §4.6: "the run count is inconsistent, or the
	// total block count is not exactly 512").
	ErrDecoderInconsistency = errors.New("codec: decoder inconsistency")
)
