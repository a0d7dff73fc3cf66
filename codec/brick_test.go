package codec

import (
	"errors"
	"testing"

	"github.com/gekko3d/voxcore/world"
)

// S5: RLE round-trip on a known pattern — 256 empty blocks followed by
// 256 copies of a nonzero block.
func TestCompressBrickKnownPattern(t *testing.T) {
	blocks := make([]world.Block, world.BlocksInBrick)
	value := world.Block(0x12345678)
	for i := 256; i < world.BlocksInBrick; i++ {
		blocks[i] = value
	}

	buf, err := CompressBrick(blocks)
	if err != nil {
		t.Fatalf("CompressBrick error: %v", err)
	}

	runCount := uint16(buf[0]) | uint16(buf[1])<<8
	if runCount != 2 {
		t.Fatalf("run_count = %d, want 2", runCount)
	}

	decoded, err := DecompressBrick(buf)
	if err != nil {
		t.Fatalf("DecompressBrick error: %v", err)
	}
	if len(decoded) != world.BlocksInBrick {
		t.Fatalf("decoded %d blocks, want %d", len(decoded), world.BlocksInBrick)
	}
	for i, b := range decoded {
		if b != blocks[i] {
			t.Fatalf("block %d = %#x, want %#x", i, b, blocks[i])
		}
	}
}

func TestCompressBrickSplitsLongRuns(t *testing.T) {
	blocks := make([]world.Block, world.BlocksInBrick)
	v := world.Block(7)
	for i := range blocks {
		blocks[i] = v
	}
	buf, err := CompressBrick(blocks)
	if err != nil {
		t.Fatal(err)
	}
	runCount := uint16(buf[0]) | uint16(buf[1])<<8
	if runCount != 2 {
		t.Fatalf("expected a 512-run of one value to split into 2 runs of <=256, got run_count=%d", runCount)
	}

	decoded, err := DecompressBrick(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range decoded {
		if b != v {
			t.Fatalf("block %d = %#x, want %#x", i, b, v)
		}
	}
}

func TestCompressBrickWrongLengthErrors(t *testing.T) {
	if _, err := CompressBrick(make([]world.Block, 10)); err == nil {
		t.Fatal("expected an error for a non-512-length block slice")
	}
}

func TestDecompressBrickTruncatedHeader(t *testing.T) {
	if _, err := DecompressBrick([]byte{1}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecompressBrickTruncatedBody(t *testing.T) {
	buf := []byte{0x02, 0x00} // run_count = 2, but no run data follows
	if _, err := DecompressBrick(buf); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestDecompressBrickInconsistentRunTotal(t *testing.T) {
	// One run of length 1 (lengths[0] = 0 means length 1), total != 512.
	buf := []byte{
		0x01, 0x00, // run_count = 1
		0x01, 0x00, 0x00, 0x00, // value
		0x00, // length-1 = 0 -> length 1
	}
	if _, err := DecompressBrick(buf); !errors.Is(err, ErrDecoderInconsistency) {
		t.Fatalf("expected ErrDecoderInconsistency, got %v", err)
	}
}
