package store

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

// Digest is the BLAKE3-256 digest of a stored blob's plain content.
type Digest [32]byte

// String returns the hexadecimal representation of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters.
func (d Digest) Short() string {
	return d.String()[:12]
}

// Sum computes the digest of data.
func Sum(data []byte) Digest {
	return blake3.Sum256(data)
}

// ---------------------------
// Record encoding
// ---------------------------
//
// A record is the 32-byte digest of the plain content followed by the
// zstd-compressed content.

const digestSize = len(Digest{})

func encodeRecord(plain []byte) ([]byte, Digest, error) {
	digest := Sum(plain)

	var buf bytes.Buffer
	buf.Write(digest[:])
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, Digest{}, fmt.Errorf("zstd writer: %w", err)
	}
	if _, err := enc.Write(plain); err != nil {
		return nil, Digest{}, fmt.Errorf("zstd write: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, Digest{}, fmt.Errorf("zstd close: %w", err)
	}
	return buf.Bytes(), digest, nil
}

func decodeRecord(record []byte) ([]byte, Digest, error) {
	var want Digest
	if len(record) < digestSize {
		return nil, want, fmt.Errorf("%w: record too short (%d bytes)", ErrCorrupt, len(record))
	}
	copy(want[:], record[:digestSize])

	dec, err := zstd.NewReader(bytes.NewReader(record[digestSize:]))
	if err != nil {
		return nil, want, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	plain, err := io.ReadAll(dec)
	if err != nil {
		return nil, want, fmt.Errorf("%w: read zstd payload: %v", ErrCorrupt, err)
	}
	if got := Sum(plain); got != want {
		return nil, want, fmt.Errorf("%w: digest mismatch: expected %s, got %s", ErrCorrupt, want, got)
	}
	return plain, want, nil
}
