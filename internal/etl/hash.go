package etl

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// hashBlockSize bounds memory while hashing; archives run into gigabytes.
const hashBlockSize = 1 << 20

// HashFile streams the file in fixed-size blocks and returns the hex digest
// for the named algorithm. Used as the idempotency key for import records.
func HashFile(path string, algorithm string) (string, error) {
	var h hash.Hash
	switch algorithm {
	case "", "sha256":
		h = sha256.New()
	case "sha1":
		h = sha1.New()
	case "md5":
		h = md5.New()
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
