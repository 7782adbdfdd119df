package report

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strconv"

	"lcgwalk/domain/sequence"
	"lcgwalk/internal/errors"
)

// DefaultDecimals is the fixed precision of the text artifact.
const DefaultDecimals = 5

// FormatArtifact renders seq as one value per line with a fixed number of
// decimals. strconv always uses '.' regardless of locale.
func FormatArtifact(seq sequence.SampleSequence, decimals int) []byte {
	if decimals < 0 {
		decimals = DefaultDecimals
	}
	var buf bytes.Buffer
	for i := 0; i < seq.Len(); i++ {
		buf.WriteString(strconv.FormatFloat(seq.At(i), 'f', decimals, 64))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Checksum is the hex SHA-256 of a formatted artifact. Two sessions with the
// same checksum wrote byte-identical files.
func Checksum(artifact []byte) string {
	sum := sha256.Sum256(artifact)
	return hex.EncodeToString(sum[:])
}

// WriteArtifact overwrites path with the formatted sequence.
func WriteArtifact(path string, seq sequence.SampleSequence, decimals int) error {
	if err := os.WriteFile(path, FormatArtifact(seq, decimals), 0o644); err != nil {
		return errors.IOError("failed to write artifact "+path, err)
	}
	return nil
}

// WriteSessionArtifact writes the accepted sequence of s. Exhausted sessions
// have nothing to write and produce a validation error.
func WriteSessionArtifact(path string, s *sequence.Session, decimals int) error {
	seq, ok := s.Sequence()
	if !ok {
		return errors.WithCode(errors.CodeValidationError, s.Err())
	}
	return WriteArtifact(path, seq, decimals)
}
