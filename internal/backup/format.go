package backup

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/nvandessel/reportsummary/internal/store"
)

// FormatVersion is the current archive layout: a JSON header line followed
// by a gzip-compressed JSON payload.
const FormatVersion = 1

// MaxDecompressedSize is the maximum allowed size of decompressed backup data (200MB).
const MaxDecompressedSize = 200 * 1024 * 1024

var (
	// ErrChecksumMismatch means the payload does not match the header checksum.
	ErrChecksumMismatch = errors.New("backup checksum mismatch")

	// ErrUnsupportedVersion means the header names a layout this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported backup version")
)

// Header is the plain-text first line of a backup file. It can be read
// without decompressing the payload.
type Header struct {
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	Checksum     string    `json:"checksum"`
	SummaryCount int       `json:"summary_count"`
	Families     []string  `json:"families,omitempty"`
}

// Archive is the decompressed payload.
type Archive struct {
	CreatedAt time.Time       `json:"created_at"`
	Summaries []store.Summary `json:"summaries"`
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// Encode writes a to w as a header line plus compressed payload.
func Encode(w io.Writer, a *Archive) (*Header, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(payload); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	header := &Header{
		Version:      FormatVersion,
		CreatedAt:    a.CreatedAt,
		Checksum:     checksum(compressed.Bytes()),
		SummaryCount: len(a.Summaries),
		Families:     families(a.Summaries),
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %w", err)
	}

	if _, err := w.Write(append(headerBytes, '\n')); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(compressed.Bytes()); err != nil {
		return nil, fmt.Errorf("writing compressed payload: %w", err)
	}
	return header, nil
}

// families returns the distinct family names in first-seen order.
func families(sums []store.Summary) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range sums {
		if !seen[s.Family] {
			seen[s.Family] = true
			out = append(out, s.Family)
		}
	}
	return out
}

func readHeader(br *bufio.Reader) (*Header, error) {
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header line: %w", err)
	}
	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(line), &header); err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("version %d: %w", header.Version, ErrUnsupportedVersion)
	}
	return &header, nil
}

// readVerified reads the header and the compressed payload, checking the
// payload against the header checksum.
func readVerified(r io.Reader) (*Header, []byte, error) {
	br := bufio.NewReader(r)
	header, err := readHeader(br)
	if err != nil {
		return nil, nil, err
	}
	compressed, err := io.ReadAll(br)
	if err != nil {
		return nil, nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	if got := checksum(compressed); got != header.Checksum {
		return nil, nil, fmt.Errorf("expected %s, got %s: %w", header.Checksum, got, ErrChecksumMismatch)
	}
	return header, compressed, nil
}

// Decode reads an archive written by Encode, verifying its checksum.
func Decode(r io.Reader) (*Header, *Archive, error) {
	header, compressed, err := readVerified(r)
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	decompressed, err := io.ReadAll(io.LimitReader(gzr, MaxDecompressedSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return nil, nil, fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", MaxDecompressedSize)
	}

	var a Archive
	if err := json.Unmarshal(decompressed, &a); err != nil {
		return nil, nil, fmt.Errorf("parsing backup data: %w", err)
	}
	if len(a.Summaries) != header.SummaryCount {
		return nil, nil, fmt.Errorf("header lists %d summaries, payload has %d", header.SummaryCount, len(a.Summaries))
	}
	return header, &a, nil
}

// ReadHeader reads only the header line of a backup file.
func ReadHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return readHeader(bufio.NewReader(f))
}

// Verify checks the integrity of a backup file without decompressing it.
func Verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	_, _, err = readVerified(f)
	return err
}
