// Package reports parses the text reports a DTN simulation run writes into
// its run directory. Each parser reads one report grammar and returns either
// a time-series tuple or a scalar tuple.
package reports

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/nvandessel/reportsummary/internal/constants"
)

var (
	// ErrMalformedReport means the report exists but yielded no usable data
	// or a line could not be interpreted.
	ErrMalformedReport = errors.New("malformed report")

	// ErrSectionNotFound means a required section heading was absent.
	ErrSectionNotFound = errors.New("report section not found")
)

// Options tunes unit conversion and sampling.
type Options struct {
	// TimeDivisor converts simulator seconds into axis units. 60 yields minutes.
	TimeDivisor float64

	// SampleInterval is the minimum axis distance between two data sync
	// samples, in axis units.
	SampleInterval float64
}

// DefaultOptions returns minute-based axes with 10 minute data sync sampling.
func DefaultOptions() Options {
	return Options{
		TimeDivisor:    constants.DefaultTimeDivisor,
		SampleInterval: constants.DefaultDataSyncInterval,
	}
}

func (o Options) divisor() float64 {
	if o.TimeDivisor <= 0 {
		return constants.DefaultTimeDivisor
	}
	return o.TimeDivisor
}

// Open opens the report at path. If path does not exist, path.gz and
// path.zst are tried in that order. Compressed reports are decompressed
// transparently.
func Open(path string) (io.ReadCloser, error) {
	candidates := []string{path}
	if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".zst") {
		candidates = append(candidates, path+".gz", path+".zst")
	}

	for _, p := range candidates {
		f, err := os.Open(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening report: %w", err)
		}
		rc, err := decompress(p, f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return rc, nil
	}
	return nil, fmt.Errorf("opening report %s: %w", path, os.ErrNotExist)
}

func decompress(path string, f *os.File) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading gzip report %s: %w", path, err)
		}
		return &stackedCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading zstd report %s: %w", path, err)
		}
		rc := dec.IOReadCloser()
		return &stackedCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	default:
		return f, nil
	}
}

// stackedCloser closes a decompressor and then its underlying file.
type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// readLines reads every line of r without trailing newlines.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	return lines, nil
}

// findLineContaining returns the index of the first line at or after start
// that contains phrase, or -1.
func findLineContaining(lines []string, start int, phrase string) int {
	for i := max(start, 0); i < len(lines); i++ {
		if strings.Contains(lines[i], phrase) {
			return i
		}
	}
	return -1
}

// section returns the lines from the first line containing heading up to,
// not including, the next line after it that contains terminator.
func section(lines []string, heading, terminator string) ([]string, error) {
	begin := findLineContaining(lines, 0, heading)
	if begin < 0 {
		return nil, fmt.Errorf("%q: %w", heading, ErrSectionNotFound)
	}
	end := findLineContaining(lines, begin+1, terminator)
	if end < 0 {
		end = len(lines)
	}
	return lines[begin:end], nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, ErrMalformedReport)
	}
	return v, nil
}

// parseFloats parses every capture group of a regexp submatch.
func parseFloats(groups []string) ([]float64, error) {
	out := make([]float64, len(groups))
	for i, g := range groups {
		v, err := parseFloat(g)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
