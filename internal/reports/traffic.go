package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

// TrafficTypes lists message types in the order of a traffic tuple.
var TrafficTypes = []string{"ONE_TO_ONE", "BROADCAST", "MULTICAST", "DATA"}

var trafficRow = regexp.MustCompile(`^(\w+):.*\((\d+) Bytes\)`)

// ParseTraffic reads the traffic share per message type
//
//	Traffic by message type:
//	ONE_TO_ONE: 11.98% (971373881746 Bytes)
//
// and returns the byte counts in TrafficTypes order. Every type must be
// present.
func ParseTraffic(r io.Reader) (models.ScalarTuple, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		lines = lines[1:]
	}

	bytes := make(map[string]float64, len(TrafficTypes))
	for _, line := range lines {
		m := trafficRow.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloat(m[2])
		if err != nil {
			return nil, err
		}
		bytes[m[1]] = v
	}

	tuple := make(models.ScalarTuple, len(TrafficTypes))
	for i, typ := range TrafficTypes {
		v, ok := bytes[typ]
		if !ok {
			return nil, fmt.Errorf("missing traffic type %s: %w", typ, ErrMalformedReport)
		}
		tuple[i] = v
	}
	return tuple, nil
}
