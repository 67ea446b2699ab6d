package reports

import (
	"fmt"
	"io"
	"regexp"

	"github.com/nvandessel/reportsummary/internal/models"
)

var deliveryLine = regexp.MustCompile(`^\s*(\w+):\s*(\d+(?:\.\d+)?)\s*$`)

// ParseDeliveryProbability reads a delivery probability report:
//
//	Message stats for scenario realisticScenario
//	sim_time: 50400.0000
//	created: 2099
//	delivered: 251
//	delivery_prob: 0.1196
//
// and returns (created, delivered, delivery_prob).
func ParseDeliveryProbability(r io.Reader) (models.ScalarTuple, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64)
	for _, line := range lines {
		m := deliveryLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := parseFloat(m[2])
		if err != nil {
			return nil, err
		}
		values[m[1]] = v
	}

	keys := []string{"created", "delivered", "delivery_prob"}
	tuple := make(models.ScalarTuple, len(keys))
	for i, k := range keys {
		v, ok := values[k]
		if !ok {
			return nil, fmt.Errorf("missing %q: %w", k, ErrMalformedReport)
		}
		tuple[i] = v
	}
	return tuple, nil
}
