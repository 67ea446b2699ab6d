package family

import (
	"fmt"
	"io"
	"slices"

	"github.com/nvandessel/reportsummary/internal/aggregate"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/models"
	"github.com/nvandessel/reportsummary/internal/reports"
)

const (
	none      = aggregate.PadNone
	zero      = aggregate.PadZero
	replicate = aggregate.PadReplicate
)

const minutesSinceCreation = "Minutes since message creation"

var registry = build()

func build() []Family {
	fams := []Family{
		{
			Name:        "delivery",
			Title:       "Delivery rates for one-to-one messages",
			Report:      constants.DeliveryProbabilityReport,
			Kind:        models.ResultKindScalar,
			Labels:      []string{"created", "delivered", "delivery_prob"},
			Chart:       ChartPie,
			Output:      "DeliveryProbability",
			ParseScalar: reports.ParseDeliveryProbability,
		},
		delayFamily("delay-one-to-one", "ONE_TO_ONE", constants.OneToOneDelayPriority, "PrivateMessageDelay"),
		delayFamily("delay-multicast", "MULTICAST", constants.MulticastDelayPriority, "MulticastMessageDelay"),
	}
	for _, p := range constants.BroadcastPriorities {
		fams = append(fams, delayFamily(fmt.Sprintf("delay-broadcast-%d", p), "BROADCAST", p, fmt.Sprintf("BroadcastMessageDelay%d", p)))
	}

	fams = append(fams, Family{
		Name:        "multicast",
		Title:       "Multicast delivery rates",
		Report:      constants.MulticastAnalysisFile,
		Kind:        models.ResultKindSeries,
		Labels:      []string{"minutes", "min", "avg"},
		Padding:     []aggregate.Padding{none, replicate, replicate},
		Chart:       ChartLine,
		Output:      "MulticastMessageAnalysis",
		XLabel:      minutesSinceCreation,
		YLabel:      "Delivery rate",
		Legends:     []string{"", "Minimum", "Average"},
		ParseSeries: reports.ParseMulticastAnalysis,
	})
	for _, p := range constants.BroadcastPriorities {
		fams = append(fams, broadcastFamily(p))
	}

	fams = append(fams,
		Family{
			Name:        "buffer-occupancy",
			Title:       "Buffer occupancy",
			Report:      constants.BufferOccupancyReport,
			Kind:        models.ResultKindSeries,
			Labels:      []string{"minutes", "avg", "variance", "min", "max"},
			Padding:     []aggregate.Padding{none, replicate, replicate, replicate, replicate},
			Chart:       ChartLine,
			Output:      "BufferOccupancy",
			XLabel:      "Time in minutes",
			YLabel:      "Percentage of buffer that is occupied",
			Legends:     []string{"", "mean", "variance", "minimum", "maximum"},
			ParseSeries: reports.ParseBufferOccupancy,
		},
		Family{
			Name:        "energy",
			Title:       "Battery power distribution",
			Report:      constants.EnergyLevelReport,
			Kind:        models.ResultKindSeries,
			Labels:      []string{"minutes", "low", "empty"},
			Padding:     []aggregate.Padding{none, replicate, replicate},
			Chart:       ChartLine,
			Output:      "EnergyAnalysis",
			XLabel:      "Minutes in simulation",
			YLabel:      "Percentage of hosts",
			YMax:        1,
			Legends:     []string{"", "Battery 0% < x < 10%", "No battery left"},
			ParseSeries: reports.ParseEnergyLevel,
		},
		dataSyncFamily(),
		Family{
			Name:        "data-distribution",
			Title:       "Average final distribution in local database",
			Report:      constants.DataSyncReport,
			Kind:        models.ResultKindScalar,
			Labels:      []string{"marker", "skill", "resource"},
			Chart:       ChartPie,
			Output:      "DataDistribution",
			Legends:     []string{"Marker", "Skill", "Resource"},
			ParseScalar: reports.ParseDataDistribution,
		},
		Family{
			Name:        "traffic",
			Title:       "Traffic by message type",
			Report:      constants.TrafficReport,
			Kind:        models.ResultKindScalar,
			Labels:      []string{"one_to_one", "broadcast", "multicast", "data"},
			Chart:       ChartPie,
			Output:      "TrafficAnalysis",
			Legends:     slices.Clone(reports.TrafficTypes),
			ParseScalar: reports.ParseTraffic,
		},
	)
	return fams
}

func delayFamily(name, messageType string, priority int, output string) Family {
	return Family{
		Name:    name,
		Title:   fmt.Sprintf("Delay distribution of delivered %s messages\nPriority %d", messageType, priority),
		Report:  constants.DelayAnalysisFile,
		Kind:    models.ResultKindSeries,
		Labels:  []string{"max_delay_minutes", "share_pct", "cumulative_pct"},
		Padding: []aggregate.Padding{none, zero, replicate},
		Chart:   ChartBarCumulative,
		Output:  output,
		XLabel:  "Maximum delay in minutes in delay class",
		YLabel:  "Percentage of messages falling into class",
		Legends: []string{"", "Share", "Cumulative percentage"},
		ParseSeries: func(r io.Reader, opts reports.Options) (models.RunResult, error) {
			return reports.ParseDelayAnalysis(r, messageType, priority, opts)
		},
	}
}

func broadcastFamily(priority int) Family {
	output := fmt.Sprintf("BroadcastAnalysis%d", priority)
	if priority == 5 {
		output = "BroadcastAnalysis"
	}
	return Family{
		Name:    fmt.Sprintf("broadcast-%d", priority),
		Title:   fmt.Sprintf("Broadcast distribution\nPriority %d", priority),
		Report:  constants.BroadcastAnalysisFile,
		Kind:    models.ResultKindSeries,
		Labels:  []string{"minutes", "min", "avg"},
		Padding: []aggregate.Padding{none, replicate, replicate},
		Chart:   ChartLine,
		Output:  output,
		XLabel:  minutesSinceCreation,
		YLabel:  "Reached people",
		Legends: []string{"", "Minimum", "Average"},
		ParseSeries: func(r io.Reader, opts reports.Options) (models.RunResult, error) {
			return reports.ParseBroadcastAnalysis(r, priority, opts)
		},
	}
}

func dataSyncFamily() Family {
	labels := []string{"minutes"}
	labels = append(labels, reports.DataSyncSeries...)
	padding := make([]aggregate.Padding, len(labels))
	for i := 1; i < len(padding); i++ {
		padding[i] = replicate
	}
	legends := append([]string{""}, reports.DataSyncSeries...)
	return Family{
		Name:    "data-sync",
		Title:   "Data synchronization",
		Report:  constants.DataSyncReport,
		Kind:    models.ResultKindSeries,
		Labels:  labels,
		Padding: padding,
		Chart:   ChartPanels,
		Output:  "DataSyncAnalysis",
		XLabel:  "Minutes in simulation",
		Legends: legends,
		Panels: []Panel{
			{Title: "Memory Consumption", YLabel: "Used memory", Positions: []int{1, 3, 2}},
			{Title: "Average Data Utility in Local Database", YLabel: "Average data utility", Positions: []int{4, 5}},
			{Title: "Data Distance", YLabel: "Distance in km", Positions: []int{10, 9, 11}},
			{Title: "Data Age", YLabel: "Age in minutes", Positions: []int{7, 6, 8}},
		},
		ParseSeries: reports.ParseDataSync,
	}
}

// defaultNames is the set the averaging entry point renders when no
// families are named.
var defaultNames = []string{
	"delivery",
	"delay-one-to-one",
	"delay-multicast",
	"delay-broadcast-5",
	"multicast",
	"broadcast-5",
}

// All returns every registered family in registry order.
func All() []Family {
	return slices.Clone(registry)
}

// Names returns the names of all registered families.
func Names() []string {
	names := make([]string, len(registry))
	for i, f := range registry {
		names[i] = f.Name
	}
	return names
}

// Default returns the families averaged when none are requested.
func Default() []Family {
	fams, _ := Select(defaultNames)
	return fams
}

// Lookup returns the family with the given name.
func Lookup(name string) (Family, error) {
	for _, f := range registry {
		if f.Name == name {
			return f, nil
		}
	}
	return Family{}, fmt.Errorf("%q: %w", name, ErrUnknownFamily)
}

// Select resolves names in registry order, dropping duplicates. An empty
// list selects the defaults.
func Select(names []string) ([]Family, error) {
	if len(names) == 0 {
		names = defaultNames
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := Lookup(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	var out []Family
	for _, f := range registry {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out, nil
}
