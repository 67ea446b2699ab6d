package aggregate

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/nvandessel/reportsummary/internal/models"
)

func seriesEqual(a, b models.Series) bool {
	return len(a) == len(b) && floats.EqualApprox(a, b, 1e-9)
}

func TestUnify_LongestAxisWins(t *testing.T) {
	set := models.RunResultSet{
		Family: "broadcast-5",
		Runs: []models.RunResult{
			models.NewRunResult("1", models.Series{0, 1, 2}, models.Series{1, 2, 3}),
			models.NewRunResult("2", models.Series{0, 1, 2, 3, 4}, models.Series{5}),
			models.NewRunResult("3", models.Series{0}, models.Series{9}),
		},
	}

	got, err := Unify(set)
	if err != nil {
		t.Fatalf("Unify() error = %v", err)
	}

	want := models.Series{0, 1, 2, 3, 4}
	for i, r := range got.Runs {
		if !seriesEqual(r.Axis(), want) {
			t.Errorf("run %d axis = %v, want %v", i, r.Axis(), want)
		}
	}
	// Non-axis series untouched
	if len(got.Runs[0].Values[1]) != 3 || len(got.Runs[1].Values[1]) != 1 {
		t.Errorf("Unify changed non-axis series: %v", got.Runs)
	}
	// Input untouched
	if len(set.Runs[0].Axis()) != 3 {
		t.Errorf("Unify mutated input axis: %v", set.Runs[0].Axis())
	}
	if CanonicalSeed(set) != "2" {
		t.Errorf("CanonicalSeed() = %q, want %q", CanonicalSeed(set), "2")
	}
}

func TestUnify_TieFirstSeenWins(t *testing.T) {
	set := models.RunResultSet{Runs: []models.RunResult{
		models.NewRunResult("a", models.Series{0, 10}, models.Series{1}),
		models.NewRunResult("b", models.Series{0, 20}, models.Series{1}),
	}}
	got, err := Unify(set)
	if err != nil {
		t.Fatalf("Unify() error = %v", err)
	}
	for _, r := range got.Runs {
		if r.Axis()[1] != 10 {
			t.Errorf("seed %s axis = %v, want first-seen axis", r.Seed, r.Axis())
		}
	}
}

func TestUnify_Errors(t *testing.T) {
	tests := []struct {
		name string
		set  models.RunResultSet
		want error
	}{
		{
			name: "empty set",
			set:  models.RunResultSet{Family: "delivery"},
			want: ErrEmptyInput,
		},
		{
			name: "arity differs",
			set: models.RunResultSet{Family: "energy", Runs: []models.RunResult{
				models.NewRunResult("1", models.Series{0}, models.Series{1}, models.Series{2}),
				models.NewRunResult("2", models.Series{0}, models.Series{1}),
			}},
			want: ErrShapeMismatch,
		},
		{
			name: "no axis",
			set:  models.RunResultSet{Runs: []models.RunResult{{Seed: "1"}}},
			want: ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unify(tt.set)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Unify() error = %v, want %v", err, tt.want)
			}
			var fe *FamilyError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FamilyError, got %T", err)
			}
			if fe.Family != tt.set.Family {
				t.Errorf("FamilyError.Family = %q, want %q", fe.Family, tt.set.Family)
			}
		})
	}
}

func TestUnify_AllEmptyAxes(t *testing.T) {
	set := models.RunResultSet{Runs: []models.RunResult{
		models.NewRunResult("1", models.Series{}, models.Series{}),
		models.NewRunResult("2", models.Series{}, models.Series{}),
	}}
	avg, _, err := Pipeline(set, []Padding{PadNone, PadReplicate})
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}
	if len(avg.Axis()) != 0 || len(avg.Values[1]) != 0 {
		t.Errorf("expected empty averaged series, got %v", avg.Values)
	}
}

func TestZeroFill(t *testing.T) {
	got, err := ZeroFill(models.Series{1}, 5)
	if err != nil {
		t.Fatalf("ZeroFill() error = %v", err)
	}
	if !seriesEqual(got, models.Series{1, 0, 0, 0, 0}) {
		t.Errorf("ZeroFill() = %v", got)
	}

	again, err := ZeroFill(got, 5)
	if err != nil {
		t.Fatalf("ZeroFill() second pass error = %v", err)
	}
	if !seriesEqual(again, got) {
		t.Errorf("ZeroFill not idempotent: %v != %v", again, got)
	}

	empty, err := ZeroFill(nil, 3)
	if err != nil {
		t.Fatalf("ZeroFill(nil) error = %v", err)
	}
	if !seriesEqual(empty, models.Series{0, 0, 0}) {
		t.Errorf("ZeroFill(nil) = %v", empty)
	}
}

func TestReplicateLast(t *testing.T) {
	got, err := ReplicateLast(models.Series{4, 2, 8}, 5)
	if err != nil {
		t.Fatalf("ReplicateLast() error = %v", err)
	}
	if !seriesEqual(got, models.Series{4, 2, 8, 8, 8}) {
		t.Errorf("ReplicateLast() = %v", got)
	}

	again, err := ReplicateLast(got, 5)
	if err != nil {
		t.Fatalf("ReplicateLast() second pass error = %v", err)
	}
	if !seriesEqual(again, got) {
		t.Errorf("ReplicateLast not idempotent: %v != %v", again, got)
	}
}

func TestReplicateLast_EmptySeries(t *testing.T) {
	_, err := ReplicateLast(models.Series{}, 3)
	if !errors.Is(err, ErrEmptySeriesForReplication) {
		t.Fatalf("ReplicateLast(empty) error = %v, want ErrEmptySeriesForReplication", err)
	}

	// Nothing to append: no error
	got, err := ReplicateLast(models.Series{}, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("ReplicateLast(empty, 0) = %v, %v", got, err)
	}
}

func TestPadding_NeverTruncates(t *testing.T) {
	for _, p := range []Padding{PadZero, PadReplicate} {
		t.Run(p.String(), func(t *testing.T) {
			_, err := p.Pad(models.Series{1, 2, 3}, 2)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("Pad() error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestPadding_AppendsOnly(t *testing.T) {
	in := models.Series{7, 3}
	got, err := PadReplicate.Pad(in, 4)
	if err != nil {
		t.Fatalf("Pad() error = %v", err)
	}
	if got[0] != 7 || got[1] != 3 {
		t.Errorf("padding rewrote existing samples: %v", got)
	}
	if len(in) != 2 {
		t.Errorf("padding mutated input length: %v", in)
	}
}

func TestParsePadding(t *testing.T) {
	tests := []struct {
		in      string
		want    Padding
		wantErr bool
	}{
		{"none", PadNone, false},
		{"zero", PadZero, false},
		{"Zero-Fill", PadZero, false},
		{"replicate", PadReplicate, false},
		{"replicate-last", PadReplicate, false},
		{"interpolate", PadNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePadding(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePadding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePadding(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPadSet_ReportsSeedOnFailure(t *testing.T) {
	set := models.RunResultSet{Family: "broadcast-5", Runs: []models.RunResult{
		models.NewRunResult("1", models.Series{0, 1, 2}, models.Series{1, 2, 3}),
		models.NewRunResult("7", models.Series{0, 1, 2}, models.Series{}),
	}}
	_, err := PadSet(set, []Padding{PadNone, PadReplicate})
	if !errors.Is(err, ErrEmptySeriesForReplication) {
		t.Fatalf("PadSet() error = %v, want ErrEmptySeriesForReplication", err)
	}
	var fe *FamilyError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FamilyError, got %T", err)
	}
	if fe.Family != "broadcast-5" || fe.Seed != "7" {
		t.Errorf("FamilyError = %+v, want family broadcast-5 seed 7", fe)
	}
}

func TestPadSet_PolicyArity(t *testing.T) {
	set := models.RunResultSet{Runs: []models.RunResult{
		models.NewRunResult("1", models.Series{0, 1}, models.Series{1}),
	}}
	_, err := PadSet(set, []Padding{PadNone})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("PadSet() error = %v, want ErrShapeMismatch", err)
	}
}

func TestAverageScalarTuples(t *testing.T) {
	got, err := AverageScalarTuples([]models.ScalarRun{
		{Seed: "1", Tuple: models.ScalarTuple{3, 4, 5}},
		{Seed: "2", Tuple: models.ScalarTuple{3, 3, 7}},
	})
	if err != nil {
		t.Fatalf("AverageScalarTuples() error = %v", err)
	}
	if !seriesEqual(models.Series(got), models.Series{3, 3.5, 6}) {
		t.Errorf("AverageScalarTuples() = %v, want (3, 3.5, 6)", got)
	}
}

func TestAverageScalarTuples_Errors(t *testing.T) {
	if _, err := AverageScalarTuples(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("empty input error = %v, want ErrEmptyInput", err)
	}

	_, err := AverageScalarTuples([]models.ScalarRun{
		{Seed: "1", Tuple: models.ScalarTuple{1, 2, 3}},
		{Seed: "2", Tuple: models.ScalarTuple{1, 2}},
	})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("arity mismatch error = %v, want ErrShapeMismatch", err)
	}
}

func TestAverageSeriesTuples(t *testing.T) {
	got, err := AverageSeriesTuples([]models.RunResult{
		models.NewRunResult("1", models.Series{3, 6, 9}, models.Series{4, 2, 8}, models.Series{5, 1, 1}),
		models.NewRunResult("2", models.Series{3, 6, 9}, models.Series{3, 1, 1}, models.Series{7, 8, 10}),
	})
	if err != nil {
		t.Fatalf("AverageSeriesTuples() error = %v", err)
	}

	want := []models.Series{{3, 6, 9}, {3.5, 1.5, 4.5}, {6, 4.5, 5.5}}
	for pos := range want {
		if !seriesEqual(got[pos], want[pos]) {
			t.Errorf("position %d = %v, want %v", pos, got[pos], want[pos])
		}
	}
}

func TestAverageSeriesTuples_NeverPads(t *testing.T) {
	_, err := AverageSeriesTuples([]models.RunResult{
		models.NewRunResult("1", models.Series{0, 1}, models.Series{1, 2}),
		models.NewRunResult("2", models.Series{0, 1}, models.Series{1}),
	})
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("error = %v, want ErrShapeMismatch", err)
	}
	var fe *FamilyError
	if errors.As(err, &fe) && fe.Seed != "2" {
		t.Errorf("FamilyError.Seed = %q, want %q", fe.Seed, "2")
	}
}

func TestAverageSeriesTuples_Empty(t *testing.T) {
	if _, err := AverageSeriesTuples(nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("error = %v, want ErrEmptyInput", err)
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	set := models.RunResultSet{
		Family: "delay-one-to-one",
		Runs: []models.RunResult{
			models.NewRunResult("1", models.Series{1, 2, 3}, models.Series{10, 20, 30}, models.Series{10, 30, 60}),
			models.NewRunResult("2", models.Series{1, 2, 3, 4, 5}, models.Series{5, 5, 5, 5, 5}, models.Series{5, 10, 15, 20, 25}),
			models.NewRunResult("3", models.Series{1}, models.Series{100}, models.Series{100}),
		},
	}
	policy := []Padding{PadNone, PadZero, PadReplicate}

	avg, report, err := Pipeline(set, policy)
	if err != nil {
		t.Fatalf("Pipeline() error = %v", err)
	}

	if report.CanonicalSeed != "2" || report.AxisLength != 5 {
		t.Errorf("report = %+v, want canonical seed 2 and axis length 5", report)
	}
	if !seriesEqual(avg.Axis(), models.Series{1, 2, 3, 4, 5}) {
		t.Errorf("axis = %v, want run 2's axis", avg.Axis())
	}
	for pos, s := range avg.Values {
		if len(s) != 5 {
			t.Errorf("position %d has %d samples, want 5", pos, len(s))
		}
	}

	// Padded inputs:
	// zero:      [10 20 30 0 0] [5 5 5 5 5] [100 0 0 0 0]
	// replicate: [10 30 60 60 60] [5 10 15 20 25] [100 100 100 100 100]
	wantBucket := models.Series{115.0 / 3, 25.0 / 3, 35.0 / 3, 5.0 / 3, 5.0 / 3}
	wantCum := models.Series{115.0 / 3, 140.0 / 3, 175.0 / 3, 180.0 / 3, 185.0 / 3}
	if !seriesEqual(avg.Values[1], wantBucket) {
		t.Errorf("zero-filled mean = %v, want %v", avg.Values[1], wantBucket)
	}
	if !seriesEqual(avg.Values[2], wantCum) {
		t.Errorf("replicated mean = %v, want %v", avg.Values[2], wantCum)
	}
	if report.Appended[1] != 6 || report.Appended[2] != 6 {
		t.Errorf("Appended = %v, want 6 samples at positions 1 and 2", report.Appended)
	}

	// Input is not modified
	if len(set.Runs[0].Values[1]) != 3 {
		t.Errorf("Pipeline mutated input: %v", set.Runs[0].Values[1])
	}
}

func TestPipeline_CommutativeInRunOrder(t *testing.T) {
	a := models.NewRunResult("1", models.Series{0, 1, 2}, models.Series{0.1, 0.2, 0.3})
	b := models.NewRunResult("2", models.Series{0, 1, 2, 3}, models.Series{0.7, 0.1})
	c := models.NewRunResult("3", models.Series{0, 1}, models.Series{1.3})
	policy := []Padding{PadNone, PadReplicate}

	forward, _, err := Pipeline(models.RunResultSet{Runs: []models.RunResult{a, b, c}}, policy)
	if err != nil {
		t.Fatalf("Pipeline(forward) error = %v", err)
	}
	reverse, _, err := Pipeline(models.RunResultSet{Runs: []models.RunResult{c, b, a}}, policy)
	if err != nil {
		t.Fatalf("Pipeline(reverse) error = %v", err)
	}

	for pos := range forward.Values {
		for i := range forward.Values[pos] {
			if math.Abs(forward.Values[pos][i]-reverse.Values[pos][i]) > 1e-12 {
				t.Errorf("position %d index %d: %v != %v", pos, i, forward.Values[pos][i], reverse.Values[pos][i])
			}
		}
	}
}

func TestScalarPipeline(t *testing.T) {
	avg, report, err := ScalarPipeline("delivery", []models.ScalarRun{
		{Seed: "1", Tuple: models.ScalarTuple{100, 80, 0.8}},
		{Seed: "2", Tuple: models.ScalarTuple{100, 60, 0.6}},
	})
	if err != nil {
		t.Fatalf("ScalarPipeline() error = %v", err)
	}
	if avg.Kind != models.ResultKindScalar || report.Runs != 2 {
		t.Errorf("unexpected result %+v / %+v", avg, report)
	}
	if !seriesEqual(models.Series(avg.Scalars), models.Series{100, 70, 0.7}) {
		t.Errorf("Scalars = %v", avg.Scalars)
	}

	_, _, err = ScalarPipeline("delivery", nil)
	var fe *FamilyError
	if !errors.As(err, &fe) || fe.Family != "delivery" || !errors.Is(err, ErrEmptyInput) {
		t.Errorf("ScalarPipeline(nil) error = %v", err)
	}
}

func TestFamilyError_Message(t *testing.T) {
	err := &FamilyError{Family: "energy", Seed: "4", Err: ErrUpstreamParse}
	if got := err.Error(); got != "family energy, seed 4: upstream parse failure" {
		t.Errorf("Error() = %q", got)
	}
	if !IsUpstreamParse(err) {
		t.Error("IsUpstreamParse() = false")
	}
	if IsShapeMismatch(err) {
		t.Error("IsShapeMismatch() = true")
	}
}
