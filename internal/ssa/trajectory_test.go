package ssa

import (
	"strings"
	"testing"
)

func sampleTrajectory() *Trajectory {
	return &Trajectory{
		Network: "two_species",
		Species: []SpeciesName{"A", "B"},
		Samples: []Sample{
			{Time: 0, Counts: State{5, 0}},
			{Time: 1, Counts: State{4, 1}},
			{Time: 2, Counts: State{2, 3}},
		},
	}
}

func TestTrajectory_HeaderAndRows(t *testing.T) {
	tr := sampleTrajectory()

	header := tr.Header()
	if strings.Join(header, ",") != "Time,A,B" {
		t.Errorf("Expected header Time,A,B, got %v", header)
	}

	rows := tr.Rows()
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	want := []float64{1, 4, 1}
	for i, v := range want {
		if rows[1][i] != v {
			t.Errorf("Row 1 column %d: expected %g, got %g", i, v, rows[1][i])
		}
	}
}

func TestTrajectory_Column(t *testing.T) {
	tr := sampleTrajectory()

	b, ok := tr.Column("B")
	if !ok {
		t.Fatal("Expected column B to exist")
	}
	if b[0] != 0 || b[1] != 1 || b[2] != 3 {
		t.Errorf("Expected B = [0 1 3], got %v", b)
	}
	if _, ok := tr.Column("C"); ok {
		t.Error("Expected unknown column to be reported as missing")
	}

	times := tr.Times()
	if len(times) != 3 || times[2] != 2 {
		t.Errorf("Expected times [0 1 2], got %v", times)
	}

	final, ok := tr.Final()
	if !ok || final.Time != 2 || final.Counts[0] != 2 {
		t.Errorf("Expected final sample at t=2 with A=2, got %+v", final)
	}
	if _, ok := (&Trajectory{}).Final(); ok {
		t.Error("Expected empty trajectory to have no final sample")
	}
}

func TestTrajectory_SamplesAreCopies(t *testing.T) {
	n, _ := birthDeath(t, 1, 0.1)
	tr := NewTrajectory(n, 2)
	state := State{3}
	tr.append(0, state)
	state[0] = 9
	if tr.Samples[0].Counts[0] != 3 {
		t.Errorf("Expected recorded sample to be a copy, got %d", tr.Samples[0].Counts[0])
	}
	if tr.Network != "birth_death" || len(tr.Species) != 1 {
		t.Errorf("Expected trajectory labelled with the network, got %q %v", tr.Network, tr.Species)
	}
}

func TestValidateTrajectory(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(tr *Trajectory)
		want   string
	}{
		{"valid", func(tr *Trajectory) {}, ""},
		{"decreasing time", func(tr *Trajectory) { tr.Samples[2].Time = 0.5 }, "precedes sample 1"},
		{"wrong width", func(tr *Trajectory) { tr.Samples[1].Counts = State{1} }, "has 1 counts, trajectory has 2 species"},
		{"negative count", func(tr *Trajectory) { tr.Samples[0].Counts[1] = -1 }, "negative count -1 for species B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := sampleTrajectory()
			tt.mutate(tr)
			err := ValidateTrajectory(tr)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Expected valid trajectory, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTrajectoryJSON(t *testing.T) {
	data, err := EncodeTrajectoryJSON(sampleTrajectory())
	if err != nil {
		t.Fatalf("Failed to encode trajectory: %v", err)
	}
	if !strings.Contains(string(data), `"species":["A","B"]`) {
		t.Errorf("Expected species list in JSON, got %s", data)
	}

	tr, err := DecodeTrajectoryJSON(data)
	if err != nil {
		t.Fatalf("Failed to decode trajectory: %v", err)
	}
	if tr.Len() != 3 || tr.Samples[2].Counts[1] != 3 {
		t.Errorf("Decoded trajectory does not match: %+v", tr)
	}

	bad := `{"network":"x","species":["A"],"samples":[{"time":0,"counts":[-2]}]}`
	if _, err := DecodeTrajectoryJSON([]byte(bad)); err == nil {
		t.Error("Expected decode to reject a negative count")
	}
	if _, err := DecodeTrajectoryJSON([]byte("{")); err == nil {
		t.Error("Expected decode to reject malformed JSON")
	}
}
