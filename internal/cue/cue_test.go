package cue

import (
	"errors"
	"testing"
)

// run feeds a signal sequence through Step and returns the fired events.
func run(signals []float64, th Thresholds) (State, []Event) {
	var st State
	var fired []Event
	for _, d := range signals {
		var ev Event
		st, ev = Step(st, d, th)
		if ev != EventNone {
			fired = append(fired, ev)
		}
	}
	return st, fired
}

func TestStep_Sequences(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name      string
		signals   []float64
		want      []Event
		wantLatch Latch
	}{
		{
			name:      "near far near",
			signals:   []float64{50, 200, 50},
			want:      []Event{EventNear, EventFar, EventNear},
			wantLatch: LatchNear,
		},
		{
			name:      "far held",
			signals:   []float64{200, 200, 200},
			want:      []Event{EventFar},
			wantLatch: LatchFar,
		},
		{
			name:      "far re-armed through middle",
			signals:   []float64{200, 100, 200},
			want:      []Event{EventFar, EventFar},
			wantLatch: LatchFar,
		},
		{
			name:      "near held",
			signals:   []float64{10, 20, 69.9},
			want:      []Event{EventNear},
			wantLatch: LatchNear,
		},
		{
			name:      "middle only",
			signals:   []float64{70, 95, 120},
			want:      nil,
			wantLatch: LatchNone,
		},
		{
			name:      "exactly far does not fire",
			signals:   []float64{120, 120.0001},
			want:      []Event{EventFar},
			wantLatch: LatchFar,
		},
		{
			name:      "exactly near re-arms",
			signals:   []float64{69, 70, 69},
			want:      []Event{EventNear, EventNear},
			wantLatch: LatchNear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, got := run(tt.signals, th)

			if len(got) != len(tt.want) {
				t.Fatalf("fired %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("event %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if st.Latch != tt.wantLatch {
				t.Errorf("latch = %v, want %v", st.Latch, tt.wantLatch)
			}
			if last := tt.signals[len(tt.signals)-1]; st.Signal != last || !st.HasSignal {
				t.Errorf("signal = %f (has=%v), want %f", st.Signal, st.HasSignal, last)
			}
		})
	}
}

func TestBandOf(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		d    float64
		want Band
	}{
		{0, BandNear},
		{69.99, BandNear},
		{70, BandMiddle},
		{119.99, BandMiddle},
		{120, BandFar},
		{500, BandFar},
	}

	for _, tt := range tests {
		if got := BandOf(tt.d, th); got != tt.want {
			t.Errorf("BandOf(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"equal", Thresholds{Near: 80, Far: 80}, true},
		{"inverted", Thresholds{Near: 120, Far: 70}, true},
		{"negative near", Thresholds{Near: -1, Far: 70}, true},
		{"zero near", Thresholds{Near: 0, Far: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidThresholds) {
				t.Errorf("error %v should wrap ErrInvalidThresholds", err)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	if EventFar.String() != "far" || LatchNear.String() != "near" || BandMiddle.String() != "middle" {
		t.Error("unexpected String() output")
	}
	if Event(9).String() != "Event(9)" {
		t.Errorf("unknown event string = %q", Event(9).String())
	}
}
