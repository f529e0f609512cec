package gesture

import (
	"testing"
	"time"

	"github.com/ayusman/pinchpoint/internal/detector"
)

func TestPreprocess(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name      string
		snap      detector.Snapshot
		wantOK    bool
		wantDist  float64
		wantPoint Point
	}{
		{
			name:   "empty snapshot",
			snap:   nil,
			wantOK: false,
		},
		{
			name:   "missing thumb tip",
			snap:   detector.Snapshot{{Index: detector.IndexTip, X: 10, Y: 10}},
			wantOK: false,
		},
		{
			name:   "missing index tip",
			snap:   detector.Snapshot{{Index: detector.ThumbTip, X: 10, Y: 10}},
			wantOK: false,
		},
		{
			name: "sparse snapshot",
			snap: detector.Snapshot{
				{Index: detector.ThumbTip, X: 0, Y: 0},
				{Index: detector.IndexTip, X: 3, Y: 4},
			},
			wantOK:    true,
			wantDist:  5,
			wantPoint: Point{X: 3, Y: 4},
		},
		{
			name: "touching tips",
			snap: detector.Snapshot{
				{Index: detector.ThumbTip, X: 100, Y: 200},
				{Index: detector.IndexTip, X: 100, Y: 200},
			},
			wantOK:    true,
			wantDist:  0,
			wantPoint: Point{X: 100, Y: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Preprocess(tt.snap, now)
			if ok != tt.wantOK {
				t.Fatalf("Preprocess() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Distance != tt.wantDist {
				t.Errorf("Distance = %f, want %f", got.Distance, tt.wantDist)
			}
			if got.Fingertip != tt.wantPoint {
				t.Errorf("Fingertip = %+v, want %+v", got.Fingertip, tt.wantPoint)
			}
			if !got.Timestamp.Equal(now) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, now)
			}
		})
	}
}

func TestPreprocess_DetectorPresets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	policy := DefaultPolicy()

	pinch := detector.PinchLandmarks(0.5, 0.5)
	sample, ok := Preprocess(pinch.Snapshot(640, 480), now)
	if !ok {
		t.Fatal("expected a sample for the pinch preset")
	}
	if !policy.IsPinching(sample.Distance) {
		t.Errorf("pinch preset distance %.1f should be below %.0f", sample.Distance, policy.PinchThreshold)
	}
	if sample.Fingertip != (Point{X: 320, Y: 240}) {
		t.Errorf("Fingertip = %+v, want {320 240}", sample.Fingertip)
	}

	open := detector.OpenHandLandmarks(0.5, 0.5)
	sample, ok = Preprocess(open.Snapshot(640, 480), now)
	if !ok {
		t.Fatal("expected a sample for the open hand preset")
	}
	if policy.IsPinching(sample.Distance) {
		t.Errorf("open hand distance %.1f should not be a pinch", sample.Distance)
	}
}
