package detector

import (
	"errors"
	"math"
	"testing"
)

func TestHandLandmarks_Snapshot(t *testing.T) {
	t.Run("projects normalized points to pixels", func(t *testing.T) {
		hand := HandLandmarks{}
		hand.Points[IndexTip] = Point3D{X: 0.5, Y: 0.25}
		hand.Points[ThumbTip] = Point3D{X: 0.1, Y: 0.9}

		snap := hand.Snapshot(640, 480)

		if len(snap) != NumLandmarks {
			t.Fatalf("expected %d landmarks, got %d", NumLandmarks, len(snap))
		}

		index := snap[IndexTip]
		if index.Index != IndexTip || index.X != 320 || index.Y != 120 {
			t.Errorf("index tip = %+v, want {8 320 120}", index)
		}

		thumb := snap[ThumbTip]
		if thumb.X != 64 || thumb.Y != 432 {
			t.Errorf("thumb tip = %+v, want {4 64 432}", thumb)
		}
	})

	t.Run("nil hand returns nil", func(t *testing.T) {
		var hand *HandLandmarks
		if snap := hand.Snapshot(640, 480); snap != nil {
			t.Errorf("expected nil snapshot, got %v", snap)
		}
	})
}

func TestSnapshot_Find(t *testing.T) {
	tests := []struct {
		name   string
		snap   Snapshot
		index  int
		wantOK bool
		wantX  int
	}{
		{
			name:   "dense snapshot",
			snap:   OpenHandLandmarks(0.5, 0.5).Snapshot(100, 100),
			index:  IndexTip,
			wantOK: true,
			wantX:  50,
		},
		{
			name:   "sparse snapshot",
			snap:   Snapshot{{Index: ThumbTip, X: 7, Y: 1}, {Index: IndexTip, X: 9, Y: 2}},
			index:  IndexTip,
			wantOK: true,
			wantX:  9,
		},
		{
			name:   "missing index",
			snap:   Snapshot{{Index: ThumbTip, X: 7, Y: 1}},
			index:  IndexTip,
			wantOK: false,
		},
		{
			name:   "empty snapshot",
			snap:   nil,
			index:  ThumbTip,
			wantOK: false,
		},
		{
			name:   "negative index",
			snap:   Snapshot{{Index: 0}},
			index:  -1,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.snap.Find(tt.index)
			if ok != tt.wantOK {
				t.Fatalf("Find(%d) ok = %v, want %v", tt.index, ok, tt.wantOK)
			}
			if ok && got.X != tt.wantX {
				t.Errorf("Find(%d).X = %d, want %d", tt.index, got.X, tt.wantX)
			}
		})
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PinchLandmarks(0.5, 0.5)})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
	})

	t.Run("plays back script then reports no hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetScript([][]HandLandmarks{
			{OpenHandLandmarks(0.5, 0.5)},
			nil,
			{PinchLandmarks(0.5, 0.5)},
		})

		want := []int{1, 0, 1, 0, 0}
		for i, n := range want {
			hands, err := mock.Detect(nil)
			if err != nil {
				t.Fatalf("call %d: unexpected error: %v", i, err)
			}
			if len(hands) != n {
				t.Errorf("call %d: expected %d hands, got %d", i, n, len(hands))
			}
		}

		if mock.Calls() != len(want) {
			t.Errorf("Calls() = %d, want %d", mock.Calls(), len(want))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		if err := NewMockDetector().Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func pixelGap(h HandLandmarks, width, height int) float64 {
	snap := h.Snapshot(width, height)
	dx := float64(snap[IndexTip].X - snap[ThumbTip].X)
	dy := float64(snap[IndexTip].Y - snap[ThumbTip].Y)
	return math.Hypot(dx, dy)
}

func TestPinchLandmarks(t *testing.T) {
	landmarks := PinchLandmarks(0.4, 0.3)

	t.Run("index tip at requested position", func(t *testing.T) {
		if landmarks.Points[IndexTip].X != 0.4 || landmarks.Points[IndexTip].Y != 0.3 {
			t.Errorf("index tip = %+v, want (0.4, 0.3)", landmarks.Points[IndexTip])
		}
	})

	t.Run("thumb touches index tip on a 640x480 frame", func(t *testing.T) {
		if gap := pixelGap(landmarks, 640, 480); gap >= 20 {
			t.Errorf("thumb-index gap = %.1fpx, expected a pinch under 20px", gap)
		}
	})
}

func TestOpenHandLandmarks(t *testing.T) {
	landmarks := OpenHandLandmarks(0.4, 0.3)

	t.Run("has correct handedness and score", func(t *testing.T) {
		if landmarks.Handedness != "Right" {
			t.Errorf("expected handedness Right, got %s", landmarks.Handedness)
		}
		if landmarks.Score < 0.9 {
			t.Errorf("expected score >= 0.9, got %f", landmarks.Score)
		}
	})

	t.Run("thumb spread well apart on a 640x480 frame", func(t *testing.T) {
		if gap := pixelGap(landmarks, 640, 480); gap <= 100 {
			t.Errorf("thumb-index gap = %.1fpx, expected an open hand over 100px", gap)
		}
	})

	t.Run("index finger is extended", func(t *testing.T) {
		if landmarks.Points[IndexMCP].Y-landmarks.Points[IndexTip].Y < 0.2 {
			t.Error("index tip should sit well above the index MCP")
		}
	})
}

func TestJSONHand_ToHandLandmarks(t *testing.T) {
	h := jsonHand{Handedness: "Left", Score: 0.8}
	for i := 0; i < NumLandmarks; i++ {
		h.Points = append(h.Points, jsonPoint{X: float64(i) / 100, Y: 0.5, Z: 0})
	}

	lm := h.toHandLandmarks()

	if lm.Handedness != "Left" || lm.Score != 0.8 {
		t.Errorf("metadata not preserved: %+v", lm)
	}
	if lm.Points[PinkyTip].X != 0.2 {
		t.Errorf("PinkyTip.X = %f, want 0.2", lm.Points[PinkyTip].X)
	}
}
