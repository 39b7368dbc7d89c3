package place

import (
	"testing"

	"github.com/matzehuels/cellplace/pkg/geom"
)

func TestDirectionOffset(t *testing.T) {
	anchor := geom.Rect{X: 1, Y: 2, W: 3, H: 4}
	tests := []struct {
		dir  Direction
		want geom.Point
	}{
		{Right, geom.Point{X: 4, Y: 2}},
		{Above, geom.Point{X: 1, Y: 6}},
		{Below, geom.Point{X: 1, Y: -3}},
		{Left, geom.Point{X: -1, Y: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			// candidate is 2 wide and 5 tall
			if got := tt.dir.Offset(anchor, 2, 5); got != tt.want {
				t.Errorf("Offset() = %v, want %v", got, tt.want)
			}
			if anchor.Overlaps(geom.RectAt(tt.dir.Offset(anchor, 2, 5), 2, 5)) {
				t.Error("offset position overlaps its anchor")
			}
		})
	}
}

func TestKeyOrderMatchesFlatIndex(t *testing.T) {
	const anchors = 3
	prev := keyAt(0, anchors)
	for flat := 1; flat < 4*anchors*numDirections; flat++ {
		k := keyAt(flat, anchors)
		if !prev.Less(k) {
			t.Fatalf("keyAt(%d) = %+v not after %+v", flat, k, prev)
		}
		prev = k
	}
	if want := (Key{Candidate: 3, Anchor: 2, Direction: Left}); prev != want {
		t.Errorf("last key = %+v, want %+v", prev, want)
	}
}

func TestChoiceBetter(t *testing.T) {
	a := choice{key: Key{Candidate: 0, Anchor: 1, Direction: Below}, score: 5}
	b := choice{key: Key{Candidate: 1, Anchor: 0, Direction: Right}, score: 5}
	c := choice{key: Key{Candidate: 2, Anchor: 0, Direction: Right}, score: 4}

	if !a.better(b) || b.better(a) {
		t.Error("equal scores must fall back to key order")
	}
	if !c.better(a) {
		t.Error("lower score must win regardless of key")
	}
	if a.better(a) {
		t.Error("a choice must not beat itself")
	}
}

func TestParseExhaustion(t *testing.T) {
	for in, want := range map[string]Exhaustion{"": ExhaustFail, "fail": ExhaustFail, "expand": ExhaustExpand} {
		got, err := ParseExhaustion(in)
		if err != nil || got != want {
			t.Errorf("ParseExhaustion(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseExhaustion("loop"); err == nil {
		t.Error("ParseExhaustion(loop) expected error")
	}
}
