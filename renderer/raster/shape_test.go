package raster

import (
	"testing"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/shaping"
)

func runsOf(dirs ...di.Direction) []shaping.Output {
	out := make([]shaping.Output, len(dirs))
	for i, d := range dirs {
		out[i] = shaping.Output{Direction: d, Runes: shaping.Range{Offset: i, Count: 1}}
	}
	return out
}

func offsets(runs []shaping.Output) []int {
	var got []int
	for _, r := range runs {
		got = append(got, r.Runes.Offset)
	}
	return got
}

func TestVisualOrder(t *testing.T) {
	L, R := di.DirectionLTR, di.DirectionRTL
	cases := []struct {
		name string
		base di.Direction
		dirs []di.Direction
		want []int
	}{
		{"ltr only", L, []di.Direction{L, L}, []int{0, 1}},
		{"rtl inside ltr", L, []di.Direction{L, R, R, L}, []int{0, 2, 1, 3}},
		{"rtl only", R, []di.Direction{R, R}, []int{1, 0}},
		{"ltr inside rtl", R, []di.Direction{R, L, L, R}, []int{3, 1, 2, 0}},
	}
	for _, tc := range cases {
		got := offsets(visualOrder(runsOf(tc.dirs...), tc.base))
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestShapeLineMixedScripts(t *testing.T) {
	r := NewRenderer()
	chain, err := r.Fonts().Faces([]string{"Go"}, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	runs, width := r.shapeLine(chain, 32, "rtl", "hey שלום")
	if len(runs) < 2 {
		t.Fatalf("expected separate Latin and Hebrew runs, got %d", len(runs))
	}
	if width <= 0 {
		t.Fatalf("expected positive width")
	}
	if runs[0].Direction != di.DirectionRTL {
		t.Fatalf("RTL base should put the Hebrew run first visually")
	}
	if runs, w := r.shapeLine(chain, 32, "ltr", ""); runs != nil || w != 0 {
		t.Fatalf("empty text should produce no runs")
	}
}
