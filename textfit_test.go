package quotemill

import (
	"math"
	"strings"
	"testing"
)

func TestFitFontSizeShortTextGetsMax(t *testing.T) {
	size := FitFontSize("Hi", 1040, 360)
	if size != fitMaxFontSize {
		t.Errorf("size = %v, want max %v", size, fitMaxFontSize)
	}
}

func TestFitFontSizeNeverBelowMin(t *testing.T) {
	long := strings.Repeat("an extremely long quotation that keeps going ", 40)
	size := FitFontSize(long, 1040, 360)
	if size != fitMinFontSize {
		t.Errorf("size = %v, want min %v", size, fitMinFontSize)
	}
}

func TestFitFontSizeMonotonic(t *testing.T) {
	// Longer text must never get a larger font.
	prev := FitFontSize("short", 1040, 360)
	text := "short"
	for i := 0; i < 30; i++ {
		text += " and then some more words follow"
		size := FitFontSize(text, 1040, 360)
		if size > prev {
			t.Fatalf("font grew from %v to %v as text grew", prev, size)
		}
		prev = size
	}
}

func TestFitFontSizeStepsAreDiscrete(t *testing.T) {
	text := strings.Repeat("a modest sentence of middling length ", 6)
	size := FitFontSize(text, 1040, 360)
	if size < fitMinFontSize || size > fitMaxFontSize {
		t.Fatalf("size %v outside ladder bounds", size)
	}
	if rem := math.Mod(size-fitMinFontSize, fitSizeStep); rem != 0 {
		t.Errorf("size %v is not on the %v-point ladder", size, fitSizeStep)
	}
}

func TestWrapWordsRespectsWidth(t *testing.T) {
	lines := wrapWords("the quick brown fox jumps over the lazy dog", 48, 400)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %d line(s)", len(lines))
	}
	for _, line := range lines {
		if w := estimateLineWidth(line, 48); w > 400 && len(strings.Fields(line)) > 1 {
			t.Errorf("line %q estimated at %v exceeds box width", line, w)
		}
	}
}

func TestWrapWordsSingleOverlongWord(t *testing.T) {
	lines := wrapWords("pneumonoultramicroscopicsilicovolcanoconiosis", 48, 100)
	if len(lines) != 1 {
		t.Fatalf("an unbreakable word should occupy one line, got %d", len(lines))
	}
}

func estimateLineWidth(line string, fontSize float64) float64 {
	var w float64
	words := strings.Fields(line)
	for i, word := range words {
		w += estimateWordWidth(word, fontSize)
		if i > 0 {
			w += fontSize * fitSpaceRatio
		}
	}
	return w
}
