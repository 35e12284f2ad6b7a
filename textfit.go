package quotemill

import "strings"

// Text fitting estimates how much vertical space a piece of text needs at a
// candidate font size without touching real font metrics, so the chosen size
// is deterministic across platforms and font rasterizers. Character widths
// are approximated as a fixed fraction of the font size, with corrections
// for notably wide and narrow glyphs.
const (
	fitMaxFontSize = 72.0
	fitMinFontSize = 24.0
	fitSizeStep    = 4.0

	// Average glyph advance as a fraction of the font size.
	fitCharWidthRatio = 0.55
	// Extra advance for wide glyphs, penalty for narrow ones.
	fitWideBonus     = 0.25
	fitNarrowPenalty = 0.30
	// Inter-word space as a fraction of the font size.
	fitSpaceRatio = 0.30

	fitLineHeightRatio = 1.35
)

const (
	fitWideChars   = "mwMW@%&"
	fitNarrowChars = "iljtfrI.,;:'\"!|()[] "
)

// FitFontSize picks the largest font size from a descending ladder whose
// estimated wrapped height fits the given box. A strictly longer text never
// gets a strictly larger size than a shorter one. When nothing fits, the
// minimum size is returned so rendering always proceeds.
func FitFontSize(text string, boxWidth, boxHeight float64) float64 {
	for size := fitMaxFontSize; size >= fitMinFontSize; size -= fitSizeStep {
		lines := estimateLineCount(text, size, boxWidth)
		height := float64(lines) * size * fitLineHeightRatio
		if height <= boxHeight {
			return size
		}
	}
	return fitMinFontSize
}

// estimateLineCount simulates word wrapping: words accumulate onto a line
// until adding the next one would exceed the box width, then wrap. A word
// wider than the whole box still occupies one line on its own.
func estimateLineCount(text string, fontSize, boxWidth float64) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 1
	}

	spaceWidth := fontSize * fitSpaceRatio
	lines := 1
	lineWidth := 0.0
	for _, word := range words {
		w := estimateWordWidth(word, fontSize)
		switch {
		case lineWidth == 0:
			lineWidth = w
		case lineWidth+spaceWidth+w > boxWidth:
			lines++
			lineWidth = w
		default:
			lineWidth += spaceWidth + w
		}
	}
	return lines
}

// estimateWordWidth approximates a word's advance from its character count.
func estimateWordWidth(word string, fontSize float64) float64 {
	base := fontSize * fitCharWidthRatio
	width := 0.0
	for _, r := range word {
		switch {
		case strings.ContainsRune(fitWideChars, r):
			width += base * (1 + fitWideBonus)
		case strings.ContainsRune(fitNarrowChars, r):
			width += base * (1 - fitNarrowPenalty)
		default:
			width += base
		}
	}
	return width
}

// wrapWords splits text into display lines using the same estimator that
// sized it, so the drawn layout matches the height the fitter predicted.
func wrapWords(text string, fontSize, boxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	spaceWidth := fontSize * fitSpaceRatio
	var lines []string
	var current []string
	lineWidth := 0.0
	for _, word := range words {
		w := estimateWordWidth(word, fontSize)
		switch {
		case len(current) == 0:
			current = append(current, word)
			lineWidth = w
		case lineWidth+spaceWidth+w > boxWidth:
			lines = append(lines, strings.Join(current, " "))
			current = []string{word}
			lineWidth = w
		default:
			current = append(current, word)
			lineWidth += spaceWidth + w
		}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}
