// Package colorize assigns marker colors to categorical values.  Small
// category sets draw from a curated palette so the common case gets
// hand-picked, high-contrast colors; once the palette is exhausted we
// fall back to a golden-angle hue walk that keeps neighbouring hues far
// apart no matter how many categories appear.  The assignment is a pure
// function of the input order.
package colorize

import (
	"fmt"
	"math"
)

// goldenAngle spreads overflow hues around the wheel.  360°/φ² — the
// irrational step means consecutive hues never cluster.
const goldenAngle = 137.508

// Fixed saturation and lightness for generated overflow colors.
const (
	overflowSaturation = 70
	overflowLightness  = 50
)

// palette is the curated tier.  Colors were picked by hand for contrast
// against map tiles; the order matters because the i-th distinct value
// always receives palette[i].
var palette = []string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c", "#fabebe",
	"#008080", "#e6beff", "#9a6324", "#fffac8", "#800000",
	"#aaffc3", "#808000", "#ffd8b1", "#000075", "#808080",
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	"#393b79", "#637939", "#8c6d31", "#843c39", "#7b4173",
	"#5254a3", "#8ca252", "#bd9e39", "#ad494a", "#a55194",
	"#6b6ecf", "#b5cf6b", "#e7ba52", "#d6616b", "#ce6dbd",
	"#9c9ede", "#cedb9c", "#e7cb94", "#e7969c", "#de9ed6",
	"#2e8b57", "#b8860b", "#4682b4", "#d2691e",
}

// PaletteSize reports how many curated colors exist before the
// generated tier begins.
func PaletteSize() int { return len(palette) }

// HueAt returns the generated hue for the i-th distinct value.  Exposed
// so callers (and tests) can reason about the progression without
// parsing color tokens.
func HueAt(i int) float64 {
	return math.Mod(float64(i)*goldenAngle, 360)
}

// TokenAt returns the color token for the i-th distinct value:
// palette[i] while the curated tier lasts, a generated hsl() token
// afterwards.
func TokenAt(i int) string {
	if i < len(palette) {
		return palette[i]
	}
	return fmt.Sprintf("hsl(%.1f, %d%%, %d%%)", HueAt(i), overflowSaturation, overflowLightness)
}

// Assign maps each distinct value to its color token.  The input order
// is the first-seen order of the values in the displayed subset; for a
// fixed order the result is identical across calls.
func Assign(values []string) map[string]string {
	colors := make(map[string]string, len(values))
	for i, v := range values {
		colors[v] = TokenAt(i)
	}
	return colors
}
