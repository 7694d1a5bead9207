package timerlib

// Color is a presentation color selectable by ColorIndex.
type Color struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
}

// Palette is the fixed set of timer colors. Its length bounds ColorIndex.
var Palette = []Color{
	{"Red", 0xFFE57373},
	{"Orange", 0xFFFFB74D},
	{"Yellow", 0xFFFFF176},
	{"Green", 0xFF81C784},
	{"Blue", 0xFF64B5F6},
	{"Purple", 0xFFBA68C8},
}

// ColorBlue is the index used for the first-run timer.
const ColorBlue = 4

// ClampColor clamps i into the valid palette range.
func ClampColor(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(Palette) {
		return len(Palette) - 1
	}
	return i
}

// ColorName returns the palette name for i after clamping.
func ColorName(i int) string {
	return Palette[ClampColor(i)].Name
}
