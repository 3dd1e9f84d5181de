package curve

import (
	"fmt"
	"strings"
)

// Mode selects the interpolation law for the segment ending at a keyframe.
type Mode int

const (
	// Linear interpolates componentwise between the two segment endpoints.
	Linear Mode = iota

	// CatmullRom evaluates a uniform Catmull-Rom spline through four
	// neighbouring control points.
	CatmullRom
)

// String returns the source-file spelling of the mode.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case CatmullRom:
		return "catmullrom"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a lerp_mode string to a Mode.
// Anything other than "catmullrom" is treated as linear.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "catmullrom") {
		return CatmullRom
	}
	return Linear
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = ParseMode(string(text))
	return nil
}
