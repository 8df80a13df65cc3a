// Package rgb holds the linear RGB triples that flow through shading.
package rgb

type T [3]float64

var (
	Black = T{0, 0, 0}
	White = T{1, 1, 1}

	// Gray is what surfaces report when their texture is missing.
	Gray = T{0.5, 0.5, 0.5}
)

func AddCC(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func MulCC(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func MulCS(a T, s float64) T {
	return T{
		a[0] * s,
		a[1] * s,
		a[2] * s,
	}
}

func clamp01(x float64) float64 {
	// NaN fails both comparisons; map it to black rather than letting it
	// reach the quantizer.
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Clamp limits every channel to [0, 1].
func Clamp(c T) T {
	return T{clamp01(c[0]), clamp01(c[1]), clamp01(c[2])}
}

// Quantize clamps c and converts it to 8 bits per channel by truncation.
func Quantize(c T) [3]uint8 {
	c = Clamp(c)
	return [3]uint8{
		uint8(c[0] * 255),
		uint8(c[1] * 255),
		uint8(c[2] * 255),
	}
}

// FromBytes converts 8-bit channels to [0, 1].
func FromBytes(r, g, b uint8) T {
	return T{
		float64(r) / 255.0,
		float64(g) / 255.0,
		float64(b) / 255.0,
	}
}
