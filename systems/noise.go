package systems

import (
	"math"
	"math/rand"
)

// GradientNoise generates coherent 2D noise for the nutrient field.
type GradientNoise struct {
	perm [512]uint8
}

// NewGradientNoise creates a generator with a seeded permutation table.
func NewGradientNoise(seed int64) *GradientNoise {
	n := &GradientNoise{}
	rng := rand.New(rand.NewSource(seed))

	var table [256]uint8
	for i := range table {
		table[i] = uint8(i)
	}
	rng.Shuffle(len(table), func(i, j int) {
		table[i], table[j] = table[j], table[i]
	})
	copy(n.perm[:256], table[:])
	copy(n.perm[256:], table[:])
	return n
}

// Noise2D returns a value in roughly [-1, 1] for the given point.
func (n *GradientNoise) Noise2D(x, y float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := smooth(xf)
	v := smooth(yf)

	aa := n.perm[int(n.perm[xi])+yi]
	ab := n.perm[int(n.perm[xi])+yi+1]
	ba := n.perm[int(n.perm[xi+1])+yi]
	bb := n.perm[int(n.perm[xi+1])+yi+1]

	x1 := mix(gradient2D(aa, xf, yf), gradient2D(ba, xf-1, yf), u)
	x2 := mix(gradient2D(ab, xf, yf-1), gradient2D(bb, xf-1, yf-1), u)
	return mix(x1, x2, v)
}

// Fractal2D sums octaves of Noise2D with halving amplitude, normalized
// back to roughly [-1, 1].
func (n *GradientNoise) Fractal2D(x, y float64, octaves int) float64 {
	var sum, amp, norm float64
	amp = 1
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += n.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func smooth(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(a, b, t float64) float64 {
	return a + t*(b-a)
}

func gradient2D(hash uint8, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}
