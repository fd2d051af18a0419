package world

import (
	"math"

	"github.com/annel0/blockverse/internal/util"
)

// Соли разделяют независимые случайные потоки одного сида
const (
	saltLowOctave  uint64 = 0x6c6f77
	saltHighOctave uint64 = 0x686967
	saltOre        uint64 = 0x6f7265
	saltOreKind    uint64 = 0x6b696e
	saltTree       uint64 = 0x747265
)

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

func hash3(seed int64, x, y, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uy := uint64(uint32(int32(y)))
	uz := uint64(uint32(int32(z)))
	v := uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uy * 0xc2b2ae3d27d4eb4f) ^ (uz * 0xbf58476d1ce4e5b9)
	return mix64(v)
}

// unitFloat отображает хеш в [0, 1)
func unitFloat(h uint64) float64 {
	return float64(h>>11) / (1 << 53)
}

func salted(seed int64, salt uint64) int64 {
	return int64(mix64(uint64(seed) ^ salt))
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// HeightSource вычисляет высоту поверхности (до округления и ограничения)
type HeightSource interface {
	Elevation(x, z int) float64
}

// octave описывает октаву шума: частота и амплитуда
type octave struct {
	frequency float64
	amplitude float64
}

var (
	lowOctave  = octave{frequency: 0.05, amplitude: 8}
	highOctave = octave{frequency: 0.1, amplitude: 3}
)

// valueNoise решётка случайных значений в [-1, 1), сглаженная билинейной
// интерполяцией с весами smoothstep
type valueNoise struct {
	baseline float64
	lowSeed  int64
	highSeed int64
}

func newValueNoise(seed int64, baseline float64) *valueNoise {
	return &valueNoise{
		baseline: baseline,
		lowSeed:  salted(seed, saltLowOctave),
		highSeed: salted(seed, saltHighOctave),
	}
}

func (n *valueNoise) lattice(seed int64, x, z int) float64 {
	return unitFloat(hash2(seed, x, z))*2 - 1
}

func (n *valueNoise) sample(seed int64, fx, fz float64) float64 {
	x0 := math.Floor(fx)
	z0 := math.Floor(fz)
	u := smoothstep(fx - x0)
	v := smoothstep(fz - z0)
	ix, iz := int(x0), int(z0)

	n00 := n.lattice(seed, ix, iz)
	n10 := n.lattice(seed, ix+1, iz)
	n01 := n.lattice(seed, ix, iz+1)
	n11 := n.lattice(seed, ix+1, iz+1)

	top := n00 + u*(n10-n00)
	bottom := n01 + u*(n11-n01)
	return top + v*(bottom-top)
}

func (n *valueNoise) Elevation(x, z int) float64 {
	fx, fz := float64(x), float64(z)
	return n.baseline +
		n.sample(n.lowSeed, fx*lowOctave.frequency, fz*lowOctave.frequency)*lowOctave.amplitude +
		n.sample(n.highSeed, fx*highOctave.frequency, fz*highOctave.frequency)*highOctave.amplitude
}

// perlinNoise альтернативный источник высот на шуме Перлина с теми же октавами
type perlinNoise struct {
	baseline float64
	low      *util.Perlin
	high     *util.Perlin
}

func newPerlinNoise(seed int64, baseline float64) *perlinNoise {
	return &perlinNoise{
		baseline: baseline,
		low:      util.NewPerlin(salted(seed, saltLowOctave)),
		high:     util.NewPerlin(salted(seed, saltHighOctave)),
	}
}

func (n *perlinNoise) Elevation(x, z int) float64 {
	fx, fz := float64(x), float64(z)
	return n.baseline +
		n.low.Noise2D(fx*lowOctave.frequency, fz*lowOctave.frequency)*lowOctave.amplitude +
		n.high.Noise2D(fx*highOctave.frequency, fz*highOctave.frequency)*highOctave.amplitude
}
