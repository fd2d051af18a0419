package util

import (
	"github.com/aquilax/go-perlin"
)

// Perlin оборачивает генератор шума Перлина, привязанный к одному сиду.
// Каждый мир владеет своим экземпляром.
type Perlin struct {
	noise *perlin.Perlin
}

// NewPerlin создаёт генератор шума Перлина с указанным сидом
func NewPerlin(seed int64) *Perlin {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Perlin{noise: perlin.NewPerlin(alpha, beta, n, seed)}
}

// Noise2D возвращает значение шума Перлина в диапазоне от -1 до 1
func (p *Perlin) Noise2D(x, y float64) float64 {
	v := p.noise.Noise2D(x, y)
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
