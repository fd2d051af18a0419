package entity

// MaxVitals верхняя граница здоровья и сытости
const MaxVitals = 20

// RNG источник случайных чисел в [0, 1)
type RNG interface {
	Float64() float64
}

// VitalsParams вероятности за тик
type VitalsParams struct {
	HungerDecayChance float64 // Сытость -1
	StarveChance      float64 // Здоровье -1 при нулевой сытости
}

// Vitals здоровье и сытость в диапазоне [0, MaxVitals]
type Vitals struct {
	Health int
	Hunger int
}

// FullVitals возвращает полные показатели
func FullVitals() Vitals {
	return Vitals{Health: MaxVitals, Hunger: MaxVitals}
}

// Tick применяет голод за один тик. Возвращает true, если здоровье кончилось.
func (v *Vitals) Tick(rng RNG, p VitalsParams) bool {
	if v.Hunger > 0 && rng.Float64() < p.HungerDecayChance {
		v.Hunger--
	}
	if v.Hunger == 0 && v.Health > 0 && rng.Float64() < p.StarveChance {
		v.Health--
	}
	return v.Health == 0
}

// Damage уменьшает здоровье, не опуская ниже нуля. Возвращает true при смерти.
func (v *Vitals) Damage(n int) bool {
	if n < 0 {
		n = 0
	}
	v.Health -= n
	if v.Health < 0 {
		v.Health = 0
	}
	return v.Health == 0
}

// Reset восстанавливает полные показатели
func (v *Vitals) Reset() {
	*v = FullVitals()
}
