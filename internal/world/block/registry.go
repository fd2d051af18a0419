package block

import (
	"fmt"
	"sort"
	"strings"
)

// ID представляет идентификатор вида блока или ресурса инвентаря
type ID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirID    ID = iota // 0 — отсутствие блока
	GrassID            // 1
	DirtID             // 2
	StoneID            // 3
	WoodID             // 4
	SandID             // 5
	WaterID            // 6
	LeavesID           // 7
	PlanksID           // 8

	// Руды (начиная с 100)
	CoalOreID ID = 100
	IronOreID ID = 101

	// Предметы, которые нельзя поставить в мир (начиная с 300)
	StickID ID = 300
	TorchID ID = 301
)

// Properties описывает неизменяемые свойства вида блока
type Properties struct {
	Name      string // Имя в конфигурации, рецептах и HUD
	Solid     bool   // Препятствует движению
	Hardness  int    // Стоимость добычи
	Placeable bool   // Можно ли поставить в мир
}

// Таблица заполняется один раз и дальше только читается
var properties = map[ID]Properties{
	AirID:     {Name: "air"},
	GrassID:   {Name: "grass", Solid: true, Hardness: 1, Placeable: true},
	DirtID:    {Name: "dirt", Solid: true, Hardness: 1, Placeable: true},
	StoneID:   {Name: "stone", Solid: true, Hardness: 4, Placeable: true},
	WoodID:    {Name: "wood", Solid: true, Hardness: 2, Placeable: true},
	SandID:    {Name: "sand", Solid: true, Hardness: 1, Placeable: true},
	WaterID:   {Name: "water", Hardness: 0, Placeable: true},
	LeavesID:  {Name: "leaves", Hardness: 1, Placeable: true},
	PlanksID:  {Name: "planks", Solid: true, Hardness: 2, Placeable: true},
	CoalOreID: {Name: "coal_ore", Solid: true, Hardness: 5, Placeable: true},
	IronOreID: {Name: "iron_ore", Solid: true, Hardness: 6, Placeable: true},
	StickID:   {Name: "stick"},
	TorchID:   {Name: "torch"},
}

var byName = func() map[string]ID {
	m := make(map[string]ID, len(properties))
	for id, p := range properties {
		m[p.Name] = id
	}
	return m
}()

// Get возвращает свойства для указанного ID
func Get(id ID) (Properties, bool) {
	p, ok := properties[id]
	return p, ok
}

// IsValid проверяет, является ли ID допустимым идентификатором
func IsValid(id ID) bool {
	_, ok := properties[id]
	return ok
}

// IsSolid возвращает true, если блок препятствует движению.
// Воздух, вода и листва проходимы; неизвестные ID считаются проходимыми.
func IsSolid(id ID) bool {
	return properties[id].Solid
}

// IsPlaceable возвращает true, если ресурс можно поставить в мир
func IsPlaceable(id ID) bool {
	return properties[id].Placeable
}

// Hardness возвращает стоимость добычи блока
func Hardness(id ID) int {
	return properties[id].Hardness
}

// ParseName возвращает ID по имени ("wood", "coal_ore", ...)
func ParseName(name string) (ID, bool) {
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// All возвращает все известные ID в порядке возрастания
func All() []ID {
	ids := make([]ID, 0, len(properties))
	for id := range properties {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// String возвращает имя блока
func (id ID) String() string {
	if p, ok := properties[id]; ok {
		return p.Name
	}
	return fmt.Sprintf("unknown(%d)", uint16(id))
}

// MarshalText позволяет использовать ID как ключ карт в YAML/JSON
func (id ID) MarshalText() ([]byte, error) {
	if !IsValid(id) {
		return nil, fmt.Errorf("неизвестный ID блока: %d", uint16(id))
	}
	return []byte(properties[id].Name), nil
}

// UnmarshalText разбирает имя блока
func (id *ID) UnmarshalText(text []byte) error {
	parsed, ok := ParseName(string(text))
	if !ok {
		return fmt.Errorf("неизвестный блок %q", string(text))
	}
	*id = parsed
	return nil
}
