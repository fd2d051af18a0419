package entity

import (
	"github.com/annel0/blockverse/internal/config"
	"github.com/annel0/blockverse/internal/input"
	"github.com/annel0/blockverse/internal/physics"
	"github.com/annel0/blockverse/internal/render"
	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultHotbar панель быстрого доступа: слоты 1..8
var DefaultHotbar = []block.ID{
	block.GrassID,
	block.DirtID,
	block.StoneID,
	block.WoodID,
	block.SandID,
	block.WaterID,
	block.LeavesID,
	block.PlanksID,
}

// World хранилище блоков с точки зрения игрока
type World interface {
	physics.Occupancy
	Get(pos vec.Vec3) (block.ID, bool)
	Set(pos vec.Vec3, id block.ID) bool
	Remove(pos vec.Vec3) (block.ID, bool)
	InBounds(y int) bool
}

// Drawables получает уведомления об изменениях блоков игроком
type Drawables interface {
	BlockPlaced(pos vec.Vec3, id block.ID)
	BlockRemoved(pos vec.Vec3)
}

// PlayerConfig параметры игрока
type PlayerConfig struct {
	HalfWidth      float64
	Height         float64
	Speed          float64 // Блоков за тик
	JumpVelocity   float64
	Gravity        float64
	FallPenalty    int
	Vitals         VitalsParams
	Hotbar         []block.ID
	StartInventory map[block.ID]int
}

// PlayerConfigFrom собирает параметры игрока из конфигурации приложения
func PlayerConfigFrom(cfg *config.Config) PlayerConfig {
	return PlayerConfig{
		HalfWidth:    cfg.Player.HalfWidth,
		Height:       cfg.Player.Height,
		Speed:        cfg.Player.Speed,
		JumpVelocity: cfg.Player.JumpVelocity,
		Gravity:      cfg.Physics.Gravity,
		FallPenalty:  cfg.Player.FallPenalty,
		Vitals: VitalsParams{
			HungerDecayChance: cfg.Player.HungerDecayChance,
			StarveChance:      cfg.Player.StarveChance,
		},
		Hotbar:         DefaultHotbar,
		StartInventory: cfg.Player.StartInventory,
	}
}

// TickResult события одного тика игрока
type TickResult struct {
	physics.StepResult
	Died bool
}

// Player состояние единственного локального игрока
type Player struct {
	Body      physics.Body
	Vitals    Vitals
	Inventory *Inventory
	Yaw       float64

	cfg      PlayerConfig
	collider *physics.BoxCollider
	recipes  *RecipeBook
	movement input.MovementState
	jump     bool
	slot     int // Индекс в hotbar, с нуля
	spawn    mgl64.Vec3
}

// NewPlayer создаёт игрока в точке spawn
func NewPlayer(cfg PlayerConfig, recipes *RecipeBook, spawn mgl64.Vec3) *Player {
	if len(cfg.Hotbar) == 0 {
		cfg.Hotbar = DefaultHotbar
	}
	if recipes == nil {
		recipes = DefaultRecipes()
	}
	return &Player{
		Body:      physics.Body{Position: spawn},
		Vitals:    FullVitals(),
		Inventory: NewInventory(cfg.StartInventory),
		cfg:       cfg,
		collider:  physics.NewBoxCollider(cfg.HalfWidth, cfg.Height),
		recipes:   recipes,
		spawn:     spawn,
	}
}

// Collider возвращает коллайдер игрока
func (p *Player) Collider() *physics.BoxCollider {
	return p.collider
}

// Spawn возвращает точку возрождения
func (p *Player) Spawn() mgl64.Vec3 {
	return p.spawn
}

// SetSpawn задаёт точку возрождения
func (p *Player) SetSpawn(spawn mgl64.Vec3) {
	p.spawn = spawn
}

// Selected возвращает выбранный вид блока
func (p *Player) Selected() block.ID {
	return p.cfg.Hotbar[p.slot]
}

// SelectSlot выбирает слот 1..N; другие значения игнорируются
func (p *Player) SelectSlot(index int) bool {
	if index < 1 || index > len(p.cfg.Hotbar) {
		return false
	}
	p.slot = index - 1
	return true
}

// ApplyMove учитывает нажатие клавиши движения
func (p *Player) ApplyMove(k input.MoveKey) {
	p.movement.Apply(k)
}

// RequestJump запрашивает прыжок на следующем тике
func (p *Player) RequestJump() {
	p.jump = true
}

// Tick продвигает игрока на один тик: движение, физика, голод
func (p *Player) Tick(world World, rng RNG) TickResult {
	dir := p.movement.Vector(p.Yaw).Mul(p.cfg.Speed)
	p.Body.Velocity[0] = dir.X()
	p.Body.Velocity[2] = dir.Z()

	if p.jump && p.Body.Grounded {
		p.Body.Velocity[1] = p.cfg.JumpVelocity
		p.Body.Grounded = false
	}
	p.jump = false

	res := TickResult{
		StepResult: physics.Step(world, &p.Body, p.collider, physics.Params{Gravity: p.cfg.Gravity}),
	}

	if res.FellOut {
		died := p.Vitals.Damage(p.cfg.FallPenalty)
		p.teleport(p.spawn)
		if died {
			p.Respawn()
			res.Died = true
			return res
		}
	}

	if p.Vitals.Tick(rng, p.cfg.Vitals) {
		p.Respawn()
		res.Died = true
	}
	return res
}

// Respawn восстанавливает показатели и переносит игрока в точку возрождения
func (p *Player) Respawn() {
	p.Vitals.Reset()
	p.teleport(p.spawn)
}

func (p *Player) teleport(pos mgl64.Vec3) {
	p.Body.Position = pos
	p.Body.Velocity = mgl64.Vec3{}
	p.Body.Grounded = false
}

// Place ставит выбранный блок к грани под прицелом.
// Возвращает false, если хотя бы одно условие не выполнено; тогда ничего не меняется.
func (p *Player) Place(world World, drawables Drawables, aim render.Aim) bool {
	held := p.Selected()
	if p.Inventory.Count(held) <= 0 || !block.IsPlaceable(held) {
		return false
	}
	if !aim.Normal.IsUnitAxis() {
		return false
	}

	target := aim.Pos.Add(aim.Normal)
	if !world.InBounds(target.Y) {
		return false
	}
	if _, occupied := world.Get(target); occupied {
		return false
	}
	if p.collider.OverlapsCell(p.Body.Position, target) {
		return false
	}

	if !world.Set(target, held) {
		return false
	}
	p.Inventory.Take(held, 1)
	drawables.BlockPlaced(target, held)
	return true
}

// Break ломает блок под прицелом и кладёт его в инвентарь
func (p *Player) Break(world World, drawables Drawables, aim render.Aim) bool {
	kind, ok := world.Remove(aim.Pos)
	if !ok {
		return false
	}
	p.Inventory.Add(kind, 1)
	drawables.BlockRemoved(aim.Pos)
	return true
}

// Craft применяет рецепт целиком или не меняет ничего
func (p *Player) Craft(recipeID string) bool {
	r, ok := p.recipes.Get(recipeID)
	if !ok {
		return false
	}
	return p.Inventory.Apply(r)
}

// HUD возвращает снимок состояния
func (p *Player) HUD() HUD {
	return HUD{
		Health:    p.Vitals.Health,
		Hunger:    p.Vitals.Hunger,
		Selected:  p.Selected(),
		Slot:      p.slot + 1,
		Hotbar:    append([]block.ID(nil), p.cfg.Hotbar...),
		Inventory: p.Inventory.Snapshot(),
		Position:  p.Body.Position,
		Grounded:  p.Body.Grounded,
	}
}
