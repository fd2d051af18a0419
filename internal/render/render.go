package render

import (
	"sync"

	"github.com/annel0/blockverse/internal/vec"
	"github.com/annel0/blockverse/internal/world/block"
)

// Handle идентифицирует отрисовываемый объект у внешнего рендерера
type Handle uint64

// Renderer создаёт и удаляет отрисовываемые блоки
type Renderer interface {
	AddDrawable(pos vec.Vec3, id block.ID) Handle
	RemoveDrawable(h Handle)
}

// Aim результат луча прицела: блок, его вид и нормаль грани попадания
type Aim struct {
	Pos    vec.Vec3
	Kind   block.ID
	Normal vec.Vec3
}

// Aimer отвечает на запрос прицела. false — луч ни во что не попал.
type Aimer interface {
	QueryAim() (Aim, bool)
}

// Drawable запись о созданном объекте
type Drawable struct {
	Pos  vec.Vec3
	Kind block.ID
}

// Recorder хранит отрисовываемые объекты в памяти.
// Используется в тестах и в headless-сервере.
type Recorder struct {
	mu      sync.RWMutex
	next    Handle
	live    map[Handle]Drawable
	added   int
	removed int
}

// NewRecorder создаёт пустой Recorder
func NewRecorder() *Recorder {
	return &Recorder{live: make(map[Handle]Drawable)}
}

// AddDrawable регистрирует блок и возвращает его дескриптор
func (r *Recorder) AddDrawable(pos vec.Vec3, id block.ID) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	r.live[r.next] = Drawable{Pos: pos, Kind: id}
	r.added++
	return r.next
}

// RemoveDrawable удаляет объект; неизвестный дескриптор игнорируется
func (r *Recorder) RemoveDrawable(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.live[h]; ok {
		delete(r.live, h)
		r.removed++
	}
}

// Len возвращает количество живых объектов
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

// Totals возвращает общее количество созданных и удалённых объектов
func (r *Recorder) Totals() (added, removed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.added, r.removed
}

// At возвращает живой объект в позиции pos
func (r *Recorder) At(pos vec.Vec3) (Drawable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.live {
		if d.Pos == pos {
			return d, true
		}
	}
	return Drawable{}, false
}

// InChunk считает живые объекты в чанке
func (r *Recorder) InChunk(coords vec.Vec2) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, d := range r.live {
		if d.Pos.ToChunkCoords() == coords {
			n++
		}
	}
	return n
}

// StaticAim возвращает заранее заданный результат прицела
type StaticAim struct {
	mu  sync.Mutex
	aim Aim
	hit bool
}

// Set задаёт результат прицела
func (s *StaticAim) Set(aim Aim) {
	s.mu.Lock()
	s.aim, s.hit = aim, true
	s.mu.Unlock()
}

// Clear сбрасывает прицел: луч ни во что не попадает
func (s *StaticAim) Clear() {
	s.mu.Lock()
	s.hit = false
	s.mu.Unlock()
}

// QueryAim реализует Aimer
func (s *StaticAim) QueryAim() (Aim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aim, s.hit
}
