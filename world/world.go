package world

// World is the single simulation authority: a monotonically increasing id
// allocator plus the component store. Ids are never reused while an entity
// is alive; no system destroys entities, so the deleted list stays empty.
// It is persisted anyway so a future reuse scheme can restore it.
type World struct {
	*Store

	nextID  uint32
	deleted []uint32
}

// New returns an empty world.
func New() *World {
	return &World{Store: newStore()}
}

// CreateEntity allocates the next entity id and backs its component slots.
func (w *World) CreateEntity() uint32 {
	id := w.nextID
	w.nextID++
	w.grow(id)
	return id
}

// NextID returns the next id that CreateEntity would hand out.
func (w *World) NextID() uint32 {
	return w.nextID
}

// Live returns all live entity ids in ascending order.
func (w *World) Live() []uint32 {
	ids := make([]uint32, 0, w.nextID)
	for id := uint32(0); id < w.nextID; id++ {
		if !w.isDeleted(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Deleted returns the reusable-id list. Currently always empty.
func (w *World) Deleted() []uint32 {
	return w.deleted
}

func (w *World) isDeleted(id uint32) bool {
	for _, d := range w.deleted {
		if d == id {
			return true
		}
	}
	return false
}
