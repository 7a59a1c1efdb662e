package collision

// ShapeRecord is one packed projectile shape. Code is +slot for a circle
// and -slot for a segment, where slot is the 1-based projectile slot that
// owns it; 0 marks an unused record.
type ShapeRecord struct {
	Code   int32
	Params [4]float64
}

// ProjectileRecord is one packed projectile. Slot is 1-based; 0 is empty.
type ProjectileRecord struct {
	Slot       int32
	Position   Vec2
	Forward    Vec2
	Right      Vec2
	Scale      float64
	Tags       TagSet
	FirstShape int32
	ShapeCount int32
}

// ReceiverRecord is one packed receiver. Slot is +index for a circle,
// -index for a segment (1-based); 0 is empty.
type ReceiverRecord struct {
	Slot     int32
	Position Vec2
	Forward  Vec2
	Right    Vec2
	Params   [4]float64
	Scale    float64
	Tags     TagSet
	Cap      int32
}

// BuildReport describes what a build kept and dropped.
type BuildReport struct {
	Projectiles        int
	Receivers          int
	DroppedProjectiles int
	DroppedReceivers   int
	DroppedShapes      int
}

// OverCapacity reports whether any actor or shape was left out.
func (r BuildReport) OverCapacity() bool {
	return r.DroppedProjectiles > 0 || r.DroppedReceivers > 0 || r.DroppedShapes > 0
}

// FrameBuffers is the flattened, fixed-capacity view of a registry for one
// tick. It is allocated once per configuration and rebuilt every tick.
type FrameBuffers struct {
	Projectiles []ProjectileRecord
	Shapes      []ShapeRecord
	Receivers   []ReceiverRecord

	ProjectileCount int
	ShapeCount      int
	ReceiverCount   int

	// Per-slot snapshots, indexed by slot-1.
	projectileHandles []Handle
	destroyOnHit      []bool
	receiverHandles   []Handle
	acceptsKills      []bool

	maxShapesPerProjectile int
}

// NewFrameBuffers allocates buffers for the given capacities.
func NewFrameBuffers(maxProjectiles, maxReceivers, maxShapesPerProjectile int) *FrameBuffers {
	return &FrameBuffers{
		Projectiles:            make([]ProjectileRecord, maxProjectiles),
		Shapes:                 make([]ShapeRecord, maxProjectiles*maxShapesPerProjectile),
		Receivers:              make([]ReceiverRecord, maxReceivers),
		projectileHandles:      make([]Handle, maxProjectiles),
		destroyOnHit:           make([]bool, maxProjectiles),
		receiverHandles:        make([]Handle, maxReceivers),
		acceptsKills:           make([]bool, maxReceivers),
		maxShapesPerProjectile: maxShapesPerProjectile,
	}
}

// Build flattens reg into the buffers. Actors beyond capacity are skipped
// in registry order and counted in the report.
func (fb *FrameBuffers) Build(reg *Registry) BuildReport {
	var rep BuildReport
	prevP, prevS, prevR := fb.ProjectileCount, fb.ShapeCount, fb.ReceiverCount

	np, ns := 0, 0
	for _, e := range reg.projectiles {
		if np == len(fb.Projectiles) {
			rep.DroppedProjectiles++
			continue
		}
		p := e.actor
		t := p.Transform.normalized()
		slot := int32(np + 1)
		first := ns
		for k, s := range p.Shapes {
			if k == fb.maxShapesPerProjectile {
				rep.DroppedShapes += len(p.Shapes) - k
				break
			}
			code := slot
			if s.Kind == ShapeSegment {
				code = -slot
			}
			fb.Shapes[ns] = ShapeRecord{Code: code, Params: s.params()}
			ns++
		}
		fb.Projectiles[np] = ProjectileRecord{
			Slot:       slot,
			Position:   t.Position,
			Forward:    t.Forward,
			Right:      t.Right,
			Scale:      t.Scale,
			Tags:       p.Tags,
			FirstShape: int32(first),
			ShapeCount: int32(ns - first),
		}
		fb.projectileHandles[np] = e.handle
		fb.destroyOnHit[np] = p.DestroyOnHit
		np++
	}

	nr := 0
	for _, e := range reg.receivers {
		if nr == len(fb.Receivers) {
			rep.DroppedReceivers++
			continue
		}
		rc := e.actor
		t := rc.Transform.normalized()
		slot := int32(nr + 1)
		if rc.Shape.Kind == ShapeSegment {
			slot = -slot
		}
		limit := rc.MaxCollisionsPerTick
		if limit < 0 {
			limit = 0
		}
		fb.Receivers[nr] = ReceiverRecord{
			Slot:     slot,
			Position: t.Position,
			Forward:  t.Forward,
			Right:    t.Right,
			Params:   rc.Shape.params(),
			Scale:    t.Scale,
			Tags:     rc.Tags,
			Cap:      int32(limit),
		}
		fb.receiverHandles[nr] = e.handle
		fb.acceptsKills[nr] = rc.AcceptsKills
		nr++
	}

	// Clear whatever the previous tick left beyond the new counts.
	for i := np; i < prevP; i++ {
		fb.Projectiles[i] = ProjectileRecord{}
		fb.projectileHandles[i] = 0
		fb.destroyOnHit[i] = false
	}
	for i := ns; i < prevS; i++ {
		fb.Shapes[i] = ShapeRecord{}
	}
	for i := nr; i < prevR; i++ {
		fb.Receivers[i] = ReceiverRecord{}
		fb.receiverHandles[i] = 0
		fb.acceptsKills[i] = false
	}

	fb.ProjectileCount, fb.ShapeCount, fb.ReceiverCount = np, ns, nr
	rep.Projectiles, rep.Receivers = np, nr
	return rep
}

// ProjectileHandle returns the handle snapshotted into a 1-based slot.
func (fb *FrameBuffers) ProjectileHandle(slot int32) Handle {
	i := abs32(slot) - 1
	if i < 0 || int(i) >= fb.ProjectileCount {
		return 0
	}
	return fb.projectileHandles[i]
}

// ReceiverHandle returns the handle snapshotted into a 1-based slot.
func (fb *FrameBuffers) ReceiverHandle(slot int32) Handle {
	i := abs32(slot) - 1
	if i < 0 || int(i) >= fb.ReceiverCount {
		return 0
	}
	return fb.receiverHandles[i]
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
