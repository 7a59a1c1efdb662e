package collision

type projectileEntry struct {
	handle Handle
	actor  *Projectile
}

type receiverEntry struct {
	handle Handle
	actor  *Receiver
}

// Registry holds the actors that take part in collision. It is not safe
// for concurrent use; mutate it between ticks from the simulation goroutine.
type Registry struct {
	next Handle

	projectiles []projectileEntry
	projIndex   map[Handle]int
	projByPtr   map[*Projectile]Handle

	receivers []receiverEntry
	recvIndex map[Handle]int
	recvByPtr map[*Receiver]Handle
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		projIndex: make(map[Handle]int),
		projByPtr: make(map[*Projectile]Handle),
		recvIndex: make(map[Handle]int),
		recvByPtr: make(map[*Receiver]Handle),
	}
}

func (r *Registry) issue() Handle {
	r.next++
	if r.next == 0 {
		r.next = 1
	}
	return r.next
}

// AddProjectile registers p and returns its handle. Registering the same
// pointer twice returns the existing handle and ErrAlreadyRegistered.
func (r *Registry) AddProjectile(p *Projectile) (Handle, error) {
	if p == nil {
		return 0, ErrNilActor
	}
	if h, ok := r.projByPtr[p]; ok {
		return h, ErrAlreadyRegistered
	}
	h := r.issue()
	r.projIndex[h] = len(r.projectiles)
	r.projectiles = append(r.projectiles, projectileEntry{handle: h, actor: p})
	r.projByPtr[p] = h
	return h, nil
}

// RemoveProjectile unregisters h. Unknown handles return false.
func (r *Registry) RemoveProjectile(h Handle) bool {
	i, ok := r.projIndex[h]
	if !ok {
		return false
	}
	last := len(r.projectiles) - 1
	delete(r.projByPtr, r.projectiles[i].actor)
	if i != last {
		r.projectiles[i] = r.projectiles[last]
		r.projIndex[r.projectiles[i].handle] = i
	}
	r.projectiles[last] = projectileEntry{}
	r.projectiles = r.projectiles[:last]
	delete(r.projIndex, h)
	return true
}

// AddReceiver registers rc and returns its handle. Registering the same
// pointer twice returns the existing handle and ErrAlreadyRegistered.
func (r *Registry) AddReceiver(rc *Receiver) (Handle, error) {
	if rc == nil {
		return 0, ErrNilActor
	}
	if h, ok := r.recvByPtr[rc]; ok {
		return h, ErrAlreadyRegistered
	}
	h := r.issue()
	r.recvIndex[h] = len(r.receivers)
	r.receivers = append(r.receivers, receiverEntry{handle: h, actor: rc})
	r.recvByPtr[rc] = h
	return h, nil
}

// RemoveReceiver unregisters h. Unknown handles return false.
func (r *Registry) RemoveReceiver(h Handle) bool {
	i, ok := r.recvIndex[h]
	if !ok {
		return false
	}
	last := len(r.receivers) - 1
	delete(r.recvByPtr, r.receivers[i].actor)
	if i != last {
		r.receivers[i] = r.receivers[last]
		r.recvIndex[r.receivers[i].handle] = i
	}
	r.receivers[last] = receiverEntry{}
	r.receivers = r.receivers[:last]
	delete(r.recvIndex, h)
	return true
}

// Projectile returns the actor registered under h.
func (r *Registry) Projectile(h Handle) (*Projectile, bool) {
	i, ok := r.projIndex[h]
	if !ok {
		return nil, false
	}
	return r.projectiles[i].actor, true
}

// Receiver returns the actor registered under h.
func (r *Registry) Receiver(h Handle) (*Receiver, bool) {
	i, ok := r.recvIndex[h]
	if !ok {
		return nil, false
	}
	return r.receivers[i].actor, true
}

// HasReceiver reports whether h is a registered receiver.
func (r *Registry) HasReceiver(h Handle) bool {
	_, ok := r.recvIndex[h]
	return ok
}

// ProjectileCount returns the number of registered projectiles
func (r *Registry) ProjectileCount() int { return len(r.projectiles) }

// ReceiverCount returns the number of registered receivers
func (r *Registry) ReceiverCount() int { return len(r.receivers) }

// QueryReceiversCompatibleWith returns the handles of every receiver whose
// tags share a category with tags, in registry order.
func (r *Registry) QueryReceiversCompatibleWith(tags TagSet) []Handle {
	var out []Handle
	for _, e := range r.receivers {
		if Compatible(e.actor.Tags, tags) {
			out = append(out, e.handle)
		}
	}
	return out
}

// EachProjectile calls fn for every projectile in registry order until fn
// returns false.
func (r *Registry) EachProjectile(fn func(Handle, *Projectile) bool) {
	for _, e := range r.projectiles {
		if !fn(e.handle, e.actor) {
			return
		}
	}
}

// EachReceiver calls fn for every receiver in registry order until fn
// returns false.
func (r *Registry) EachReceiver(fn func(Handle, *Receiver) bool) {
	for _, e := range r.receivers {
		if !fn(e.handle, e.actor) {
			return
		}
	}
}
