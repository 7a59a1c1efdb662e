package collision

import "golang.org/x/sync/errgroup"

// minLanesPerTask keeps tiny ticks from paying goroutine overhead per pair.
const minLanesPerTask = 256

// BatchBackend partitions the projectile×receiver cross product into lane
// ranges and evaluates them on a bounded group of goroutines. Test blocks
// until every lane has finished.
type BatchBackend struct {
	workers int
}

// NewBatchBackend returns a batch backend running at most workers lanes
// at once. workers <= 0 uses runtime.GOMAXPROCS.
func NewBatchBackend(workers int) *BatchBackend {
	return &BatchBackend{workers: parallelLanes(workers)}
}

// Name implements Backend
func (b *BatchBackend) Name() string { return "batch" }

// Workers returns the number of parallel lanes
func (b *BatchBackend) Workers() int { return b.workers }

// Test implements Backend
func (b *BatchBackend) Test(fb *FrameBuffers, out *MatchBuffer) {
	np, nr := fb.ProjectileCount, fb.ReceiverCount
	total := np * nr
	if total == 0 {
		return
	}

	chunk := (total + b.workers - 1) / b.workers
	if chunk < minLanesPerTask {
		chunk = minLanesPerTask
	}

	var g errgroup.Group
	g.SetLimit(b.workers)
	for start := 0; start < total; start += chunk {
		end := min(start+chunk, total)
		g.Go(func() error {
			for l := start; l < end; l++ {
				lane(fb, out, l/nr, l%nr)
			}
			return nil
		})
	}
	_ = g.Wait()
}
