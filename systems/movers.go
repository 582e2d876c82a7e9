package systems

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrKernelUnavailable is returned when the parallel movement kernel cannot
// be constructed on this host. Movement falls back to the serial kernel.
var ErrKernelUnavailable = eris.New("parallel movement kernel unavailable")

// Mover advances one tick of movement for a batch of boids. Step fills
// intents[i] from StepBoid(i) for every boid; the caller applies the
// intents afterwards, so all reads within the batch see tick N-1 state.
//
// A Step error is a dispatch failure: the batch must be considered
// unusable and the caller should retry with another strategy.
type Mover interface {
	Name() string
	Step(boids []Boid, intents []Intent, p FlockParams) error
}

// SerialMover is the portable fallback: a plain sequential loop over the
// same per-boid rule the parallel kernel runs.
type SerialMover struct{}

func (SerialMover) Name() string { return "serial" }

func (SerialMover) Step(boids []Boid, intents []Intent, p FlockParams) error {
	for i := range boids {
		intents[i] = StepBoid(i, boids, p)
	}
	return nil
}

// parallelThreshold is the minimum boid count to dispatch to workers.
// Below this, the chunk overhead outweighs the parallelism.
const parallelThreshold = 64

// workChunk is a range of boids for one worker.
type workChunk struct {
	start, end int
	boids      []Boid
	intents    []Intent
	params     FlockParams
}

// ParallelMover fans the per-boid rule out across a pool of persistent
// workers. Each worker owns a disjoint intent range, so no synchronization
// is needed between units; Step blocks until every chunk has completed, so
// nothing observes tick-N state before the writeback.
type ParallelMover struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan error
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewParallelMover builds the worker-pool kernel. It fails with
// ErrKernelUnavailable when the host offers no parallelism worth
// dispatching to.
func NewParallelMover(workers int) (*ParallelMover, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 2 {
		return nil, ErrKernelUnavailable
	}
	return &ParallelMover{numWorkers: workers}, nil
}

func (m *ParallelMover) Name() string { return "parallel" }

// Workers returns the pool size.
func (m *ParallelMover) Workers() int { return m.numWorkers }

func (m *ParallelMover) start() {
	if m.running {
		return
	}
	m.workChan = make(chan workChunk, m.numWorkers)
	m.doneChan = make(chan error, m.numWorkers)
	m.stopChan = make(chan struct{})
	m.running = true

	for i := 0; i < m.numWorkers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (m *ParallelMover) Stop() {
	if !m.running {
		return
	}
	close(m.stopChan)
	m.wg.Wait()
	close(m.workChan)
	close(m.doneChan)
	m.running = false
}

func (m *ParallelMover) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopChan:
			return
		case chunk, ok := <-m.workChan:
			if !ok {
				return
			}
			m.doneChan <- runChunk(chunk)
		}
	}
}

// runChunk executes one chunk, converting a worker panic into a dispatch
// error instead of killing the tick loop.
func runChunk(c workChunk) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.New(fmt.Sprintf("movement kernel panic: %v", r))
		}
	}()
	for i := c.start; i < c.end; i++ {
		c.intents[i] = StepBoid(i, c.boids, c.params)
	}
	return nil
}

// Step dispatches the batch across the pool and waits for completion.
// Small batches are computed inline.
func (m *ParallelMover) Step(boids []Boid, intents []Intent, p FlockParams) error {
	n := len(boids)
	if n == 0 {
		return nil
	}
	if n < parallelThreshold {
		return runChunk(workChunk{start: 0, end: n, boids: boids, intents: intents, params: p})
	}

	m.start()

	chunkSize := (n + m.numWorkers - 1) / m.numWorkers
	dispatched := 0
	for w := 0; w < m.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		m.workChan <- workChunk{start: start, end: end, boids: boids, intents: intents, params: p}
		dispatched++
	}

	var firstErr error
	for i := 0; i < dispatched; i++ {
		if err := <-m.doneChan; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
