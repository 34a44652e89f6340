package fluid

import (
	"runtime"
	"sync"
)

// MaxWorkers caps the pool size.
const MaxWorkers = 64

// Kernel processes interior rows [y0, y1] (inclusive) of one band.
type Kernel func(band, y0, y1 int)

// band is a contiguous range of interior rows owned by one worker.
type band struct {
	y0, y1 int
}

// workChunk binds a kernel to one band.
type workChunk struct {
	band   int
	y0, y1 int
	kernel Kernel
}

// Pool runs kernels over horizontal row bands on persistent worker goroutines.
// Each Run is a fork/join: every band is dispatched, then Run blocks until all
// of them have reported back. Phases therefore never overlap.
type Pool struct {
	numWorkers int
	bands      []band

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewPool starts workers goroutines partitioning rows interior rows.
// workers <= 0 uses GOMAXPROCS; the count is capped at MaxWorkers.
func NewPool(workers, rows int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	p := &Pool{numWorkers: workers}
	p.partition(rows)

	if workers > 1 {
		p.workChan = make(chan workChunk, workers)
		p.doneChan = make(chan struct{}, workers)
		p.stopChan = make(chan struct{})
		p.running = true
		for i := 0; i < workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	}
	return p
}

// partition splits rows [1, rows] into at most numWorkers bands whose sizes
// differ by at most one row.
func (p *Pool) partition(rows int) {
	n := p.numWorkers
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	p.bands = p.bands[:0]
	base, extra := rows/n, rows%n
	y := 1
	for i := 0; i < n; i++ {
		size := base
		if i < extra {
			size++
		}
		p.bands = append(p.bands, band{y0: y, y1: y + size - 1})
		y += size
	}
}

// Resize repartitions for a new row count. Must not be called while Run is in flight.
func (p *Pool) Resize(rows int) {
	p.partition(rows)
}

// Workers returns the number of goroutines in the pool.
func (p *Pool) Workers() int { return p.numWorkers }

// Bands returns the number of row bands.
func (p *Pool) Bands() int { return len(p.bands) }

// Band returns the inclusive row range of band i.
func (p *Pool) Band(i int) (y0, y1 int) {
	b := p.bands[i]
	return b.y0, b.y1
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk := <-p.workChan:
			chunk.kernel(chunk.band, chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// Run dispatches kernel to every band and waits for all of them.
func (p *Pool) Run(kernel Kernel) {
	if !p.running || len(p.bands) == 1 {
		for i, b := range p.bands {
			kernel(i, b.y0, b.y1)
		}
		return
	}

	for i, b := range p.bands {
		p.workChan <- workChunk{band: i, y0: b.y0, y1: b.y1, kernel: kernel}
	}
	for range p.bands {
		<-p.doneChan
	}
}

// Close signals all workers to exit and waits for them.
func (p *Pool) Close() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	p.running = false
}
