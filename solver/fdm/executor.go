package fdm

import (
	"sync"
)

// task covers rows [start, end) of one colour.
type task struct {
	start int
	end   int
	color int
}

// executor fans row bands of one relaxation half-sweep out to a fixed set of
// workers and collects the largest update.
type executor struct {
	workers int
	omega   float64
	g       *grid

	dispatchChan chan task
	doneChan     chan float64
	wg           sync.WaitGroup
}

func newExecutor(g *grid, workers int, omega float64) *executor {
	if workers < 1 {
		workers = 1
	}
	// a band narrower than two rows is not worth a goroutine hop
	if limit := g.n / 2; workers > limit && limit > 0 {
		workers = limit
	}
	return &executor{
		workers:      workers,
		omega:        omega,
		g:            g,
		dispatchChan: make(chan task, workers),
		doneChan:     make(chan float64, workers),
	}
}

func (e *executor) run() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for t := range e.dispatchChan {
				e.doneChan <- e.g.relaxRows(t.start, t.end, t.color, e.omega)
			}
		}()
	}
}

// dispatchTask runs one colour over all rows and blocks until every band is
// back.
func (e *executor) dispatchTask(color int) float64 {
	total := e.g.n
	taskLen, remainder := total/e.workers, total%e.workers

	tasks := 0
	start := 0
	for w := 0; w < e.workers && start < total; w++ {
		end := start + taskLen
		if w < remainder {
			end++
		}
		if end > start {
			e.dispatchChan <- task{start: start, end: end, color: color}
			tasks++
		}
		start = end
	}

	var maxDelta float64
	for i := 0; i < tasks; i++ {
		if d := <-e.doneChan; d > maxDelta {
			maxDelta = d
		}
	}
	return maxDelta
}

// sweep performs a full red-black iteration.
func (e *executor) sweep() float64 {
	d0 := e.dispatchTask(0)
	d1 := e.dispatchTask(1)
	if d1 > d0 {
		return d1
	}
	return d0
}

func (e *executor) stop() {
	close(e.dispatchChan)
	e.wg.Wait()
}
