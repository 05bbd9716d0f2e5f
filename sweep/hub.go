package sweep

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"heatopt/model"
)

// Listener is told about every trial as the driver works through the radii.
// Calls happen on the driver's goroutine, in trial order.
type Listener interface {
	TrialStarted(index int, radius float64)
	TrialFinished(result model.TrialResult)
}

// Hub fans progress out to any number of listeners.
type Hub struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewHub(ls ...Listener) *Hub {
	return &Hub{listeners: ls}
}

func (h *Hub) Add(l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, l)
}

func (h *Hub) TrialStarted(index int, radius float64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, l := range h.listeners {
		l.TrialStarted(index, radius)
	}
}

func (h *Hub) TrialFinished(result model.TrialResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, l := range h.listeners {
		l.TrialFinished(result)
	}
}

// ChanListener forwards finished trials to a channel. The channel should be
// buffered for the whole sweep or drained concurrently, otherwise the driver
// blocks.
type ChanListener struct {
	Results chan model.TrialResult
}

func NewChanListener(size int) *ChanListener {
	return &ChanListener{Results: make(chan model.TrialResult, size)}
}

func (c *ChanListener) TrialStarted(int, float64) {}

func (c *ChanListener) TrialFinished(r model.TrialResult) {
	c.Results <- r
}

// 结束推送
func (c *ChanListener) Close() {
	close(c.Results)
}

// LogListener logs each trial the way a terminal run reports progress.
type LogListener struct {
	Total int
}

func (l LogListener) TrialStarted(index int, radius float64) {
	log.WithFields(log.Fields{
		"trial":  index + 1,
		"of":     l.Total,
		"radius": radius,
	}).Info("trial started")
}

func (l LogListener) TrialFinished(r model.TrialResult) {
	log.WithFields(log.Fields{
		"trial":   r.Index + 1,
		"radius":  r.Radius,
		"mean":    r.MeanTemperature,
		"min":     r.Min,
		"max":     r.Max,
		"nodes":   r.Nodes,
		"elapsed": r.Duration,
	}).Info("trial finished")
}
