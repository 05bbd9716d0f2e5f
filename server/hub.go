package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"heatopt/model"
	"heatopt/solver"
	"heatopt/store"
	"heatopt/sweep"
)

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// Hub serves one websocket connection: it reads requests, runs at most one
// sweep at a time and pushes progress back to the client.
type Hub struct {
	conn      jsonWriter
	newSolver func(backend string) (solver.Solver, error)
	store     *store.Store
	metrics   *Metrics

	// request
	msg chan model.Msg
	// response, in the order the client sees them
	replies chan model.Msg
	// closed when the connection goes away
	done chan struct{}

	mu      sync.Mutex
	cfg     model.SweepConfig
	backend string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewHub(conn jsonWriter, cfg model.SweepConfig, backend string) *Hub {
	return &Hub{
		conn:    conn,
		cfg:     cfg.Copy(),
		backend: backend,
		msg:     make(chan model.Msg, 10),
		replies: make(chan model.Msg, 64),
		done:    make(chan struct{}),
	}
}

func (h *Hub) reply(m model.Msg) {
	select {
	case h.replies <- m:
	case <-h.done:
	}
}

func (h *Hub) replyJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.reply(model.Msg{Type: model.MsgError, Content: err.Error()})
		return
	}
	h.reply(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.replies:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Warn("write reply")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			switch msg.Type {
			case model.MsgEnv:
				h.setEnv(msg.Content)
			case model.MsgStart:
				h.start()
			case model.MsgStop:
				h.stop()
			default:
				log.WithField("type", msg.Type).Warn("no such type")
				h.reply(model.Msg{Type: model.MsgError, Content: "no such type: " + msg.Type})
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) setEnv(content string) {
	h.mu.Lock()
	if h.cancel != nil {
		h.mu.Unlock()
		h.reply(model.Msg{Type: model.MsgError, Content: "sweep running, stop it before changing env"})
		return
	}
	err := applyEnv(&h.cfg, &h.backend, content)
	cfg, backend := h.cfg.Copy(), h.backend
	h.mu.Unlock()

	if err != nil {
		h.reply(model.Msg{Type: model.MsgError, Content: err.Error()})
		return
	}
	h.replyJSON(model.MsgEnvSet, struct {
		Solver string            `json:"solver"`
		Config model.SweepConfig `json:"config"`
	}{backend, cfg})
}

func (h *Hub) start() {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}
	if h.cancel != nil {
		h.mu.Unlock()
		h.reply(model.Msg{Type: model.MsgError, Content: "sweep already running"})
		return
	}
	s, err := h.newSolver(h.backend)
	if err != nil {
		h.mu.Unlock()
		h.reply(model.Msg{Type: model.MsgError, Content: err.Error()})
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	cfg := h.cfg.Copy()
	h.wg.Add(1)
	h.mu.Unlock()

	h.replyJSON(model.MsgStarted, struct {
		Solver string    `json:"solver"`
		Radii  []float64 `json:"radii"`
	}{s.Name(), cfg.Radii})

	go func() {
		defer h.wg.Done()
		h.run(ctx, s, cfg)
	}()
}

func (h *Hub) run(ctx context.Context, s solver.Solver, cfg model.SweepConfig) {
	d := sweep.NewDriver(s, h)
	var m *Metrics
	if h.metrics != nil {
		m = h.metrics.For(s.Name())
		d.Hub().Add(m)
	}

	res, err := d.Run(ctx, cfg)

	h.mu.Lock()
	h.cancel()
	h.cancel = nil
	h.mu.Unlock()

	if m != nil {
		m.SweepFinished(res, err)
	}
	if errors.Is(err, context.Canceled) {
		// stop already answered
		return
	}
	if err != nil {
		h.reply(model.Msg{Type: model.MsgError, Content: err.Error()})
		return
	}
	if h.store != nil {
		if err := h.store.SaveRun(context.Background(), res, cfg); err != nil {
			log.WithError(err).WithField("run", res.RunID).Error("save run")
		}
	}
	h.replyJSON(model.MsgDone, res)
}

// stop cancels the running sweep and answers once its goroutine is gone, so
// a start right after "stopped" is accepted.
func (h *Hub) stop() {
	h.mu.Lock()
	running := h.cancel != nil
	if running {
		h.cancel()
	}
	h.mu.Unlock()

	content := "stopped"
	if running {
		h.wg.Wait()
	} else {
		content = "not running"
	}
	h.reply(model.Msg{Type: model.MsgStopped, Content: content})
}

// close cancels a running sweep, ends both loops and waits for the sweep
// goroutine.
func (h *Hub) close() {
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	close(h.done)
	h.mu.Unlock()
	h.wg.Wait()
}

// TrialStarted and TrialFinished let the hub listen to its own driver.
func (h *Hub) TrialStarted(int, float64) {}

func (h *Hub) TrialFinished(r model.TrialResult) {
	h.replyJSON(model.MsgTrial, r)
}
