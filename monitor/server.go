// Package monitor exposes a booted Kernel's live state over HTTP: JSON
// snapshots of the process table, heap, and run queues, a websocket
// stream of scheduling/IPC events, and Prometheus metrics. It has no
// counterpart in the original kernel — the original has no remote
// observability surface at all — so it is grounded on the teacher's
// general "one small file per concern under its own package" layout
// rather than on any single teacher file.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grasskernel/kernel"
	"grasskernel/logging"
	"grasskernel/proc"
)

// Server exposes a Kernel's live state over HTTP.
type Server struct {
	k        *kernel.Kernel
	router   chi.Router
	upgrader websocket.Upgrader

	switches prometheus.Counter
	sends    prometheus.Counter

	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

// New wires a Server against k, installing k.Emulator().OnSwitch and
// k.OnIPCSend hooks to drive both the /events stream and the Prometheus
// counters. Only one observer may hold these hooks at a time, so New
// must run before Kernel.Boot.
func New(k *kernel.Kernel) *Server {
	s := &Server{
		k:        k,
		subs:     make(map[chan []byte]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		switches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grasskernel_context_switches_total",
			Help: "Total number of context switches performed by the scheduler.",
		}),
		sends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grasskernel_ipc_sends_total",
			Help: "Total number of sys_send calls observed.",
		}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(s.switches, s.sends, newKernelCollector(k))

	k.Emulator().OnSwitch = s.onSwitch
	k.OnIPCSend = s.onSend

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/procs", s.handleProcs)
	r.Get("/heap", s.handleHeap)
	r.Get("/queues", s.handleQueues)
	r.Get("/events", s.handleEvents)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// ListenAndServe blocks serving the monitor's routes on addr.
func (s *Server) ListenAndServe(addr string) error {
	logging.Info("monitor listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) onSwitch(pid int) {
	s.switches.Inc()
	s.broadcast(map[string]any{"type": "switch", "pid": pid})
}

func (s *Server) onSend(sender, receiver int) {
	s.sends.Inc()
	s.broadcast(map[string]any{"type": "send", "sender": sender, "receiver": receiver})
}

func (s *Server) broadcast(event map[string]any) {
	body, err := json.Marshal(event)
	if err != nil {
		logging.Warn("monitor: failed to encode event", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- body:
		default:
			logging.Warn("monitor: dropping event for slow subscriber")
		}
	}
}

type procView struct {
	PID         int    `json:"pid"`
	SenderQLen  int    `json:"sender_q_len"`
	MsgWaiting  bool   `json:"msg_waiting"`
	LastSyscall string `json:"last_syscall"`
}

func (s *Server) handleProcs(w http.ResponseWriter, r *http.Request) {
	views := make([]procView, 0, s.k.State.ProcSet.Len())
	s.k.State.ProcSet.Iterate(func(p *proc.PCB) {
		views = append(views, procView{
			PID:         p.PID,
			SenderQLen:  p.SenderQ.Length(),
			MsgWaiting:  p.MsgWaitQ.Length() > 0,
			LastSyscall: p.Syscall.Type.String(),
		})
	})
	writeJSON(w, views)
}

func (s *Server) handleHeap(w http.ResponseWriter, r *http.Request) {
	free := s.k.Heap.FreeBytes()
	writeJSON(w, map[string]any{
		"window_bytes":     s.k.Heap.WindowSize(),
		"free_bytes":       free,
		"free_bytes_human": humanize.Bytes(uint64(free)),
		"free_list_length": s.k.Heap.FreeListLength(),
	})
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"run_q_depth":   s.k.State.Scheduler.RunQ.Length(),
		"ready_q_depth": s.k.State.Scheduler.ReadyQ.Length(),
	})
}

// handleEvents upgrades the connection to a websocket and streams every
// scheduling/IPC event as a JSON text message until the client
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("monitor: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := make(chan []byte, 16)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	for body := range ch {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("monitor: failed to write json response", "error", err)
	}
}
