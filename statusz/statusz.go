// Package statusz serves a plain-text page describing the render in
// progress.
package statusz

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

type Handler struct {
	now func() time.Time

	lock      sync.Mutex
	scene     string
	started   time.Time
	rowsDone  int
	rowsTotal int
	finished  bool
}

func New() *Handler {
	return &Handler{now: time.Now}
}

// Begin records the start of a render of the named scene.
func (h *Handler) Begin(scene string, rowsTotal int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.scene = scene
	h.started = h.now()
	h.rowsDone = 0
	h.rowsTotal = rowsTotal
	h.finished = false
}

// Progress has the signature of render.ProgressFunction.
func (h *Handler) Progress(rowsDone, rowsTotal int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.rowsDone = rowsDone
	h.rowsTotal = rowsTotal
}

func (h *Handler) Finish() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.finished = true
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.lock.Lock()
	defer h.lock.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if h.started.IsZero() {
		fmt.Fprintf(w, "state: idle\n")
		return
	}

	state := "rendering"
	if h.finished {
		state = "done"
	}

	fmt.Fprintf(w, "state: %s\n", state)
	fmt.Fprintf(w, "scene: %s\n", h.scene)
	fmt.Fprintf(w, "rows: %d/%d\n", h.rowsDone, h.rowsTotal)
	fmt.Fprintf(w, "elapsed: %v\n", h.now().Sub(h.started).Round(time.Millisecond))
}
