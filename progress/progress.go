// Package progress tracks how far along a render is, for the terminal, the
// logs, and a debug HTTP page.
package progress

import (
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"
)

type Snapshot struct {
	SceneName string

	Collected int
	Total     int

	Elapsed time.Duration

	// Remaining is extrapolated from the rate so far.  Zero until the first
	// sample is in.
	Remaining time.Duration
}

func (s Snapshot) Percent() int {
	if s.Total == 0 {
		return 100
	}
	return 100 * s.Collected / s.Total
}

func (s Snapshot) Done() bool {
	return s.Collected >= s.Total
}

// Tracker accumulates progress reports from the renderer.  Each report updates
// the tracker's state, but the sink is only called as often as the limiter
// allows, plus once more when the render completes.
type Tracker struct {
	lock sync.Mutex

	sceneName string
	start     time.Time
	collected int
	total     int

	sink    func(Snapshot)
	limiter *rate.Limiter

	now func() time.Time
}

// New creates a tracker that passes snapshots to sink at most once per
// interval.  sink may be nil.
func New(sceneName string, sink func(Snapshot), interval time.Duration) *Tracker {
	return &Tracker{
		sceneName: sceneName,
		start:     time.Now(),
		sink:      sink,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		now:       time.Now,
	}
}

// Report has the signature of render.ProgressFunction.
func (t *Tracker) Report(collected, total int) {
	t.lock.Lock()
	t.collected = collected
	t.total = total
	snap := t.snapshotLocked()
	t.lock.Unlock()

	if t.sink == nil {
		return
	}
	if snap.Done() || t.limiter.Allow() {
		t.sink(snap)
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	snap := Snapshot{
		SceneName: t.sceneName,
		Collected: t.collected,
		Total:     t.total,
		Elapsed:   t.now().Sub(t.start),
	}
	if t.collected > 0 && t.total > t.collected {
		perSample := snap.Elapsed / time.Duration(t.collected)
		snap.Remaining = perSample * time.Duration(t.total-t.collected)
	}
	return snap
}

var progressTemplate = template.Must(template.New("progress").Parse(`
<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>Render Progress</title>
  </head>
  <body>
    <h1>Render Progress: {{.SceneName}}</h1>
    <table>
      <tbody>
        <tr><td>Samples</td><td>{{.Collected}}/{{.Total}} ({{.Percent}}%)</td></tr>
        <tr><td>Elapsed</td><td>{{.Elapsed}}</td></tr>
        <tr><td>Remaining</td><td>{{.Remaining}}</td></tr>
      </tbody>
    </table>
  </body>
  <script>setTimeout(function() {location.reload();}, 30000);</script>
</html>
`))

func (t *Tracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := t.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := progressTemplate.Execute(w, snap); err != nil {
		glog.Errorf("Error while rendering progress page: %v", err)
	}
}

// Healthz answers liveness and readiness probes.
type Healthz struct{}

func (h Healthz) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("200 OK"))
}
