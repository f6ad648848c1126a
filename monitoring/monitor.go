// Package monitoring turns a running world into a small HTTP server that can
// pause the scheduler and report what it is doing.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/tracing"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Engine is the part of a scheduler the monitor controls.
type Engine interface {
	sched.TimeTeller

	Pause()
	Continue()
	IsPaused() bool
	Pending() []sched.ScheduledEntry
}

// CreatureLister gives the monitor access to the creatures of the world.
type CreatureLister interface {
	All() []creature.Entity
	FindCreature(id uint32) (creature.Entity, bool)
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine        Engine
	creatures     CreatureLister
	kindStats     *tracing.KindCountTracer
	lifetime      *tracing.AverageTimeTracer
	portNumber    int
	openInBrowser bool

	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor page in a browser.
func (m *Monitor) WithBrowser() *Monitor {
	m.openInBrowser = true
	return m
}

// RegisterEngine registers the scheduler that drives the world.
func (m *Monitor) RegisterEngine(e Engine) {
	m.engine = e
}

// RegisterCreatures registers where creatures can be looked up.
func (m *Monitor) RegisterCreatures(c CreatureLister) {
	m.creatures = c
}

// RegisterTracers registers the tracers that back the stats endpoint. Either
// may be nil.
func (m *Monitor) RegisterTracers(
	kindStats *tracing.KindCountTracer,
	lifetime *tracing.AverageTimeTracer,
) {
	m.kindStats = kindStats
	m.lifetime = lifetime
}

// Router returns the handler that serves the monitoring API.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/pending", m.listPending)
	r.HandleFunc("/api/creatures", m.listCreatures)
	r.HandleFunc("/api/creature/{id}", m.creatureDetails)
	r.HandleFunc("/api/creature/{id}/{field}", m.creatureField)
	r.HandleFunc("/api/events/stats", m.eventStats)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://localhost:%d/api/now", port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Router())
		if err != nil {
			log.Printf("monitor stopped: %v", err)
		}
	}()

	if m.openInBrowser {
		if err := browser.OpenURL(url); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return port
}

// StopServer closes the listener opened by StartServer.
func (m *Monitor) StopServer() {
	if m.listener == nil {
		return
	}

	if err := m.listener.Close(); err != nil {
		log.Printf("cannot close monitor: %v", err)
	}

	m.listener = nil
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

type nowRsp struct {
	Now    int64  `json:"now"`
	Human  string `json:"human"`
	Paused bool   `json:"paused"`
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	writeJSON(w, nowRsp{
		Now:    int64(now),
		Human:  now.String(),
		Paused: m.engine.IsPaused(),
	})
}

type pendingRsp struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Requestor uint32 `json:"requestor"`
	FireTime  int64  `json:"fire_time"`
	Sequence  uint64 `json:"sequence"`
}

func (m *Monitor) listPending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	pending := m.engine.Pending()
	if limit > 0 && limit < len(pending) {
		pending = pending[:limit]
	}

	rsp := make([]pendingRsp, 0, len(pending))
	for _, e := range pending {
		rsp = append(rsp, pendingRsp{
			ID:        e.Event.ID(),
			Kind:      sched.KindName(e.Event),
			Requestor: e.Event.RequestorID(),
			FireTime:  int64(e.FireTime),
			Sequence:  e.Sequence,
		})
	}

	writeJSON(w, rsp)
}

type creatureRsp struct {
	ID        uint32 `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Location  string `json:"location"`
	Hitpoints *int   `json:"hitpoints,omitempty"`
}

func (m *Monitor) listCreatures(w http.ResponseWriter, _ *http.Request) {
	all := m.creatures.All()

	rsp := make([]creatureRsp, 0, len(all))
	for _, e := range all {
		c := creatureRsp{
			ID:       e.ID(),
			Name:     e.Name(),
			Kind:     e.Kind().String(),
			Location: e.Location().String(),
		}

		if combatant, ok := e.(*creature.Combatant); ok {
			hp := combatant.Hitpoints()
			c.Hitpoints = &hp
		}

		rsp = append(rsp, c)
	}

	writeJSON(w, rsp)
}

func (m *Monitor) creatureDetails(w http.ResponseWriter, r *http.Request) {
	entity := m.findCreatureOr404(w, r)
	if entity == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(entity)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) creatureField(w http.ResponseWriter, r *http.Request) {
	entity := m.findCreatureOr404(w, r)
	if entity == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(entity)
	serializer.SetMaxDepth(1)

	err := serializer.SetEntryPoint([]string{mux.Vars(r)["field"]})
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findCreatureOr404(
	w http.ResponseWriter,
	r *http.Request,
) creature.Entity {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return nil
	}

	entity, ok := m.creatures.FindCreature(uint32(id))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Creature not found"))
		dieOnErr(err)

		return nil
	}

	return entity
}

type statsRsp struct {
	Kinds           []tracing.KindStats `json:"kinds"`
	Finished        uint64              `json:"finished"`
	AverageLifetime int64               `json:"average_lifetime"`
}

func (m *Monitor) eventStats(w http.ResponseWriter, _ *http.Request) {
	rsp := statsRsp{Kinds: []tracing.KindStats{}}

	if m.kindStats != nil {
		rsp.Kinds = m.kindStats.Stats()
	}

	if m.lifetime != nil {
		rsp.Finished = m.lifetime.TotalCount()
		rsp.AverageLifetime = int64(m.lifetime.AverageTime())
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func queryInt(r *http.Request, name string) (int, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}

	return strconv.Atoi(str)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
