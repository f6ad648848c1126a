package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fibula-mmo/fibula/creature"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/tracing"
	"github.com/fibula-mmo/fibula/world"
)

type idle struct {
	*sched.EventBase
}

func (idle) Execute(sched.EventContext) error {
	return nil
}

var _ = Describe("Monitor", func() {
	var (
		clock     *sched.ManualClock
		scheduler *sched.SerialScheduler
		registry  *creature.Registry
		kinds     *tracing.KindCountTracer
		m         *Monitor
		handler   http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec
	}

	BeforeEach(func() {
		clock = sched.NewManualClock()
		scheduler = sched.NewSerialScheduler(clock)
		registry = creature.NewRegistry()
		kinds = tracing.NewKindCountTracer()
		tracing.CollectTrace(scheduler, kinds)

		knight := creature.MakeCombatantBuilder().
			WithHitpoints(150).
			Build(creature.NewCreature(1, "knight", creature.KindPlayer,
				world.Location{X: 5, Y: 5, Z: 7}, 150))
		Expect(registry.Add(knight)).To(Succeed())
		Expect(registry.Add(creature.NewCreature(2, "rat", creature.KindMonster,
			world.Location{X: 6, Y: 5, Z: 7}, 90))).To(Succeed())

		m = NewMonitor()
		m.RegisterEngine(scheduler)
		m.RegisterCreatures(registry)
		m.RegisterTracers(kinds, nil)
		handler = m.Router()
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should pause and continue the scheduler", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(scheduler.IsPaused()).To(BeTrue())

		rsp := nowRsp{}
		Expect(json.Unmarshal(get("/api/now").Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Paused).To(BeTrue())

		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
		Expect(scheduler.IsPaused()).To(BeFalse())
	})

	It("should report the current time", func() {
		clock.Advance(3 * time.Second)
		scheduler.Tick()

		rsp := nowRsp{}
		Expect(json.Unmarshal(get("/api/now").Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(Equal(int64(3 * time.Second)))
		Expect(rsp.Human).To(Equal("3s"))
	})

	It("should list pending events in firing order", func() {
		late := idle{sched.NewEventBase(1, true)}
		early := idle{sched.NewEventBase(2, true)}
		_, err := scheduler.Schedule(late, 2*time.Second)
		Expect(err).NotTo(HaveOccurred())
		_, err = scheduler.Schedule(early, time.Second)
		Expect(err).NotTo(HaveOccurred())

		var rsp []pendingRsp
		Expect(json.Unmarshal(get("/api/pending").Body.Bytes(), &rsp)).
			To(Succeed())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].ID).To(Equal(early.ID()))
		Expect(rsp[0].Kind).To(Equal("idle"))
		Expect(rsp[1].Requestor).To(Equal(uint32(1)))

		Expect(json.Unmarshal(get("/api/pending?limit=1").Body.Bytes(), &rsp)).
			To(Succeed())
		Expect(rsp).To(HaveLen(1))

		Expect(get("/api/pending?limit=x").Code).To(Equal(http.StatusBadRequest))
	})

	It("should list creatures", func() {
		var rsp []creatureRsp
		Expect(json.Unmarshal(get("/api/creatures").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0].Name).To(Equal("knight"))
		Expect(*rsp[0].Hitpoints).To(Equal(150))
		Expect(rsp[1].Kind).To(Equal(creature.KindMonster.String()))
		Expect(rsp[1].Hitpoints).To(BeNil())
	})

	It("should serialize a creature", func() {
		rec := get("/api/creature/2")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should reject unknown creatures", func() {
		Expect(get("/api/creature/42").Code).To(Equal(http.StatusNotFound))
		Expect(get("/api/creature/rat").Code).To(Equal(http.StatusBadRequest))
	})

	It("should report event stats", func() {
		evt := idle{sched.NewEventBase(1, true)}
		_, err := scheduler.Schedule(evt, 0)
		Expect(err).NotTo(HaveOccurred())
		scheduler.Tick()

		rsp := statsRsp{}
		Expect(json.Unmarshal(get("/api/events/stats").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp.Kinds).To(HaveLen(1))
		Expect(rsp.Kinds[0].Kind).To(Equal("idle"))
		Expect(rsp.Kinds[0].Completed).To(Equal(uint64(1)))
		Expect(rsp.Finished).To(BeZero())
	})

	It("should report process resources", func() {
		rsp := resourceRsp{}
		Expect(json.Unmarshal(get("/api/resource").Body.Bytes(), &rsp)).
			To(Succeed())

		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve on a real port", func() {
		port := m.StartServer()
		defer m.StopServer()

		Expect(port).To(BeNumerically(">", 0))
	})
})
