package tracing

import (
	"errors"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fibula-mmo/fibula/sched"
)

type pulse struct {
	*sched.EventBase

	err   error
	fired int
}

func newPulse(requestor uint32, err error) *pulse {
	return &pulse{
		EventBase: sched.NewEventBase(requestor, true),
		err:       err,
	}
}

func (p *pulse) Execute(sched.EventContext) error {
	p.fired++
	return p.err
}

var _ = Describe("Trace Hook", func() {
	var (
		clock     *sched.ManualClock
		scheduler *sched.SerialScheduler
		steps     *StepCountTracer
		kinds     *KindCountTracer
		lifetime  *AverageTimeTracer
	)

	BeforeEach(func() {
		clock = sched.NewManualClock()
		scheduler = sched.NewSerialScheduler(clock)
		scheduler.UseLogger(log.New(GinkgoWriter, "", 0))

		steps = NewStepCountTracer(AllTasks)
		kinds = NewKindCountTracer()
		lifetime = NewAverageTimeTracer(scheduler, AllTasks)

		CollectTrace(scheduler, steps)
		CollectTrace(scheduler, kinds)
		CollectTrace(scheduler, lifetime)
	})

	It("should panic if the same tracer is attached twice", func() {
		Expect(func() { CollectTrace(scheduler, steps) }).To(Panic())
	})

	It("should follow events through their lifecycle", func() {
		quick := newPulse(7, nil)
		broken := newPulse(7, errors.New("boom"))
		dropped := newPulse(8, nil)

		_, err := scheduler.Schedule(quick, time.Second)
		Expect(err).NotTo(HaveOccurred())
		_, err = scheduler.Schedule(broken, 2*time.Second)
		Expect(err).NotTo(HaveOccurred())
		_, err = scheduler.Schedule(dropped, 3*time.Second)
		Expect(err).NotTo(HaveOccurred())

		Expect(scheduler.Cancel(sched.RequestedBy(8))).To(Equal(1))
		Expect(scheduler.Expedite(quick.ID())).To(BeTrue())

		clock.Advance(2 * time.Second)
		scheduler.Tick()

		Expect(kinds.Stats()).To(Equal([]KindStats{{
			Kind:      "pulse",
			Scheduled: 3,
			Executed:  2,
			Expedited: 1,
			Completed: 2,
			Cancelled: 1,
			Faulted:   1,
		}}))

		Expect(steps.GetStepNames()).To(ConsistOf(
			StepExpedite, StepExecute, StepFault))
		Expect(steps.GetStepCount(StepExecute)).To(Equal(uint64(2)))
		Expect(steps.GetTaskCount(StepFault)).To(Equal(uint64(1)))
		Expect(steps.GetTaskCount(StepExpedite)).To(Equal(uint64(1)))

		Expect(lifetime.TotalCount()).To(Equal(uint64(3)))
		Expect(lifetime.AverageTime()).To(
			BeNumerically("~", 4*time.Second/3, time.Millisecond))
	})

	It("should count every run of a repeating event as one task", func() {
		repeating := newPulse(7, nil)
		repeating.SetRepeatAfter(time.Second)

		_, err := scheduler.Schedule(repeating, time.Second)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 3; i++ {
			clock.Advance(time.Second)
			scheduler.Tick()
		}

		Expect(repeating.fired).To(Equal(3))
		Expect(steps.GetStepCount(StepExecute)).To(Equal(uint64(3)))
		Expect(steps.GetTaskCount(StepExecute)).To(Equal(uint64(1)))
		Expect(kinds.Stats()[0].InFlight).To(Equal(uint64(1)))
	})
})
