package notification_test

import (
	"bytes"
	"errors"
	"log"

	"github.com/fibula-mmo/fibula/notification"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/fibula-mmo/fibula/world"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type dispatchingContext struct {
	scheduler  sched.Scheduler
	dispatcher notification.Dispatcher
}

func (c dispatchingContext) Scheduler() sched.Scheduler { return c.scheduler }
func (c dispatchingContext) Logger() *log.Logger        { return log.Default() }

func (c dispatchingContext) Dispatcher() notification.Dispatcher {
	return c.dispatcher
}

type bareContext struct{}

func (bareContext) Scheduler() sched.Scheduler { return nil }
func (bareContext) Logger() *log.Logger        { return log.Default() }

var _ = Describe("Notification", func() {
	var (
		mockCtrl   *gomock.Controller
		dispatcher *MockDispatcher
		scheduler  *sched.SerialScheduler
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		dispatcher = NewMockDispatcher(mockCtrl)
		scheduler = sched.NewSerialScheduler(sched.NewManualClock())
		scheduler.UseContext(dispatchingContext{
			scheduler:  scheduler,
			dispatcher: dispatcher,
		})
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should be a system event that cannot be cancelled", func() {
		n := notification.DefaultFactory{}.
			Create(notification.CreatureTurned{CreatureID: 3}, nil)

		Expect(n.RequestorID()).To(BeZero())
		Expect(n.CanBeCancelled()).To(BeFalse())
		Expect(n.Kind()).To(Equal("CreatureTurned"))
	})

	It("should resolve targets when it runs", func() {
		payload := notification.CreatureMoved{
			CreatureID: 3,
			From:       world.Location{X: 1},
			To:         world.Location{X: 2},
		}
		targets := []uint32{1}
		n := notification.New(payload, func() []uint32 { return targets })

		_, err := scheduler.Schedule(n, 0)
		Expect(err).NotTo(HaveOccurred())
		targets = []uint32{1, 2}

		dispatcher.EXPECT().Dispatch(uint32(1), payload)
		dispatcher.EXPECT().Dispatch(uint32(2), payload)

		scheduler.Tick()

		Expect(n.State()).To(Equal(sched.EventStateCompleted))
	})

	It("should report every failed dispatch", func() {
		payload := notification.TargetSquare{PlayerID: 1, AttackerID: 2}
		n := notification.New(payload, notification.Players(1, 2))
		ctx := dispatchingContext{scheduler: scheduler, dispatcher: dispatcher}

		dispatcher.EXPECT().Dispatch(uint32(1), payload).
			Return(errors.New("closed"))
		dispatcher.EXPECT().Dispatch(uint32(2), payload).
			Return(errors.New("gone"))

		err := n.Execute(ctx)

		Expect(err).To(MatchError(ContainSubstring("closed")))
		Expect(err).To(MatchError(ContainSubstring("gone")))
	})

	It("should refuse contexts without a dispatcher", func() {
		n := notification.New(notification.CreatureTurned{}, notification.Players(1))

		Expect(n.Execute(bareContext{})).
			To(MatchError(notification.ErrContextNotSupported))
	})
})

var _ = Describe("LogDispatcher", func() {
	It("should write payloads to the logger", func() {
		buf := new(bytes.Buffer)
		d := notification.NewLogDispatcher(log.New(buf, "", 0))

		Expect(d.Dispatch(7, notification.CreatureTurned{CreatureID: 3,
			Direction: world.West})).To(Succeed())

		Expect(buf.String()).To(ContainSubstring("to 7: CreatureTurned"))
		Expect(buf.String()).To(ContainSubstring("West"))
	})
})
