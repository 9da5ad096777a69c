package tracing

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/timing"
	"go.uber.org/mock/gomock"
)

var _ = Describe("FiringTracer", func() {
	var (
		mockCtrl *gomock.Controller
		writer   *MockTraceWriter
		c        *clock.ManualClock
		tracer   *FiringTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		writer = NewMockTraceWriter(mockCtrl)
		c = clock.NewManualClock()
		tracer = NewFiringTracerWithClock(writer, c)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write a firing for a handled event", func() {
		e := timing.MakeBuilder().
			WithClock(c).
			WithWaitTime(0.1).
			Build()
		CollectTrace(e, tracer)

		writer.EXPECT().Write(gomock.Any()).Do(func(f Firing) {
			Expect(f.EventID).To(Equal(e.ID()))
			Expect(f.Kind).To(Equal("DueEvent"))
			Expect(f.HasPriority).To(BeFalse())
			Expect(f.Lateness).To(BeNumerically("~", 0.05, 1e-9))
			Expect(f.Time).To(BeNumerically("~", 0.15, 1e-9))
		}).Return(nil)

		c.Advance(150 * time.Millisecond)
		e.Handle()
		e.Handle()
	})

	It("should record priorities", func() {
		e := timing.MakeBuilder().
			WithClock(c).
			WithJob(func() {}).
			WithPriority(-2).
			BuildPriorityCallbackEvent()
		CollectTrace(e, tracer)

		writer.EXPECT().Write(gomock.Any()).Do(func(f Firing) {
			Expect(f.Kind).To(Equal("PriorityCallbackEvent"))
			Expect(f.HasPriority).To(BeTrue())
			Expect(f.Priority).To(Equal(-2))
		}).Return(nil)

		e.Handle()
	})

	It("should stop writing after an error", func() {
		e := timing.MakeBuilder().
			WithClock(c).
			WithRepeat(true).
			Build()
		CollectTrace(e, tracer)

		failure := errors.New("disk full")
		writer.EXPECT().Write(gomock.Any()).Return(failure).Times(1)

		e.Handle()
		e.Handle()

		Expect(tracer.Err()).To(MatchError(failure))
		Expect(tracer.Flush()).To(MatchError(failure))
	})

	It("should flush the writer", func() {
		writer.EXPECT().Flush().Return(nil)

		Expect(tracer.Flush()).To(Succeed())
	})

	It("should refuse to trace an event twice", func() {
		e := timing.NewDueEvent(false, 1)
		CollectTrace(e, tracer)

		Expect(func() { CollectTrace(e, tracer) }).To(Panic())
	})
})

var _ = Describe("CountTracer", func() {
	It("should count handlings per event", func() {
		c := clock.NewManualClock()
		tracer := NewCountTracer()

		b := timing.MakeBuilder().
			WithClock(c).
			WithRepeat(true).
			WithWaitTime(0.01).
			WithHook(tracer)
		fast := b.Build()
		slow := b.WithWaitTime(0.03).Build()

		for i := 0; i < 30; i++ {
			c.Advance(time.Millisecond * 10)
			fast.Handle()
			slow.Handle()
		}

		Expect(tracer.Count(fast.ID())).To(Equal(uint64(30)))
		Expect(tracer.Count(slow.ID())).To(Equal(uint64(10)))
		Expect(tracer.Total()).To(Equal(uint64(40)))
		Expect(tracer.Count("unknown")).To(BeZero())
	})
})
