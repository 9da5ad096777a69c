package timing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
)

var _ = Describe("EventLogger", func() {
	var (
		buf    *bytes.Buffer
		logger *EventLogger
	)

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	It("should log handled events", func() {
		c := clock.NewManualClock()
		e := MakeBuilder().
			WithClock(c).
			WithWaitTime(0.1).
			WithHook(logger).
			Build()

		c.AdvanceSeconds(0.125)
		e.Handle()

		Expect(buf.String()).To(Equal(
			"*timing.DueEvent " + e.ID() + " late=0.0250000000\n"))
	})

	It("should log the priority of priority events", func() {
		e := MakeBuilder().
			WithClock(clock.NewManualClock()).
			WithJob(func() {}).
			WithPriority(4).
			WithHook(logger).
			BuildPriorityCallbackEvent()

		e.Handle()

		Expect(buf.String()).To(ContainSubstring("*timing.PriorityCallbackEvent"))
		Expect(buf.String()).To(ContainSubstring("late=0.0000000000, priority 4"))
	})

	It("should ignore other positions", func() {
		logger.Func(hooking.HookCtx{Pos: HookPosBeforeJob})
		logger.Func(hooking.HookCtx{Pos: HookPosHandled, Item: "not an event"})

		Expect(buf.Len()).To(Equal(0))
	})
})
