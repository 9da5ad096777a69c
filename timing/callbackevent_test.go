package timing

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("CallbackEvent", func() {
	var (
		c     *clock.ManualClock
		count int
		job   Job
	)

	BeforeEach(func() {
		c = clock.NewManualClock()
		count = 0
		job = func() { count++ }
	})

	build := func(repeated bool, waitTime TimeInSec) *CallbackEvent {
		return MakeBuilder().
			WithClock(c).
			WithJob(job).
			WithRepeat(repeated).
			WithWaitTime(waitTime).
			BuildCallbackEvent()
	}

	It("should not run the job before the event is due", func() {
		e := build(false, 0.05)

		c.Advance(40 * time.Millisecond)

		Expect(e.Handle()).To(BeFalse())
		Expect(count).To(Equal(0))
	})

	It("should run the job once per successful handling", func() {
		e := build(true, 0.01)
		successes := 0

		for i := 0; i < 100; i++ {
			c.Advance(3 * time.Millisecond)
			if e.Handle() {
				successes++
			}
			Expect(count).To(Equal(successes))
		}

		Expect(successes).To(BeNumerically(">", 0))
	})

	It("should fire a one-shot event once", func() {
		e := build(false, 0.05)
		handledAt := -1

		for t := 10; t <= 200; t += 10 {
			c.Advance(10 * time.Millisecond)
			wasHandled := e.IsHandled()

			if e.Handle() {
				Expect(handledAt).To(Equal(-1))
				handledAt = t
			}

			if wasHandled {
				Expect(e.IsHandled()).To(BeTrue())
			}
		}

		Expect(count).To(Equal(1))
		Expect(handledAt).To(Equal(50))
		Expect(e.IsHandled()).To(BeTrue())
	})

	It("should fire a repeated event every period without latching", func() {
		e := build(true, 0.02)

		for t := 5; t <= 205; t += 5 {
			c.Advance(5 * time.Millisecond)
			e.Handle()
			Expect(e.IsHandled()).To(BeFalse())
		}

		Expect(count).To(BeNumerically(">=", 9))
		Expect(count).To(BeNumerically("<=", 10))
	})

	It("should transition before running the job", func() {
		var (
			sawHandled  bool
			sawLateness TimeInSec
		)

		oneShot := build(false, 0.05)
		oneShot.SetJob(func() { sawHandled = oneShot.IsHandled() })

		repeated := build(true, 0.05)
		repeated.SetJob(func() { sawLateness = repeated.Lateness() })

		c.Advance(80 * time.Millisecond)
		oneShot.Handle()
		repeated.Handle()

		Expect(sawHandled).To(BeTrue())
		Expect(sawLateness).To(BeNumerically("~", -0.05, 1e-12))
	})

	It("should leave a one-shot event handled when the job panics", func() {
		e := build(false, 0.01)
		e.SetJob(func() { panic("boom") })

		c.Advance(20 * time.Millisecond)

		Expect(func() { e.Handle() }).To(PanicWith("boom"))
		Expect(e.IsHandled()).To(BeTrue())
		Expect(e.Handle()).To(BeFalse())
	})

	It("should leave a repeated event restarted when the job panics", func() {
		e := build(true, 0.01)
		e.SetJob(func() { panic("boom") })

		c.Advance(20 * time.Millisecond)

		Expect(func() { e.Handle() }).To(PanicWith("boom"))
		Expect(e.IsHandled()).To(BeFalse())
		Expect(e.Lateness()).To(BeNumerically("~", -0.01, 1e-12))

		e.SetJob(job)
		c.Advance(10 * time.Millisecond)
		Expect(e.Handle()).To(BeTrue())
		Expect(count).To(Equal(1))
	})

	It("should panic when handled without a job", func() {
		e := build(false, 0)
		e.SetJob(nil)

		Expect(func() { e.Handle() }).To(PanicWith(ErrUnsetCallback))
	})

	It("should not panic without a job while not due", func() {
		e := build(false, 1)
		e.SetJob(nil)

		Expect(e.Handle()).To(BeFalse())
	})

	It("should get and set the job", func() {
		e := build(false, 0)
		other := 0
		e.SetJob(func() { other++ })

		e.Job()()

		Expect(other).To(Equal(1))
		Expect(count).To(Equal(0))
	})

	It("should be usable through the constructor", func() {
		e := NewCallbackEvent(job, false, 0)

		Expect(e.Handle()).To(BeTrue())
		Expect(count).To(Equal(1))
	})

	Context("with hooks", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			hook = NewMockHook(mockCtrl)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should invoke hooks around the job", func() {
			e := build(false, 0)
			e.AcceptHook(hook)

			gomock.InOrder(
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosHandled))
					Expect(ctx.Item).To(BeIdenticalTo(e))
					Expect(count).To(Equal(0))
				}),
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosBeforeJob))
					Expect(count).To(Equal(0))
				}),
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosAfterJob))
					Expect(count).To(Equal(1))
				}),
			)

			e.Handle()
		})

		It("should skip the after-job hook when the job panics", func() {
			e := build(false, 0)
			e.SetJob(func() { panic("boom") })
			e.AcceptHook(hook)

			gomock.InOrder(
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosHandled))
				}),
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosBeforeJob))
				}),
			)

			Expect(func() { e.Handle() }).To(Panic())
		})
	})
})
