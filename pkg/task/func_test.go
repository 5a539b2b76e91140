package task_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/pkg/task"
)

var _ = Describe("Func", func() {
	It("should run the function in a single resume", func() {
		calls := 0
		f := task.Wrap(func() string {
			calls++
			return "done"
		})

		Expect(f.Progress()).To(BeFalse())
		f.Resume()

		Expect(f.IsComplete()).To(BeTrue())
		Expect(f.Progress()).To(BeTrue())
		Expect(f.Result()).To(Equal("done"))
		Expect(calls).To(Equal(1))
	})

	It("should not call the function again once complete", func() {
		calls := 0
		f := task.Wrap(func() int {
			calls++
			return calls
		})

		f.Resume()
		f.Resume()

		Expect(calls).To(Equal(1))
	})

	It("should panic on early or repeated result", func() {
		f := task.Wrap(func() int { return 1 })
		Expect(func() { f.Result() }).To(Panic())

		f.Resume()
		Expect(f.Result()).To(Equal(1))
		Expect(func() { f.Result() }).To(Panic())
	})

	It("should expose progress and result through the erased handle", func() {
		e := task.Erase[bool, int](task.Wrap(func() int { return 7 }))

		Expect(e.ProgressAny()).To(Equal(false))
		e.Resume()
		Expect(e.IsComplete()).To(BeTrue())
		Expect(e.ProgressAny()).To(Equal(true))
		Expect(e.ResultAny()).To(Equal(7))
	})
})
