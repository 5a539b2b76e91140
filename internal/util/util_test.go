package util_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/taskengine/internal/util"
)

var _ = Describe("Util", func() {
	DescribeTable("HumanBytes",
		func(in int64, want string) {
			Expect(util.HumanBytes(in)).To(Equal(want))
		},
		Entry("bytes", int64(512), "512 B"),
		Entry("kibibytes", int64(10000), "9.77 KiB"),
		Entry("mebibytes", int64(3*1024*1024), "3.00 MiB"),
	)

	It("should round to two decimals", func() {
		Expect(util.Round(81.9199)).To(Equal(81.92))
	})

	It("should shorten ids", func() {
		Expect(util.ShortID("5b0c1e2a-aaaa")).To(Equal("5b0c1e2a"))
		Expect(util.ShortID("abc")).To(Equal("abc"))
	})

	It("should return a pointer to a copy", func() {
		p := util.Ptr(3)
		Expect(*p).To(Equal(3))
	})
})
