package vector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/vector"
)

var _ = Describe("Checksum", func() {
	It("is stable for the same article", func() {
		Expect(vector.Checksum("Licenciement", "Le préavis")).To(Equal(vector.Checksum("Licenciement", "Le préavis")))
		Expect(vector.Checksum("Licenciement", "Le préavis")).To(HaveLen(64))
	})

	It("separates title and content", func() {
		Expect(vector.Checksum("ab", "c")).NotTo(Equal(vector.Checksum("a", "bc")))
	})
})

var _ = DescribeTable("Similarity",
	func(distance float32, want float64) {
		Expect(vector.Similarity(distance)).To(BeNumerically("~", want, 1e-6))
	},
	Entry("identical", float32(0), 1.0),
	Entry("close", float32(0.25), 0.75),
	Entry("orthogonal", float32(1), 0.0),
	Entry("opposite clamps to zero", float32(2), 0.0),
	Entry("negative distance clamps to one", float32(-0.1), 1.0),
)
