package cliui_test

import (
	"bytes"
	"errors"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/legalqa/pkg/cliui"
)

var _ = Describe("Mark", func() {
	It("returns the success mark for nil errors", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
	})

	It("returns the fail mark otherwise", func() {
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("FormatDuration", func() {
	DescribeTable("formats durations",
		func(d time.Duration, expected string) {
			Expect(cliui.FormatDuration(d)).To(Equal(expected))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)
})

var _ = Describe("Step", func() {
	It("reports the step result and returns the function error", func() {
		var buf bytes.Buffer
		err := cliui.Step(&buf, "Indexation du corpus", func() error {
			return errors.New("boom")
		})
		Expect(err).To(MatchError("boom"))
		Expect(buf.String()).To(ContainSubstring("Indexation du corpus"))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})
})

var _ = Describe("IsTerminal", func() {
	It("is false for a regular file", func() {
		f, err := os.CreateTemp(GinkgoT().TempDir(), "out")
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(cliui.IsTerminal(f)).To(BeFalse())
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("keeps the text of the document", func() {
		out, err := cliui.RenderMarkdown("**Article L3141-3**\n\nLe salarié a droit à un congé.", 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Article L3141-3"))
		Expect(out).To(ContainSubstring("congé"))
	})
})
