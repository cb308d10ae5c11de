package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/cliui"
)

var _ = Describe("cliui", func() {
	It("formats durations", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})

	It("does not treat buffers as terminals", func() {
		var buf bytes.Buffer
		Expect(cliui.IsTerminal(&buf)).To(BeFalse())
		Expect(cliui.Width(&buf, 100)).To(Equal(100))
	})

	It("reports step outcomes", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "loading", func() error { return nil })).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("loading"))

		boom := errors.New("boom")
		buf.Reset()
		Expect(cliui.Step(&buf, "saving", func() error { return boom })).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("saving"))
	})

	It("renders markdown", func() {
		out, err := cliui.RenderMarkdown("# Recent\n\n1. search, fetch\n", 60)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("search, fetch"))
	})
})
