package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/logger"
)

func decodeLine(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	ExpectWithOffset(1, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &parsed)).To(Succeed())
	return parsed
}

var errDiskFull = errors.New("disk full")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errDiskFull }

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text records by default", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf)).Info("execution recorded", "tools", 3)

			Expect(buf.String()).To(ContainSubstring("execution recorded"))
			Expect(buf.String()).To(ContainSubstring("tools=3"))
		})

		DescribeTable("debug level",
			func(debug bool, expectOutput bool) {
				var buf bytes.Buffer
				logger.New(logger.WithWriter(&buf), logger.WithDebug(debug)).Debug("container missing")
				if expectOutput {
					Expect(buf.String()).To(ContainSubstring("container missing"))
				} else {
					Expect(buf.String()).To(BeEmpty())
				}
			},
			Entry("emits debug records when enabled", true, true),
			Entry("drops debug records when disabled", false, false),
		)

		It("writes JSON records", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithJSON(true)).Info("memory loaded", "tools", 7)

			parsed := decodeLine(&buf)
			Expect(parsed["msg"]).To(Equal("memory loaded"))
			Expect(parsed["tools"]).To(BeNumerically("==", 7))
		})

		It("writes pretty records", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithPretty(true)).Info("serving")

			Expect(buf.String()).To(ContainSubstring("serving"))
		})

		It("prefers JSON over pretty output", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true)).Info("serving")

			Expect(decodeLine(&buf)["msg"]).To(Equal("serving"))
		})

		It("fans out to several writers", func() {
			var a, b bytes.Buffer
			logger.New(logger.WithWriters(&a, &b)).Info("fan out")

			Expect(a.String()).To(ContainSubstring("fan out"))
			Expect(b.String()).To(ContainSubstring("fan out"))
		})

		It("nests grouped attributes", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
			l.WithGroup("block").Info("recorded", "len", 2)

			group, ok := decodeLine(&buf)["block"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["len"]).To(BeNumerically("==", 2))
		})
	})

	Describe("Nop", func() {
		It("is disabled at every level", func() {
			h := logger.Nop().Handler()
			for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
				Expect(h.Enabled(context.Background(), level)).To(BeFalse())
			}
		})

		It("survives With and WithGroup", func() {
			Expect(func() {
				logger.Nop().With("k", "v").WithGroup("g").Error("ignored")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("keeps writing to the terminal when the log file fails", func() {
			var term bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(failingWriter{}), logger.WithJSON(true)),
				logger.New(logger.WithWriter(&term)),
			)

			err := multi.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still here", 0))

			Expect(err).To(MatchError(errDiskFull))
			Expect(term.String()).To(ContainSubstring("still here"))
		})

		It("dispatches each record to every logger", func() {
			var text, js bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&text)),
				logger.New(logger.WithWriter(&js), logger.WithJSON(true)),
			)

			multi.With("component", "api").Info("listening")

			Expect(text.String()).To(ContainSubstring("listening"))
			parsed := decodeLine(&js)
			Expect(parsed["component"]).To(Equal("api"))
		})

		It("only forwards records a handler accepts", func() {
			var info, debug bytes.Buffer
			multi := logger.Multi(
				logger.New(logger.WithWriter(&info)),
				logger.New(logger.WithWriter(&debug), logger.WithDebug(true)),
			)

			multi.Debug("detail")

			Expect(info.String()).To(BeEmpty())
			Expect(debug.String()).To(ContainSubstring("detail"))
		})
	})
})
