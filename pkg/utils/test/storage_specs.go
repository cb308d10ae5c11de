package testutils

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/storage"
)

// StorageDriverSpecs registers the behaviour every storage.Driver must share.
// Call it from inside a Describe; newDriver is invoked before each spec.
func StorageDriverSpecs(newDriver func() storage.Driver) {
	var (
		ctx    context.Context
		driver storage.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(driver.Close)
	})

	It("assigns increasing ids and stores steps in order", func() {
		first, err := driver.Put(ctx, []string{"search", "fetch"})
		Expect(err).NotTo(HaveOccurred())
		second, err := driver.Put(ctx, []string{"summarize"})
		Expect(err).NotTo(HaveOccurred())

		Expect(second.ID).To(BeNumerically(">", first.ID))
		Expect(first.StepCount).To(Equal(2))

		got, err := driver.Get(ctx, first.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Steps).To(Equal([]string{"search", "fetch"}))
		Expect(got.Timestamp).NotTo(BeZero())
	})

	It("rejects empty executions", func() {
		_, err := driver.Put(ctx, nil)
		Expect(err).To(MatchError(storage.ErrEmptySteps))
	})

	It("returns NotFoundError for unknown ids", func() {
		_, err := driver.Get(ctx, 999)

		var notFound storage.NotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.ID).To(Equal(int64(999)))
	})

	It("lists recent executions newest first", func() {
		for _, tool := range []string{"a", "b", "c"} {
			_, err := driver.Put(ctx, []string{tool})
			Expect(err).NotTo(HaveOccurred())
		}

		recent, err := driver.Recent(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(2))
		Expect(recent[0].Steps).To(Equal([]string{"c"}))
		Expect(recent[1].Steps).To(Equal([]string{"b"}))

		all, err := driver.All(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
		Expect(all[2].Steps).To(Equal([]string{"a"}))
	})

	It("uses the default limit for non-positive limits", func() {
		for range storage.DefaultRecentLimit + 2 {
			_, err := driver.Put(ctx, []string{"x"})
			Expect(err).NotTo(HaveOccurred())
		}

		recent, err := driver.Recent(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(HaveLen(storage.DefaultRecentLimit))
	})

	It("returns an empty, non-nil list when nothing is stored", func() {
		all, err := driver.All(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).NotTo(BeNil())
		Expect(all).To(BeEmpty())
	})

	It("summarizes the history", func() {
		for _, steps := range [][]string{{"a", "b"}, {"c"}, {"c"}, {"a", "b"}, {"a", "b"}} {
			_, err := driver.Put(ctx, steps)
			Expect(err).NotTo(HaveOccurred())
		}

		stats, err := driver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Total).To(Equal(5))
		Expect(stats.UniqueCombinations).To(Equal(2))
		Expect(stats.MostCommon).To(Equal([]string{"a", "b"}))
		Expect(stats.MostCommonCount).To(Equal(3))
	})

	It("summarizes an empty history", func() {
		stats, err := driver.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(*stats).To(Equal(storage.Stats{}))
	})
}
