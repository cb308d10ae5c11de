package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/artifacts"
	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/local"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/service"
	testutils "github.com/aircode610/MouseTron/pkg/utils/test"
	"github.com/aircode610/MouseTron/pkg/worker"
)

type rejectCounter struct{ n int }

func (r *rejectCounter) BlockRejected() { r.n++ }

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		mem       *local.Driver
		store     *testutils.FailingStorage
		publisher *testutils.RecordingPublisher
		pool      *worker.Pool
		writer    *artifacts.Writer
		rejects   *rejectCounter
		svc       *service.Service
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		mem, err = local.New(local.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		store = testutils.NewFailingStorage()
		publisher = testutils.NewRecordingPublisher()
		pool, err = worker.NewPool(&worker.Config{Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())

		writer, err = artifacts.NewWriter(filepath.Join(GinkgoT().TempDir(), "artifacts"))
		Expect(err).NotTo(HaveOccurred())

		rejects = &rejectCounter{}
		svc, err = service.New(service.Config{
			Memory:    mem,
			Storage:   store,
			Artifacts: writer,
			Pool:      pool,
			Observer:  rejects,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(svc.Close()).To(Succeed())
	})

	It("requires a memory driver", func() {
		_, err := service.New(service.Config{})
		Expect(err).To(MatchError(memory.ErrNotConfigured))
	})

	Describe("Record", func() {
		It("stores, learns, writes artifacts and publishes", func() {
			result, err := svc.Record(ctx, []string{" search ", "fetch", ""})
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Tools).To(Equal([]string{"search", "fetch"}))
			Expect(result.Execution).NotTo(BeNil())
			Expect(result.Execution.Steps).To(Equal([]string{"search", "fetch"}))
			Expect(result.Recommendations.Singles).To(HaveLen(2))

			_, err = os.Stat(filepath.Join(writer.Dir, "single_1.json"))
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Close()).To(Succeed())
			events := publisher.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Execution.ID).To(Equal(result.Execution.ID))
			Expect(events[0].Execution.Tools).To(Equal([]string{"search", "fetch"}))
		})

		It("rejects empty executions without storing them", func() {
			_, err := svc.Record(ctx, []string{" ", ""})
			Expect(err).To(MatchError(memory.ErrEmptyExecution))
			Expect(rejects.n).To(Equal(1))

			all, err := store.All(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("rejects over-long executions without storing them", func() {
			steps := strings.Split(strings.Repeat("t,", subseq.DefaultMaxLen+1), ",")
			_, err := svc.Record(ctx, steps[:subseq.DefaultMaxLen+1])
			Expect(err).To(MatchError(subseq.ErrBlockTooLong))
			Expect(rejects.n).To(Equal(1))
			Expect(mem.Stats().Blocks).To(Equal(0))
		})

		It("leaves memory untouched when storage fails", func() {
			store.FailPut = true

			_, err := svc.Record(ctx, []string{"a"})
			var storageErr *service.StorageError
			Expect(err).To(BeAssignableToTypeOf(storageErr))
			Expect(err).To(MatchError(testutils.ErrStorageUnavailable))
			Expect(mem.Stats().Blocks).To(Equal(0))
		})

		It("reports the combination learned across executions", func() {
			for range 3 {
				_, err := svc.Record(ctx, []string{"A", "B"})
				Expect(err).NotTo(HaveOccurred())
			}

			recs, err := svc.Recommend(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs.Stable).NotTo(BeEmpty())
			Expect(recs.Stable[0].ToolName).To(Equal("A, B"))
		})
	})

	Describe("history queries", func() {
		It("returns recent executions and stats", func() {
			_, err := svc.Record(ctx, []string{"a", "b"})
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Record(ctx, []string{"a", "b"})
			Expect(err).NotTo(HaveOccurred())
			last, err := svc.Record(ctx, []string{"c"})
			Expect(err).NotTo(HaveOccurred())

			recent, err := svc.Recent(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(recent).To(HaveLen(3))
			Expect(recent[0].ID).To(Equal(last.Execution.ID))

			got, err := svc.Execution(ctx, last.Execution.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Steps).To(Equal([]string{"c"}))

			stats, err := svc.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(3))
			Expect(stats.UniqueCombinations).To(Equal(2))
			Expect(stats.MostCommon).To(Equal([]string{"a", "b"}))
		})

		It("reports missing storage", func() {
			bare, err := service.New(service.Config{Memory: testutils.NewMockMemoryDriver()})
			Expect(err).NotTo(HaveOccurred())

			_, err = bare.Recent(ctx, 5)
			Expect(err).To(MatchError(service.ErrNoStorage))
			_, err = bare.Stats(ctx)
			Expect(err).To(MatchError(service.ErrNoStorage))

			result, err := bare.Record(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Execution).To(BeNil())
		})
	})
})
