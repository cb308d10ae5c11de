package recommend_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/frequency"
	"github.com/aircode610/MouseTron/pkg/memory/recency"
	"github.com/aircode610/MouseTron/pkg/memory/recommend"
	"github.com/aircode610/MouseTron/pkg/memory/subseq"
	"github.com/aircode610/MouseTron/pkg/memory/toolindex"
	"github.com/aircode610/MouseTron/pkg/memory/window"
)

var _ = Describe("Recommender", func() {
	var (
		index   *toolindex.Index
		win     *window.Window
		table   *frequency.Table
		tracker *recency.Tracker
		r       *recommend.Recommender
		next    int
	)

	record := func(names ...string) {
		block := make(memory.Block, len(names))
		for i, name := range names {
			block[i] = index.IDFor(name)
		}
		win.Push(block)
		for _, sub := range subseq.Generate(block) {
			table.Record(sub, next)
		}
		for _, id := range block {
			tracker.Touch(id)
		}
		next++
	}

	BeforeEach(func() {
		index = toolindex.New()
		win, _ = window.New(10)
		table, _ = frequency.New(50)
		tracker, _ = recency.New(5)
		next = 0

		r = &recommend.Recommender{
			Window:   win,
			Table:    table,
			Tracker:  tracker,
			Resolver: index,
			Describer: recommend.DescriberFunc(func(name string) (string, bool) {
				if name == "A" {
					return "first tool", true
				}
				return "", false
			}),
		}
	})

	Context("after [A B], [A B], [C]", func() {
		BeforeEach(func() {
			record("A", "B")
			record("A", "B")
			record("C")
		})

		It("ranks the pair first from the frequency table", func() {
			items, err := r.PickFromFrequency(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].ToolName).To(Equal("A, B"))
			Expect(items[0].Description).To(Equal("first tool"))
			Expect(items[0].Tools).To(HaveLen(2))
		})

		It("returns single tools most recent first", func() {
			items, err := r.RecentSingleTools(3)
			Expect(err).NotTo(HaveOccurred())
			Expect([]string{items[0].ToolName, items[1].ToolName, items[2].ToolName}).
				To(Equal([]string{"C", "B", "A"}))
		})

		It("ranks the recent window by count times length", func() {
			ranked := r.RankRecent(3)
			Expect(ranked).To(HaveLen(3))
			Expect(ranked[0].Subsequence).To(Equal(memory.Subsequence{0, 1}))
			Expect(ranked[0].Score).To(Equal(4))
			Expect(ranked[1].Subsequence).To(Equal(memory.Subsequence{0}))
			Expect(ranked[2].Subsequence).To(Equal(memory.Subsequence{1}))
		})

		It("never returns more than n items, sorted by score", func() {
			for n := 0; n <= 6; n++ {
				ranked := r.RankFrequency(n)
				Expect(len(ranked)).To(BeNumerically("<=", n))
				for i := 1; i < len(ranked); i++ {
					Expect(ranked[i-1].Score).To(BeNumerically(">=", ranked[i].Score))
				}
			}
		})
	})

	It("breaks score ties toward longer combinations", func() {
		record("A", "B")
		record("C")
		record("C")

		ranked := r.RankFrequency(2)
		Expect(ranked[0].Subsequence).To(Equal(memory.Subsequence{0, 1}))
		Expect(ranked[1].Subsequence).To(Equal(memory.Subsequence{2}))
	})

	It("breaks remaining ties by first occurrence", func() {
		record("B")
		record("A")

		ranked := r.RankRecent(2)
		Expect(ranked[0].Subsequence).To(Equal(memory.Subsequence{0}))
		Expect(ranked[1].Subsequence).To(Equal(memory.Subsequence{1}))
	})

	It("returns empty lists on an empty memory", func() {
		recent, err := r.PickFromRecent(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(recent).To(BeEmpty())

		singles, err := r.RecentSingleTools(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(singles).NotTo(BeNil())
		Expect(singles).To(BeEmpty())
	})

	It("surfaces ids unknown to the index", func() {
		tracker.Touch(42)

		_, err := r.RecentSingleTools(1)
		var lookupErr *memory.LookupError
		Expect(err).To(BeAssignableToTypeOf(lookupErr))
	})

	It("does not mutate state", func() {
		record("A", "B")
		before := table.Entries()

		_, _ = r.PickFromFrequency(5)
		_, _ = r.PickFromRecent(5)

		Expect(table.Entries()).To(Equal(before))
		Expect(win.Len()).To(Equal(1))
	})
})
