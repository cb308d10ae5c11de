package toolindex_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/toolindex"
)

var _ = Describe("Index", func() {
	var x *toolindex.Index

	BeforeEach(func() {
		x = toolindex.New()
	})

	It("allocates ids from 0 in first-seen order", func() {
		Expect(x.IDFor("search")).To(Equal(0))
		Expect(x.IDFor("fetch")).To(Equal(1))
		Expect(x.IDFor("search")).To(Equal(0))
		Expect(x.IDFor("summarize")).To(Equal(2))
		Expect(x.Len()).To(Equal(3))
	})

	It("maps ids back to names", func() {
		x.IDFor("search")
		x.IDFor("fetch")

		name, err := x.NameFor(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("fetch"))
	})

	It("returns a LookupError for unknown ids", func() {
		_, err := x.NameFor(7)

		var lookupErr *memory.LookupError
		Expect(err).To(BeAssignableToTypeOf(lookupErr))
		Expect(err.Error()).To(Equal("unknown tool id: 7"))
	})

	It("does not allocate on NameFor", func() {
		_, err := x.NameFor(0)
		Expect(err).To(HaveOccurred())
		Expect(x.Len()).To(Equal(0))
	})

	It("exports independent copies of both directions", func() {
		x.IDFor("search")

		byName := x.NameToID()
		byName["other"] = 9

		Expect(x.NameToID()).To(Equal(map[string]int{"search": 0}))
		Expect(x.IDToName()).To(Equal(map[int]string{0: "search"}))
	})

	Describe("Restore", func() {
		It("restores consistent maps without error", func() {
			restored, err := toolindex.Restore(
				map[string]int{"search": 0, "fetch": 1},
				map[int]string{0: "search", 1: "fetch"},
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.Len()).To(Equal(2))
			Expect(restored.IDFor("summarize")).To(Equal(2))
		})

		It("continues allocation after the highest persisted id", func() {
			restored, err := toolindex.Restore(
				map[string]int{"search": 4},
				map[int]string{4: "search"},
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.IDFor("fetch")).To(Equal(5))
		})

		It("rebuilds name_to_id from id_to_name when it is empty", func() {
			restored, err := toolindex.Restore(nil, map[int]string{0: "search", 1: "fetch"})

			var inconsistent *toolindex.InconsistencyError
			Expect(err).To(BeAssignableToTypeOf(inconsistent))
			Expect(restored.NameToID()).To(HaveKeyWithValue("fetch", 1))
			Expect(restored.IDFor("summarize")).To(Equal(2))
		})

		It("keeps the name id_to_name agrees with when two names share an id", func() {
			restored, err := toolindex.Restore(
				map[string]int{"alpha": 0, "beta": 0},
				map[int]string{0: "beta"},
			)
			Expect(err).To(HaveOccurred())

			name, lookupErr := restored.NameFor(0)
			Expect(lookupErr).NotTo(HaveOccurred())
			Expect(name).To(Equal("beta"))

			Expect(restored.NameToID()).NotTo(HaveKey("alpha"))
			Expect(restored.IDFor("gamma")).To(Equal(1))
		})

		It("recovers an id that only id_to_name knows", func() {
			restored, err := toolindex.Restore(
				map[string]int{"search": 0},
				map[int]string{0: "search", 1: "ghost"},
			)

			var inconsistent *toolindex.InconsistencyError
			Expect(errors.As(err, &inconsistent)).To(BeTrue())
			Expect(restored.IDToName()).To(Equal(map[int]string{0: "search", 1: "ghost"}))
			Expect(restored.NameToID()).To(Equal(map[string]int{"search": 0, "ghost": 1}))
			Expect(restored.IDFor("fetch")).To(Equal(2))
		})

		It("never reallocates an id dropped during repair", func() {
			restored, err := toolindex.Restore(
				map[string]int{"search": 0, "fetch": 3},
				map[int]string{0: "search", 3: "other", 5: "search"},
			)
			Expect(err).To(HaveOccurred())

			Expect(restored.NameToID()).To(Equal(map[string]int{"search": 0, "fetch": 3}))
			Expect(restored.IDFor("summarize")).To(Equal(6))
		})

		It("fills in id_to_name entries that are missing", func() {
			restored, err := toolindex.Restore(map[string]int{"search": 0, "fetch": 1}, map[int]string{0: "search"})
			Expect(err).To(HaveOccurred())
			Expect(restored.IDToName()).To(Equal(map[int]string{0: "search", 1: "fetch"}))
		})

		It("resumes allocation above ids reserved by other containers", func() {
			restored, err := toolindex.Restore(nil, nil)
			Expect(err).NotTo(HaveOccurred())

			restored.Reserve(4)
			restored.Reserve(2)
			Expect(restored.IDFor("search")).To(Equal(5))
		})

		It("drops negative ids", func() {
			restored, err := toolindex.Restore(map[string]int{"bad": -1, "ok": 0}, map[int]string{0: "ok"})
			Expect(err).To(HaveOccurred())
			Expect(restored.Len()).To(Equal(1))
		})
	})
})
