package window_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/memory"
	"github.com/aircode610/MouseTron/pkg/memory/window"
)

var _ = Describe("Window", func() {
	It("rejects a non-positive capacity", func() {
		_, err := window.New(0)

		var cfgErr *memory.ConfigError
		Expect(err).To(BeAssignableToTypeOf(cfgErr))
		Expect(err.Error()).To(ContainSubstring("k must be > 0"))
	})

	It("never exceeds k and evicts the oldest block first", func() {
		w, err := window.New(3)
		Expect(err).NotTo(HaveOccurred())

		for i := range 10 {
			evicted := w.Push(memory.Block{i})
			Expect(w.Len()).To(BeNumerically("<=", 3))
			if i < 3 {
				Expect(evicted).To(BeNil())
			} else {
				Expect(evicted).To(Equal(memory.Block{i - 3}))
			}
		}

		Expect(w.Blocks()).To(Equal([]memory.Block{{7}, {8}, {9}}))
		Expect(w.Cap()).To(Equal(3))
	})

	It("stores a copy of each pushed block", func() {
		w, _ := window.New(2)
		block := memory.Block{1, 2}
		w.Push(block)
		block[0] = 99

		Expect(w.Blocks()[0]).To(Equal(memory.Block{1, 2}))
	})

	Describe("Restore", func() {
		It("keeps only the last k blocks", func() {
			w, err := window.Restore(2, []memory.Block{{1}, {2}, {3}})
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Blocks()).To(Equal([]memory.Block{{2}, {3}}))
		})

		It("skips empty blocks", func() {
			w, err := window.Restore(5, []memory.Block{{1}, {}, {2}})
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Len()).To(Equal(2))
		})
	})
})
