package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/storage"
	"github.com/aircode610/MouseTron/pkg/storage/sqlite"
	testutils "github.com/aircode610/MouseTron/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	Context("in memory", func() {
		testutils.StorageDriverSpecs(func() storage.Driver {
			d, err := sqlite.NewDriver(context.Background(), ":memory:")
			Expect(err).NotTo(HaveOccurred())
			return d
		})
	})

	Context("on disk", func() {
		var dbPath string

		BeforeEach(func() {
			tmpDir, err := os.MkdirTemp("", "mousetron-sqlite-*")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, tmpDir)
			dbPath = filepath.Join(tmpDir, "executions.db")
		})

		It("keeps executions across reopen", func() {
			ctx := context.Background()

			d, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			exec, err := d.Put(ctx, []string{"search", "fetch"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Close()).To(Succeed())

			reopened, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			got, err := reopened.Get(ctx, exec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Steps).To(Equal([]string{"search", "fetch"}))
			Expect(got.Timestamp.Equal(exec.Timestamp)).To(BeTrue())
		})
	})
})
