package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mousetron-dotdir-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("creates and returns the override directory", func() {
			dir := filepath.Join(tmpDir, "nested", "state")

			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers a local .mousetron directory over the home directory", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".mousetron"), 0o755)).To(Succeed())

			wd, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmpDir)).To(Succeed())
			DeferCleanup(os.Chdir, wd)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(tmpDir, ".mousetron")))
		})
	})

	Describe("ContainersDir", func() {
		It("returns the configured directory untouched", func() {
			dir, err := m.ContainersDir(tmpDir, "/srv/containers")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal("/srv/containers"))
		})

		It("defaults to containers/ under the target", func() {
			dir, err := m.ContainersDir(tmpDir, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(tmpDir, "containers")))
		})
	})
})
