package servecmder

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/pkg/config"
	"github.com/aircode610/MouseTron/pkg/logger"
	"github.com/aircode610/MouseTron/pkg/memory/local"
	"github.com/aircode610/MouseTron/pkg/metrics"
	"github.com/aircode610/MouseTron/pkg/storage/inmemory"
)

var _ = Describe("NewServeCmd", func() {
	It("registers the server flags", func() {
		cmd := NewServeCmd()
		for _, name := range []string{"listen", "sqlite", "postgres", "containers-dir", "events-provider", "log-file"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("rejects positional arguments", func() {
		cmd := NewServeCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})
})

var _ = Describe("newService", func() {
	It("wires memory, storage, artifacts and the event pool", func() {
		cfg := config.NewDefaultConfig()
		cfg.Artifacts.Dir = filepath.Join(GinkgoT().TempDir(), "artifacts")

		mem, err := local.New(local.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		c := &serveCommander{}
		svc, err := c.newService(cfg, mem, inmemory.NewDriver(), metrics.NewRecorder(), logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(svc.Close)

		result, err := svc.Record(context.Background(), []string{"search", "fetch"})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Execution).NotTo(BeNil())
		Expect(result.Execution.ID).To(Equal(int64(1)))
		Expect(result.Recommendations.Stable).NotTo(BeEmpty())
	})
})
