package recordcmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/aircode610/MouseTron/api"
	mousetroncmder "github.com/aircode610/MouseTron/cmd/mousetron"
)

var _ = Describe("record command", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := mousetroncmder.NewMouseTronCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config-dir", configDir, "record"}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	It("records locally into the containers directory", func() {
		out, err := execute("search", "fetch")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("2 tools"))

		data, err := os.ReadFile(filepath.Join(configDir, "containers", "history.jsonl"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("search"))
	})

	It("prints the execution id when a database is configured", func() {
		db := filepath.Join(GinkgoT().TempDir(), "mousetron.sqlite")
		out, err := execute("--sqlite", db, "search")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("#1"))
	})

	It("rejects blocks above the length limit", func() {
		tools := make([]string, 17)
		for i := range tools {
			tools[i] = string(rune('a' + i))
		}
		_, err := execute(tools...)
		Expect(err).To(HaveOccurred())
	})

	It("posts to a running server in remote mode", func() {
		var got api.RecordRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/tools"))
			Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(api.RecordResponse{
				Status:      "success",
				ToolCount:   len(got.Steps),
				ExecutionID: 42,
			})
		}))
		DeferCleanup(server.Close)

		out, err := execute("--remote", "--api-target", server.URL, "search", "fetch", "summarize")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Steps).To(Equal([]string{"search", "fetch", "summarize"}))
		Expect(out).To(ContainSubstring("3 tools"))
		Expect(out).To(ContainSubstring("#42"))
	})
})
