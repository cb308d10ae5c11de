package replaycmder_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mousetroncmder "github.com/aircode610/MouseTron/cmd/mousetron"
	replaycmder "github.com/aircode610/MouseTron/cmd/mousetron/replay"
)

const patterns = `search, fetch, summarize

-
search,fetch
  , ,
create_event, get_event_link, send_email
-
`

var _ = Describe("ParsePatterns", func() {
	It("skips blank and separator lines and trims names", func() {
		blocks, err := replaycmder.ParsePatterns(strings.NewReader(patterns))
		Expect(err).NotTo(HaveOccurred())
		Expect(blocks).To(Equal([][]string{
			{"search", "fetch", "summarize"},
			{"search", "fetch"},
			{"create_event", "get_event_link", "send_email"},
		}))
	})

	It("returns nothing for an empty file", func() {
		blocks, err := replaycmder.ParsePatterns(strings.NewReader("\n-\n\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(blocks).To(BeEmpty())
	})
})

var _ = Describe("replay command", func() {
	var (
		configDir string
		file      string
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		file = filepath.Join(GinkgoT().TempDir(), "patterns.txt")
		Expect(os.WriteFile(file, []byte(patterns), 0o644)).To(Succeed())
	})

	run := func(args ...string) string {
		var out bytes.Buffer
		cmd := mousetroncmder.NewMouseTronCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
		Expect(cmd.Execute()).To(Succeed())
		return out.String()
	}

	It("prints recommendations in demo mode without persisting", func() {
		out := run("replay", "--demo", file)
		Expect(out).To(ContainSubstring("Recorded:"))
		Expect(out).To(ContainSubstring("search, fetch"))

		_, err := os.Stat(filepath.Join(configDir, "containers"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("persists blocks into the containers directory", func() {
		run("replay", file)

		_, err := os.Stat(filepath.Join(configDir, "containers", "history.jsonl"))
		Expect(err).NotTo(HaveOccurred())

		out := run("recommend", "--json")
		Expect(out).To(ContainSubstring(`"tool_name": "search, fetch"`))
	})
})
