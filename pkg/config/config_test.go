package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/aircode610/MouseTron/pkg/config"
)

var _ = Describe("Configer", func() {
	var (
		tmpDir string
		c      *config.Configer
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mousetron-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		c, err = config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	writeConfig := func(data string) {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
	}

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("overlays file values on the defaults", func() {
			writeConfig(`version = 0

[memory]
k = 3
containers_dir = "/var/lib/mousetron"

[storage]
sqlite_path = "/tmp/mousetron.sqlite"

[catalog]
path = "/etc/mousetron/tools.json"
watch = true

[events]
provider = "kafka"
brokers = ["kafka-1:9092", "kafka-2:9092"]
`)

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Memory.K).To(Equal(3))
			Expect(cfg.Memory.T).To(Equal(50))
			Expect(cfg.Memory.MaxBlockLen).To(Equal(16))
			Expect(cfg.Memory.ContainersDir).To(Equal("/var/lib/mousetron"))
			Expect(cfg.Storage.SQLitePath).To(Equal("/tmp/mousetron.sqlite"))
			Expect(cfg.Catalog.Watch).To(BeTrue())
			Expect(cfg.Events.Provider).To(Equal("kafka"))
			Expect(cfg.Events.Brokers).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
			Expect(cfg.Events.Topic).To(Equal("mousetron.executions"))
			Expect(cfg.API.Listen).To(Equal(":8081"))
		})

		It("returns an error for malformed TOML", func() {
			writeConfig("[memory\nk = ")

			_, err := c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing config TOML")))
		})

		It("rejects an unsupported version", func() {
			writeConfig("version = 7\n")

			_, err := c.LoadConfig()
			Expect(err).To(MatchError(ContainSubstring("unsupported config version 7")))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips every section", func() {
			cfg := config.NewDefaultConfig()
			cfg.Memory.NS = 8
			cfg.Storage.PostgresDSN = "postgres://localhost/mousetron"
			cfg.Artifacts.Dir = "/tmp/recs"

			Expect(c.SaveConfig(cfg)).To(Succeed())

			loaded, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("refuses a nil config", func() {
			Expect(c.SaveConfig(nil)).To(MatchError("cannot save nil config"))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and reads integer keys", func() {
			Expect(c.SetConfigValue("memory.t", "120")).To(Succeed())

			val, err := c.GetConfigValue("memory.t")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("120"))
		})

		It("sets comma separated brokers", func() {
			Expect(c.SetConfigValue("events.brokers", "a:9092, b:9092")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Events.Brokers).To(Equal([]string{"a:9092", "b:9092"}))
		})

		It("rejects non-numeric capacities", func() {
			Expect(c.SetConfigValue("memory.k", "ten")).To(MatchError(ContainSubstring("invalid value for memory.k")))
		})

		It("rejects capacities that fail validation", func() {
			err := c.SetConfigValue("memory.max_block_len", "25")
			Expect(err).To(MatchError(ContainSubstring("memory.max_block_len")))

			_, statErr := os.Stat(c.GetTarget())
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})

		It("rejects unknown keys", func() {
			Expect(c.SetConfigValue("proxy.upstream", "x")).To(MatchError(ContainSubstring("unknown config key")))
			_, err := c.GetConfigValue("proxy.upstream")
			Expect(err).To(HaveOccurred())
		})

		It("preserves other values", func() {
			Expect(c.SetConfigValue("catalog.path", "/tools.json")).To(Succeed())
			Expect(c.SetConfigValue("api.listen", ":9000")).To(Succeed())

			cfg, err := c.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Catalog.Path).To(Equal("/tools.json"))
			Expect(cfg.API.Listen).To(Equal(":9000"))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("lists every key exactly once, memory first", func() {
		keys := config.ValidConfigKeys()
		Expect(keys[0]).To(Equal("memory.k"))
		Expect(keys).To(ContainElements("storage.sqlite_path", "events.topic", "catalog.watch"))

		seen := map[string]bool{}
		for _, k := range keys {
			Expect(seen[k]).To(BeFalse())
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
			seen[k] = true
		}
	})

	It("rejects keys outside the layout", func() {
		Expect(config.IsValidConfigKey("memory")).To(BeFalse())
		Expect(config.IsValidConfigKey("sqlite_path")).To(BeFalse())
	})
})

var _ = Describe("Validate", func() {
	It("accepts the defaults", func() {
		Expect(config.NewDefaultConfig().Validate()).To(Succeed())
	})

	It("names the offending keys", func() {
		cfg := config.NewDefaultConfig()
		cfg.Memory.K = 0
		cfg.Memory.NR = -1
		cfg.Events.Provider = "rabbit"

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("memory.k")))
		Expect(err).To(MatchError(ContainSubstring("memory.nr")))
		Expect(err).To(MatchError(ContainSubstring("events.provider")))
	})

	It("checks the client target is a URL", func() {
		cfg := config.NewDefaultConfig()
		cfg.Client.APITarget = "not a url"

		Expect(cfg.Validate()).To(MatchError(ContainSubstring("client.api_target")))
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mousetron-viper-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)
	})

	It("serves defaults without a config file", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetInt("memory.k")).To(Equal(10))
		Expect(v.GetString("api.listen")).To(Equal(":8081"))
	})

	It("layers file then environment over defaults", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[memory]\nk = 4\nt = 9\n"), 0o600)).To(Succeed())
		GinkgoT().Setenv("MOUSETRON_MEMORY_T", "11")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.FromViper(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Memory.K).To(Equal(4))
		Expect(cfg.Memory.T).To(Equal(11))
		Expect(cfg.Memory.NS).To(Equal(5))
	})

	It("fails FromViper on invalid capacities", func() {
		GinkgoT().Setenv("MOUSETRON_MEMORY_NS", "0")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		_, err = config.FromViper(v)
		Expect(err).To(MatchError(ContainSubstring("memory.ns")))
	})
})

var _ = Describe("Flags", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mousetron-flags-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)
	})

	It("registers flags with defaults from the registry", func() {
		var listen string
		cmd := &cobra.Command{Use: "serve"}
		config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &listen)

		f := cmd.Flags().Lookup("listen")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("l"))
		Expect(f.DefValue).To(Equal(":8081"))
	})

	It("registers uint flags", func() {
		var k uint
		cmd := &cobra.Command{Use: "serve"}
		config.AddUintFlag(cmd, config.Flags, config.FlagWindowSize, &k)

		Expect(cmd.Flags().Lookup("window-size").DefValue).To(Equal("10"))
	})

	It("binds explicitly set flags above the environment", func() {
		GinkgoT().Setenv("MOUSETRON_API_LISTEN", ":7000")

		var listen string
		cmd := &cobra.Command{Use: "serve"}
		config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &listen)
		Expect(cmd.Flags().Set("listen", ":9999")).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPIListen, "missing"})

		Expect(v.GetString("api.listen")).To(Equal(":9999"))
	})

	It("falls through to the environment when the flag is unset", func() {
		GinkgoT().Setenv("MOUSETRON_API_LISTEN", ":7000")

		var listen string
		cmd := &cobra.Command{Use: "serve"}
		config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &listen)

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagAPIListen})

		Expect(v.GetString("api.listen")).To(Equal(":7000"))
	})
})
