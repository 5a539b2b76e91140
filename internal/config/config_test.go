package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/kubev2v/taskengine/internal/config"
)

var _ = Describe("Configuration", func() {
	var fs *pflag.FlagSet

	BeforeEach(func() {
		fs = pflag.NewFlagSet("test", pflag.ContinueOnError)
		config.RegisterFlags(fs, config.NewConfigurationWithDefaults())
	})

	Context("defaults", func() {
		It("should fill every section", func() {
			cfg := config.NewConfigurationWithDefaults()

			Expect(cfg.Server.HTTPPort).To(Equal(8000))
			Expect(cfg.Server.ShutdownTimeout).To(Equal(10 * time.Second))
			Expect(cfg.Pool.Workers).To(Equal(4))
			Expect(cfg.Pool.Order).To(Equal("lifo"))
			Expect(cfg.Store.Path).To(Equal(":memory:"))
			Expect(cfg.LogFormat).To(Equal("console"))
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Context("Load", func() {
		// Given a configuration file, an environment variable and a flag
		// When the configuration is loaded
		// Then flags win over the environment which wins over the file
		It("should layer file, environment and flags", func() {
			// Arrange
			dir, err := os.MkdirTemp("", "config-")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)

			path := filepath.Join(dir, "config.yaml")
			Expect(os.WriteFile(path, []byte("pool:\n  workers: 2\n  order: fifo\nserver:\n  http-port: 7000\n"), 0o600)).To(Succeed())

			GinkgoT().Setenv("TASKENGINE_SERVER_HTTP_PORT", "7100")
			Expect(fs.Parse([]string{"--workers", "6"})).To(Succeed())

			// Act
			cfg, err := config.Load(path, fs)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Pool.Workers).To(Equal(6))
			Expect(cfg.Pool.Order).To(Equal("fifo"))
			Expect(cfg.Server.HTTPPort).To(Equal(7100))
			Expect(cfg.Store.JournalBuffer).To(Equal(256))
		})

		It("should fail on a missing file", func() {
			_, err := config.Load("/nonexistent/config.yaml", fs)
			Expect(err).To(HaveOccurred())
		})

		It("should parse durations from flags", func() {
			Expect(fs.Parse([]string{"--shutdown-timeout", "3s"})).To(Succeed())

			cfg, err := config.Load("", fs)

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.ShutdownTimeout).To(Equal(3 * time.Second))
		})
	})

	Context("Validate", func() {
		It("should reject a bad queue order", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Pool.Order = "random"

			Expect(cfg.Validate()).To(MatchError(ContainSubstring("invalid queue order")))
		})

		It("should require a secret when auth is enabled", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Auth.Enabled = true

			Expect(cfg.Validate()).To(MatchError(ContainSubstring("no secret")))
		})

		It("should report every invalid field", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Server.HTTPPort = 0
			cfg.Pool.Workers = -1

			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("http port")))
			Expect(err).To(MatchError(ContainSubstring("worker count")))
		})
	})

	It("should describe the journal buffer as dropping events once full", func() {
		flag := fs.Lookup("journal-buffer")

		Expect(flag).NotTo(BeNil())
		Expect(flag.Usage).To(ContainSubstring("dropped"))
		Expect(flag.Usage).NotTo(ContainSubstring("block"))
	})

	It("should hide the secret in the debug map", func() {
		cfg := config.NewConfigurationWithDefaults()
		cfg.Auth.Secret = "s3cr3t"

		m := cfg.DebugMap()

		Expect(m["auth"]).To(HaveKeyWithValue("secret", "(hidden)"))
		Expect(m["pool"]).To(HaveKeyWithValue("workers", 4))
	})
})
