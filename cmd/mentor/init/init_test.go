package initcmder_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/mentor/cmd/mentor/init"
	"github.com/papercomputeco/mentor/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("accepts zero arguments", func() {
		cmd := initcmder.NewInitCmd()
		err := cmd.Args(cmd, []string{})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		err := cmd.Args(cmd, []string{"extra"})
		Expect(err).To(HaveOccurred())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
		out     *bytes.Buffer
	)

	run := func(args ...string) error {
		out = &bytes.Buffer{}
		cmd := initcmder.NewInitCmd()
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "mentor-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	It("creates a .mentor directory in the current directory", func() {
		Expect(run()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".mentor"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("creates a config.toml with default values", func() {
		Expect(run()).To(Succeed())

		cfg := loadConfig(tmpDir)
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Generation.Provider).To(Equal("cohere"))
		Expect(cfg.Watch.Extensions).To(Equal([]string{".py"}))
		Expect(cfg.VectorStore.Provider).To(Equal("chromem"))
	})

	It("succeeds when .mentor directory already exists", func() {
		err := os.MkdirAll(filepath.Join(tmpDir, ".mentor"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		Expect(run()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".mentor"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("does not overwrite existing contents when already initialized", func() {
		mentorDir := filepath.Join(tmpDir, ".mentor")
		err := os.MkdirAll(mentorDir, 0o755)
		Expect(err).NotTo(HaveOccurred())

		testFile := filepath.Join(mentorDir, "config.toml")
		err = os.WriteFile(testFile, []byte("[watch]\ndir = \"/src\"\n"), 0o644)
		Expect(err).NotTo(HaveOccurred())

		Expect(run()).To(Succeed())

		data, err := os.ReadFile(testFile)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("[watch]\ndir = \"/src\"\n"))
	})

	Describe("--preset with provider presets", func() {
		It("creates config.toml with openai preset", func() {
			Expect(run("--preset", "openai")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Version).To(Equal(config.CurrentV))
			Expect(cfg.Generation.Provider).To(Equal("openai"))
			Expect(cfg.Generation.Model).To(Equal("gpt-4o-mini"))
		})

		It("creates config.toml with anthropic preset", func() {
			Expect(run("--preset", "anthropic")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Version).To(Equal(config.CurrentV))
			Expect(cfg.Generation.Provider).To(Equal("anthropic"))
		})

		It("creates config.toml with ollama preset", func() {
			Expect(run("--preset", "ollama")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Version).To(Equal(config.CurrentV))
			Expect(cfg.Generation.Provider).To(Equal("ollama"))
			Expect(cfg.Generation.Target).To(Equal("http://localhost:11434"))
			Expect(cfg.Embedding.Provider).To(Equal("ollama"))
			Expect(cfg.Embedding.Target).To(Equal("http://localhost:11434"))
			Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))
		})

		It("rejects unknown preset names", func() {
			err := run("--preset", "invalid-provider")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown preset"))
		})
	})

	Describe("--preset with remote URL", func() {
		It("fetches and writes remote config.toml", func() {
			remoteCfg := `version = 0

[generation]
provider = "openai"
target = "https://gateway.internal/v1"
model = "gpt-4.1-mini"

[embedding]
model = "text-embedding-3-small"
dimensions = 1536
`
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				fmt.Fprint(w, remoteCfg)
			}))
			defer server.Close()

			Expect(run("--preset", server.URL)).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Version).To(Equal(0))
			Expect(cfg.Generation.Provider).To(Equal("openai"))
			Expect(cfg.Generation.Target).To(Equal("https://gateway.internal/v1"))
			Expect(cfg.Generation.Model).To(Equal("gpt-4.1-mini"))
			Expect(cfg.Embedding.Model).To(Equal("text-embedding-3-small"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(1536)))
		})

		It("returns error for non-200 HTTP response", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			err := run("--preset", server.URL)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("HTTP 404"))
		})

		It("returns error for invalid TOML from URL", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, "this is not valid toml [[[")
			}))
			defer server.Close()

			err := run("--preset", server.URL)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("parsing"))
		})

		It("returns error for unreachable URL", func() {
			err := run("--preset", "http://127.0.0.1:1")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("fetching remote config"))
		})
	})

	It("writes a .gitignore that keeps secrets and memory out", func() {
		Expect(run()).To(Succeed())

		data, err := os.ReadFile(filepath.Join(tmpDir, ".mentor", ".gitignore"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("credentials.toml"))
		Expect(string(data)).To(ContainSubstring("memory/"))
	})

	It("keeps an existing .gitignore", func() {
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".mentor"), 0o755)).To(Succeed())
		ignore := filepath.Join(tmpDir, ".mentor", ".gitignore")
		Expect(os.WriteFile(ignore, []byte("custom\n"), 0o644)).To(Succeed())

		Expect(run()).To(Succeed())

		data, err := os.ReadFile(ignore)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("custom\n"))
	})

	It("points at auth for hosted providers", func() {
		Expect(run("--preset", "anthropic")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("mentor auth anthropic"))
		Expect(out.String()).To(ContainSubstring("ANTHROPIC_API_KEY"))

		Expect(run("--preset", "ollama")).To(Succeed())
		Expect(out.String()).NotTo(ContainSubstring("mentor auth"))
	})

	Describe("--watch-dir", func() {
		It("records an absolute watch directory", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, "src"), 0o755)).To(Succeed())
			Expect(run("--watch-dir", "src")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(filepath.IsAbs(cfg.Watch.Dir)).To(BeTrue())
			Expect(filepath.Base(cfg.Watch.Dir)).To(Equal("src"))
			Expect(out.String()).To(ContainSubstring("Watching:"))
		})

		It("updates an existing config without resetting it", func() {
			Expect(run("--preset", "openai")).To(Succeed())
			Expect(run("--watch-dir", "lib")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Generation.Provider).To(Equal("openai"))
			Expect(filepath.Base(cfg.Watch.Dir)).To(Equal("lib"))
		})
	})

	Describe("--preset overwrites config on re-init", func() {
		It("overwrites existing config.toml when re-running with a different preset", func() {
			Expect(run("--preset", "openai")).To(Succeed())

			cfg := loadConfig(tmpDir)
			Expect(cfg.Generation.Provider).To(Equal("openai"))

			Expect(run("--preset", "anthropic")).To(Succeed())

			cfg = loadConfig(tmpDir)
			Expect(cfg.Generation.Provider).To(Equal("anthropic"))
		})
	})
})

// loadConfig is a test helper that reads and parses the config.toml from the
// .mentor directory within the given base directory.
func loadConfig(baseDir string) *config.Config {
	configPath := filepath.Join(baseDir, ".mentor", "config.toml")
	data, err := os.ReadFile(configPath)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	cfg := &config.Config{}
	err = toml.Unmarshal(data, cfg)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return cfg
}
