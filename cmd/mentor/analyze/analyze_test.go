package analyzecmder_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	analyzecmder "github.com/papercomputeco/mentor/cmd/mentor/analyze"
	"github.com/papercomputeco/mentor/pkg/watcher"
)

func newCmd(configDir, target string, args ...string) (*cobra.Command, *bytes.Buffer) {
	cmd := analyzecmder.NewAnalyzeCmd()
	cmd.Flags().Bool("debug", false, "")
	cmd.Flags().String("config-dir", "", "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{
		"--config-dir", configDir,
		"--embedding-provider", "hash",
		"--embedding-dimensions", "16",
		"--provider", "ollama",
		"--provider-target", target,
	}, args...))
	return cmd, &out
}

var _ = Describe("NewAnalyzeCmd", func() {
	var (
		server    *httptest.Server
		prompts   []string
		configDir string
		file      string
	)

	BeforeEach(func() {
		prompts = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
			}
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			prompts = append(prompts, req.Messages[0].Content)
			json.NewEncoder(w).Encode(map[string]any{
				"message": map[string]any{"role": "assistant", "content": "Missing import for os."},
				"done":    true,
			})
		}))
		DeferCleanup(server.Close)

		configDir = GinkgoT().TempDir()
		file = filepath.Join(GinkgoT().TempDir(), "main.py")
		Expect(os.WriteFile(file, []byte("print(os.getcwd())\n"), 0o600)).To(Succeed())
	})

	It("requires exactly one file", func() {
		cmd, _ := newCmd(configDir, server.URL)
		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("has a --chat flag", func() {
		cmd := analyzecmder.NewAnalyzeCmd()
		flag := cmd.Flags().Lookup("chat")
		Expect(flag).NotTo(BeNil())
		Expect(flag.DefValue).To(Equal("false"))
	})

	It("prints the analysis of the file", func() {
		cmd, out := newCmd(configDir, server.URL, file)
		Expect(cmd.Execute()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Missing import for os."))
		Expect(prompts).To(HaveLen(1))
		Expect(prompts[0]).To(ContainSubstring("print(os.getcwd())"))
	})

	It("opens a chat with --chat", func() {
		cmd, out := newCmd(configDir, server.URL, file, "--chat")
		cmd.SetIn(strings.NewReader("what is wrong?\nexit\n"))
		Expect(cmd.Execute()).To(Succeed())

		Expect(prompts).To(HaveLen(2))
		Expect(prompts[1]).To(ContainSubstring("what is wrong?"))
		Expect(out.String()).To(ContainSubstring("Exiting chat mode"))
	})

	It("rejects a file with no code", func() {
		Expect(os.WriteFile(file, []byte("  \n\t\n"), 0o600)).To(Succeed())

		cmd, _ := newCmd(configDir, server.URL, file)
		Expect(cmd.Execute()).To(MatchError(watcher.ErrEmptyArtifact))
		Expect(prompts).To(BeEmpty())
	})

	It("reports a missing file", func() {
		cmd, _ := newCmd(configDir, server.URL, filepath.Join(configDir, "nope.py"))
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("reading")))
	})
})
