package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mentor/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
		GinkgoT().Setenv(dotdir.EnvHome, "")
	})

	chdir := func(dir string) {
		GinkgoHelper()
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { os.Chdir(origDir) })
	}

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})

		It("returns the override dir even when a local .mentor dir exists", func() {
			localDir := filepath.Join(tmpDir, ".mentor")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			chdir(tmpDir)

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .mentor dir when it exists and no override is provided", func() {
			localDir := filepath.Join(tmpDir, ".mentor")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())

			chdir(tmpDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})

		It("creates ~/.mentor when no local dir exists and no override is provided", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())

			chdir(emptyDir)

			home := filepath.Join(tmpDir, "home")
			Expect(os.Mkdir(home, 0o755)).To(Succeed())
			GinkgoT().Setenv("HOME", home)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(home, ".mentor")))

			info, err := os.Stat(result)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})
	})

	Describe("discovery", func() {
		It("finds a .mentor dir in a parent directory", func() {
			localDir := filepath.Join(tmpDir, ".mentor")
			nested := filepath.Join(tmpDir, "src", "pkg")
			Expect(os.Mkdir(localDir, 0o755)).To(Succeed())
			Expect(os.MkdirAll(nested, 0o755)).To(Succeed())
			chdir(nested)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localDir))
		})

		It("prefers MENTOR_HOME over a local dir", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".mentor"), 0o755)).To(Succeed())
			chdir(tmpDir)

			envDir := filepath.Join(tmpDir, "shared")
			GinkgoT().Setenv(dotdir.EnvHome, envDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(envDir))

			result, err = m.Target(filepath.Join(tmpDir, "flag"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(tmpDir, "flag")))
		})
	})

	Describe("Path", func() {
		It("joins elements onto the resolved target", func() {
			result, err := m.Path(tmpDir, "chat_memory")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(tmpDir, "chat_memory")))
		})
	})
})
