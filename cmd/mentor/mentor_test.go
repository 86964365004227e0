package mentorcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mentorcmder "github.com/papercomputeco/mentor/cmd/mentor"
)

var _ = Describe("NewMentorCmd", func() {
	It("registers every subcommand", func() {
		cmd := mentorcmder.NewMentorCmd()

		var names []string
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"watch", "analyze", "chat", "recall", "history", "mcp",
			"config", "init", "auth", "version",
		))
	})

	It("has global --debug and --config-dir flags", func() {
		cmd := mentorcmder.NewMentorCmd()

		flag := cmd.PersistentFlags().Lookup("debug")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("keeps subcommand shorthands clear of the global ones", func() {
		cmd := mentorcmder.NewMentorCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"watch", "--help"})
		Expect(cmd.Execute()).To(Succeed())
	})

	It("runs history against an empty config dir", func() {
		cmd := mentorcmder.NewMentorCmd()

		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"history",
			"--config-dir", GinkgoT().TempDir(),
			"--embedding-provider", "hash",
		})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No turns stored."))
	})
})
