package mcpcmder_test

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mcpcmder "github.com/papercomputeco/mentor/cmd/mentor/mcp"
)

func freeAddr() string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	defer l.Close()
	return l.Addr().String()
}

var _ = Describe("NewMCPCmd", func() {
	It("registers a --listen flag", func() {
		cmd := mcpcmder.NewMCPCmd()
		flag := cmd.Flags().Lookup("listen")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("l"))
		Expect(flag.DefValue).To(BeEmpty())
	})

	It("serves streamable HTTP until cancelled", func() {
		addr := freeAddr()

		cmd := mcpcmder.NewMCPCmd()
		cmd.Flags().Bool("debug", false, "")
		cmd.Flags().String("config-dir", "", "")
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"--config-dir", GinkgoT().TempDir(),
			"--embedding-provider", "hash",
			"--listen", addr,
		})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- cmd.ExecuteContext(ctx) }()

		body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"v0"}}}`
		Eventually(func() int {
			req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/mcp", addr), strings.NewReader(body))
			if err != nil {
				return 0
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json, text/event-stream")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return 0
			}
			resp.Body.Close()
			return resp.StatusCode
		}, 5*time.Second, 50*time.Millisecond).Should(Equal(http.StatusOK))

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})
})
