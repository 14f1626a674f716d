package servecmder

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/studio"
	"github.com/papercomputeco/scribe/server"
)

var _ = Describe("Serve Command", func() {
	It("serves until the context is cancelled", func() {
		st := studio.New(generation.SourceFunc(nil), config.Default().Models, zap.NewNop())
		srv := server.New(server.Config{Version: "test"}, st, zap.NewNop())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- serve(ctx, srv, ln, zap.NewNop())
		}()

		var body map[string]string
		Eventually(func() error {
			resp, err := http.Get("http://" + ln.Addr().String() + "/health")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			return json.NewDecoder(resp.Body).Decode(&body)
		}, 5*time.Second, 50*time.Millisecond).Should(Succeed())
		Expect(body["status"]).To(Equal("ok"))

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})

	It("fails without a credential", func() {
		GinkgoT().Setenv("XDG_CONFIG_HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(config.EnvAPIKey, "")

		cmd := NewServeCmd(&cli.Flags{})
		cmd.SetArgs([]string{"--listen", "127.0.0.1:0"})
		Expect(cmd.ExecuteContext(context.Background())).To(MatchError(config.ErrConfigurationMissing))
	})
})
