package imagecmder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/generation"
	"github.com/papercomputeco/scribe/pkg/llm"
)

var _ = Describe("Image Command", func() {
	var (
		server *httptest.Server
		got    llm.GenerateRequest
		png    = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
		image  string
	)

	BeforeEach(func() {
		image = base64.StdEncoding.EncodeToString(png)
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/generate"))
			Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())

			w.Header().Set("Content-Type", "application/x-ndjson")
			enc := json.NewEncoder(w)
			Expect(enc.Encode(llm.StreamChunk{Completed: 1, Total: 2})).To(Succeed())
			Expect(enc.Encode(llm.StreamChunk{Completed: 2, Total: 2})).To(Succeed())
			Expect(enc.Encode(llm.StreamChunk{Image: image, Done: true})).To(Succeed())
		}))

		GinkgoT().Setenv("XDG_CONFIG_HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(config.EnvHost, server.URL)
		GinkgoT().Setenv(config.EnvAPIKey, "secret")
		got = llm.GenerateRequest{}
	})

	AfterEach(func() {
		server.Close()
	})

	It("reports progress and saves the decoded image", func() {
		outDir := GinkgoT().TempDir()
		stderr := &bytes.Buffer{}

		cmd := NewImageCmd(&cli.Flags{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(stderr)
		cmd.SetArgs([]string{"-o", outDir, "  a lighthouse at dusk  "})

		Expect(cmd.ExecuteContext(context.Background())).To(Succeed())

		Expect(got.Model).To(Equal("x/z-image-turbo"))
		Expect(got.Prompt).To(Equal("a lighthouse at dusk"))

		Expect(stderr.String()).To(ContainSubstring("step 1/2"))
		Expect(stderr.String()).To(ContainSubstring("step 2/2"))

		data, err := os.ReadFile(filepath.Join(outDir, generation.ImageFilename))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(png))
	})
})
