package articlecmder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/scribe/cmd/scribe/cli"
	"github.com/papercomputeco/scribe/pkg/config"
	"github.com/papercomputeco/scribe/pkg/llm"
)

var _ = Describe("Article Command", func() {
	var (
		server  *httptest.Server
		got     llm.ChatRequest
		outDir  string
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		runArgs func(args ...string) error
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer secret"))
			Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())

			w.Header().Set("Content-Type", "application/x-ndjson")
			enc := json.NewEncoder(w)
			for _, part := range []string{"# Kopi", " Gayo"} {
				Expect(enc.Encode(llm.StreamChunk{Message: llm.Message{Role: llm.RoleAssistant, Content: part}})).To(Succeed())
			}
			Expect(enc.Encode(llm.StreamChunk{Done: true})).To(Succeed())
		}))

		GinkgoT().Setenv("XDG_CONFIG_HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(config.EnvHost, server.URL)
		GinkgoT().Setenv(config.EnvAPIKey, "secret")

		outDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		got = llm.ChatRequest{}

		runArgs = func(args ...string) error {
			cmd := NewArticleCmd(&cli.Flags{})
			cmd.SetOut(stdout)
			cmd.SetErr(stderr)
			cmd.SetArgs(args)
			return cmd.ExecuteContext(context.Background())
		}
	})

	AfterEach(func() {
		server.Close()
	})

	It("streams the article and saves it", func() {
		Expect(runArgs("Kopi Nusantara", "-k", "kopi, gayo", "-l", "short", "--tone", "Storytelling", "-o", outDir)).To(Succeed())

		Expect(got.Model).To(Equal("gpt-oss:120b"))
		Expect(got.Messages).To(HaveLen(1))
		Expect(got.Messages[0].Role).To(Equal(llm.RoleUser))
		Expect(got.Messages[0].Content).To(ContainSubstring("~500 words"))
		Expect(got.Messages[0].Content).To(ContainSubstring("Storytelling"))
		Expect(got.Messages[0].Content).To(ContainSubstring("Kopi Nusantara"))
		Expect(got.Messages[0].Content).To(ContainSubstring("kopi, gayo"))

		Expect(stdout.String()).To(Equal("# Kopi Gayo\n"))

		matches, err := filepath.Glob(filepath.Join(outDir, "artikel_*.txt"))
		Expect(err).NotTo(HaveOccurred())
		Expect(matches).To(HaveLen(1))
		data, err := os.ReadFile(matches[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("# Kopi Gayo"))
	})

	It("uses the chosen model", func() {
		Expect(runArgs("Kopi", "-m", "gpt-oss:20b", "-o", outDir)).To(Succeed())
		Expect(got.Model).To(Equal("gpt-oss:20b"))
	})

	It("rejects models that are not offered", func() {
		err := runArgs("Kopi", "-m", "llama2", "-o", outDir)
		Expect(err).To(MatchError(ContainSubstring("not offered")))
		Expect(got.Model).To(BeEmpty())
	})

	It("rejects an unknown length", func() {
		err := runArgs("Kopi", "-l", "epic", "-o", outDir)
		Expect(err).To(HaveOccurred())
		Expect(got.Model).To(BeEmpty())
	})

	It("rejects an empty title", func() {
		err := runArgs("  ", "-o", outDir)
		Expect(err).To(MatchError(ContainSubstring("title is required")))
	})

	It("fails before streaming without a credential", func() {
		GinkgoT().Setenv(config.EnvAPIKey, "")

		err := runArgs("Kopi", "-o", outDir)
		Expect(err).To(MatchError(config.ErrConfigurationMissing))
		Expect(got.Model).To(BeEmpty())
	})
})
