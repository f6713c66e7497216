package stage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flarebyte/relmail/internal/config"
	"github.com/flarebyte/relmail/internal/distribution"
	"github.com/flarebyte/relmail/internal/mailtmpl"
	"github.com/flarebyte/relmail/internal/notify"
)

func releaseFixture(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	mustWrite(t, dir, "release/output-metadata.json", `{"elements":[{"versionName":"1.2.0","outputFile":"app.apk"}]}`)
	mustWrite(t, dir, "release/app.apk", "binary")
	mustWrite(t, dir, "CHANGELOG.md", "Fixed bug\n\n##old")
	mustWrite(t, dir, "email.txt", "#subject\nRelease {app_version}\n#body\n<p>{change_log}</p>")
	cfg := &config.Config{
		ReleaseDir:    dir + "/release",
		ChangelogFile: dir + "/CHANGELOG.md",
		TemplateFile:  dir + "/email.txt",
		AppName:       "Demo",
		EmailTo:       "qa@example.com",
		Mail:          config.Mail{User: "ci@example.com", Password: "pw"},
		Distribution:  config.Distribution{Token: "tok", PollInterval: time.Millisecond, PollTimeout: 5 * time.Second},
		Output:        config.OutputJSON,
	}
	cfg.Sanitize()
	return cfg
}

func distributionServer(t *testing.T, uploadReply string, polls *atomic.Int32) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		fmt.Fprint(w, uploadReply)
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			fmt.Fprint(w, `{"status":2001,"message":"Processing"}`)
			return
		}
		fmt.Fprint(w, `{"status":2000,"message":"Ok","link":"https://x/dl","qrcode":"https://x/qr"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

func runAll(ctx context.Context, in Envelope, deps Deps, names ...string) (Envelope, error) {
	out := in
	var err error
	for _, name := range names {
		out, err = Run(ctx, name, out, deps)
		if err != nil {
			return Envelope{}, err
		}
	}
	return out, nil
}

var fullPipeline = []string{
	"locate-artifact", "enrich-git", "upload-artifact", "read-changelog",
	"render-email", "send-email", "write-output",
}

func TestPipeline_EndToEnd(t *testing.T) {
	cfg := releaseFixture(t)
	var polls atomic.Int32
	base := distributionServer(t, `{"job":"J1"}`, &polls)
	cfg.Distribution.UploadURL = base + "/upload"
	cfg.Distribution.StatusURL = base + "/status"
	mailer := &recordingMailer{}
	var stdout bytes.Buffer

	out, err := runAll(context.Background(), Envelope{Meta: &Meta{RunID: "r1", Config: cfg}},
		Deps{Mailer: mailer, Stdout: &stdout}, fullPipeline...)
	require.NoError(t, err)

	assert.Equal(t, "Fixed bug\n", *out.Changes)
	assert.Equal(t, distribution.UploadResult{Link: "https://x/dl", QRCode: "https://x/qr"}, *out.Upload)
	assert.Equal(t, "Release 1.2.0", out.Email.Subject)
	assert.Contains(t, out.Email.Body, "<p>Fixed bug</p>")
	assert.True(t, out.Sent)
	assert.EqualValues(t, 2, polls.Load())

	msgs := mailer.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"qa@example.com"}, msgs[0].To)
	assert.Equal(t, "Release 1.2.0", msgs[0].Subject)

	var sum map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &sum))
	assert.Equal(t, "r1", sum["runId"])
}

func TestUploadStage_NoJob(t *testing.T) {
	cfg := releaseFixture(t)
	var polls atomic.Int32
	base := distributionServer(t, `{"message":"bad token"}`, &polls)
	cfg.Distribution.UploadURL = base + "/upload"
	cfg.Distribution.StatusURL = base + "/status"

	_, err := runAll(context.Background(), Envelope{Meta: &Meta{Config: cfg}}, Deps{}, "locate-artifact", "upload-artifact")
	require.Error(t, err)
	assert.Equal(t, KindUploadSubmission, KindOf(err))
	assert.ErrorIs(t, err, distribution.ErrNoJob)
	assert.EqualValues(t, 0, polls.Load())
}

func TestUploadStage_NeverReady(t *testing.T) {
	cfg := releaseFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/upload" {
			_ = r.ParseMultipartForm(1 << 20)
			fmt.Fprint(w, `{"job":"J"}`)
			return
		}
		fmt.Fprint(w, `{"status":2001,"message":"Processing"}`)
	}))
	t.Cleanup(srv.Close)
	cfg.Distribution.UploadURL = srv.URL + "/upload"
	cfg.Distribution.StatusURL = srv.URL + "/status"
	cfg.Distribution.MaxAttempts = 2

	_, err := runAll(context.Background(), Envelope{Meta: &Meta{Config: cfg}}, Deps{}, "locate-artifact", "upload-artifact")
	assert.Equal(t, KindUploadNeverReady, KindOf(err))
}

func TestLocateStage_NotFound(t *testing.T) {
	cfg := releaseFixture(t)
	cfg.ReleaseDir = t.TempDir()
	_, err := Run(context.Background(), "locate-artifact", Envelope{Meta: &Meta{Config: cfg}}, Deps{})
	assert.Equal(t, KindArtifactNotFound, KindOf(err))
	assert.True(t, strings.HasPrefix(err.Error(), "locate-artifact: artifact not found"))
}

func TestChangelogStage_ReadFailure(t *testing.T) {
	cfg := releaseFixture(t)
	cfg.ChangelogFile = cfg.ChangelogFile + ".missing"
	_, err := Run(context.Background(), "read-changelog", Envelope{Meta: &Meta{Config: cfg}}, Deps{})
	assert.Equal(t, KindChangelogRead, KindOf(err))
}

func renderInput(cfg *config.Config) Envelope {
	changes := "Fixed bug\n"
	return Envelope{
		Meta:     &Meta{Config: cfg},
		Artifact: &artifactFixture,
		Upload:   &distribution.UploadResult{Link: "https://x/dl", QRCode: "https://x/qr"},
		Changes:  &changes,
	}
}

func TestRenderStage_UnknownPlaceholder(t *testing.T) {
	cfg := releaseFixture(t)
	cfg.TemplateFile = mustWrite(t, t.TempDir(), "bad.txt", "#subject\n{nope}\n#body\nx")
	_, err := Run(context.Background(), "render-email", renderInput(cfg), Deps{})
	assert.Equal(t, KindTemplate, KindOf(err))
	assert.ErrorIs(t, err, mailtmpl.ErrTemplate)
}

func TestRenderStage_MissingUpload(t *testing.T) {
	cfg := releaseFixture(t)
	in := renderInput(cfg)
	in.Upload = nil
	_, err := Run(context.Background(), "render-email", in, Deps{})
	assert.Equal(t, KindTemplate, KindOf(err))
}

func TestSendStage_ClassifiesFailures(t *testing.T) {
	cases := map[Kind]error{
		KindMailAuth:         fmt.Errorf("%w: 535", notify.ErrAuth),
		KindMailRefused:      fmt.Errorf("%w: bad@x", notify.ErrRecipientsRefused),
		KindMailProtocol:     fmt.Errorf("%w: 554", notify.ErrProtocol),
		KindMailUnclassified: errors.New("connection reset"),
	}
	for want, sendErr := range cases {
		cfg := releaseFixture(t)
		in := Envelope{Meta: &Meta{Config: cfg}, Email: &mailtmpl.Email{Subject: "s", Body: "b"}}
		_, err := Run(context.Background(), "send-email", in, Deps{Mailer: &recordingMailer{err: sendErr}})
		assert.Equal(t, want, KindOf(err), sendErr.Error())
	}
}

func TestEnrichGit_DisabledPassthrough(t *testing.T) {
	cfg := releaseFixture(t)
	in := Envelope{Meta: &Meta{Config: cfg}}
	out, err := Run(context.Background(), "enrich-git", in, Deps{})
	require.NoError(t, err)
	assert.Nil(t, out.Git)
}

func TestEnrichGit_NotARepo(t *testing.T) {
	cfg := releaseFixture(t)
	cfg.GitRepo = t.TempDir()
	_, err := Run(context.Background(), "enrich-git", Envelope{Meta: &Meta{Config: cfg}}, Deps{})
	assert.Equal(t, KindGit, KindOf(err))
}

func TestWritePreview(t *testing.T) {
	var buf bytes.Buffer
	in := Envelope{Email: &mailtmpl.Email{Subject: "Release 1.0", Body: "<p>x</p>"}}
	_, err := Run(context.Background(), "write-preview", in, Deps{Stdout: &buf})
	require.NoError(t, err)
	assert.Equal(t, "Subject: Release 1.0\n\n<p>x</p>\n", buf.String())
}

func TestRun_UnknownStage(t *testing.T) {
	_, err := Run(context.Background(), "nope", Envelope{}, Deps{})
	assert.EqualError(t, err, "unknown stage: nope")
}

func TestError_SingleLine(t *testing.T) {
	err := &Error{Stage: "send-email", Kind: KindMailProtocol, Err: errors.New("554 5.7.1\n  rejected")}
	assert.Equal(t, "send-email: 554 5.7.1 rejected", err.Error())
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
