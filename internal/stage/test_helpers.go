package stage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/flarebyte/relmail/internal/artifact"
	"github.com/flarebyte/relmail/internal/notify"
)

func mustWrite(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// recordingMailer captures sent messages and returns err for every send.
type recordingMailer struct {
	err error

	mu   sync.Mutex
	sent []notify.Message
}

func (m *recordingMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.sent...)
}

var artifactFixture = artifact.Artifact{Version: "1.2.0", Path: "/rel/app.apk"}
