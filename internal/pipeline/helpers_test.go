package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/document"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	mu      sync.Mutex
	calls   int
	errs    []error
	block   chan struct{}
	started chan struct{}
	result  client.Transcript
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioKey, languageHint string) (*client.Transcript, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= len(f.errs) && f.errs[n-1] != nil {
		return nil, f.errs[n-1]
	}
	t := f.result
	if t.Text == "" {
		t = client.Transcript{
			Text:       "My landlord kept my security deposit of $1,200 after I moved out of 123 Main Street.",
			Confidence: 0.94,
			Language:   languageHint,
		}
	}
	return &t, nil
}

func (f *fakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	inner client.Generator
}

func (g *countingGenerator) Generate(ctx context.Context, req client.GenerateRequest) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.inner.Generate(ctx, req)
}

func (g *countingGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type textRenderer struct{}

func (textRenderer) Render(ctx context.Context, doc string, meta client.CaseMeta) ([]byte, error) {
	return []byte("%PDF-fake " + meta.CaseID), nil
}
func (textRenderer) ContentType() string { return "application/pdf" }
func (textRenderer) Extension() string   { return "pdf" }

type fakeNotifier struct {
	mu       sync.Mutex
	emails   []client.Email
	sms      []string
	emailErr error
	smsErr   error
}

func (n *fakeNotifier) NotifyEmail(ctx context.Context, msg client.Email) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.emailErr != nil {
		return "", n.emailErr
	}
	n.emails = append(n.emails, msg)
	return "email-1", nil
}

func (n *fakeNotifier) NotifySMS(ctx context.Context, phone, message string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.smsErr != nil {
		return "", n.smsErr
	}
	n.sms = append(n.sms, phone+"|"+message)
	return "sms-1", nil
}

type dispatch struct {
	caseID string
	stage  model.Stage
}

type recordingDispatcher struct {
	mu    sync.Mutex
	calls []dispatch
	err   error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, caseID string, stage model.Stage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatch{caseID, stage})
	return d.err
}

func (d *recordingDispatcher) Stages() []model.Stage {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Stage, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.stage
	}
	return out
}

type fixture struct {
	store       *store.MemoryStore
	storage     *client.MemoryStorage
	transcriber *fakeTranscriber
	generator   *countingGenerator
	notifier    *fakeNotifier
	pipeline    *Pipeline
}

func testConfig() Config {
	return Config{
		StageTimeout:     time.Second,
		MaxRetries:       3,
		RetryInitial:     time.Millisecond,
		RetryMaxInterval: 2 * time.Millisecond,
	}
}

func newFixture(t *testing.T, d Dispatcher, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		store:       store.NewMemoryStore(),
		storage:     client.NewMemoryStorage("http://files.test"),
		transcriber: &fakeTranscriber{},
		generator:   &countingGenerator{inner: document.TemplateGenerator{}},
		notifier:    &fakeNotifier{},
	}
	f.pipeline = New(f.store, Collaborators{
		Storage:     f.storage,
		Transcriber: f.transcriber,
		Generator:   f.generator,
		Renderer:    textRenderer{},
		Notifier:    f.notifier,
	}, d, nil, nil, cfg)
	return f
}

func newSyncFixture(t *testing.T) *fixture {
	d := NewInlineDispatcher(context.Background(), false, nil)
	f := newFixture(t, d, testConfig())
	d.Bind(f.pipeline)
	return f
}

// seed stores a case whose upload stage already completed.
func (f *fixture) seed(t *testing.T, phone string) string {
	t.Helper()
	c := &model.Case{
		UserName: "Sarah Johnson",
		Email:    "sarah@x.com",
		Phone:    phone,
		Category: model.CategoryPropertyDispute,
		Language: model.LanguageEN,
		Method:   model.MethodRecord,
		AudioKey: "audio-uploads/a.webm",
		Stage:    model.StageUpload,
	}
	c.AppendStep(model.StageUpload, model.StepStatusCompleted, "Audio file uploaded successfully", time.Now())
	id, err := f.store.Create(context.Background(), c)
	require.NoError(t, err)
	return id
}

func (f *fixture) get(t *testing.T, id string) *model.Case {
	t.Helper()
	c, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return c
}

func steps(c *model.Case) []string {
	out := make([]string, len(c.ProcessingSteps))
	for i, s := range c.ProcessingSteps {
		out[i] = s.Step + ":" + string(s.Status)
	}
	return out
}

var errPermanent = errors.New("unsupported audio encoding")
