package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/legalvoice/api/internal/auth"
	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/config"
	"github.com/legalvoice/api/internal/document"
	"github.com/legalvoice/api/internal/handler"
	"github.com/legalvoice/api/internal/metrics"
	"github.com/legalvoice/api/internal/middleware"
	"github.com/legalvoice/api/internal/pipeline"
	"github.com/legalvoice/api/internal/render"
	"github.com/legalvoice/api/internal/service"
	"github.com/legalvoice/api/internal/store"
	ws "github.com/legalvoice/api/internal/websocket"
)

const (
	testJWTSecret = "test-secret-for-e2e"
	testFilesURL  = "http://localhost:8000/files"
)

// testApp holds all components needed for testing
type testApp struct {
	app     *fiber.App
	cases   *store.MemoryStore
	storage *client.MemoryStorage
}

// setupApp wires the server the way main.go does, with in-memory backends and
// a synchronous dispatcher so a case is fully processed before intake returns.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()

	cases := store.NewMemoryStore()
	storage := client.NewMemoryStorage(testFilesURL)
	collab := pipeline.Collaborators{
		Storage:     storage,
		Transcriber: client.MockTranscriber{},
		Generator:   document.TemplateGenerator{},
		Renderer:    render.NewPDFRenderer(),
		Notifier:    client.NewLogNotifier(log),
	}

	m := metrics.New()
	dispatcher := pipeline.NewInlineDispatcher(context.Background(), false, log)
	p := pipeline.New(cases, collab, dispatcher, m, log, pipeline.Config{
		StageTimeout:     5 * time.Second,
		MaxRetries:       1,
		RetryInitial:     time.Millisecond,
		RetryMaxInterval: time.Millisecond,
	})
	dispatcher.Bind(p)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(cases, 10*time.Millisecond, log)
	go hub.Run(ctx)

	verifier := auth.NewChain(auth.NewHMACVerifier(testJWTSecret))
	caseService := service.NewCaseService(cases, storage, p, validator.New(), m, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    service.MaxAudioSize + 1024*1024,
	})
	handler.Register(app, handler.Routes{
		Health:    handler.NewHealthHandler(handler.HealthInfo{Store: "memory", Storage: "memory", Dispatch: "inline", Auth: true}),
		Auth:      handler.NewAuthHandler(verifier),
		Cases:     handler.NewCaseHandler(caseService, log),
		Files:     handler.NewFileHandler(storage, log),
		Hub:       hub,
		APIAuth:   middleware.NewAuthMiddleware(verifier).Authenticate(),
		RateLimit: config.RateLimitConfig{IntakePerHour: 10000, ReadPerMin: 10000},
		Registry:  m.Registry,
	})

	return &testApp{app: app, cases: cases, storage: storage}
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	signed, err := auth.NewHMACVerifier(testJWTSecret).Sign("test-user-123", "test@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) (*http.Response, error) {
	t.Helper()
	h := map[string]string{"Authorization": "Bearer " + generateToken(t)}
	for k, v := range headers {
		h[k] = v
	}
	return doRequest(app, method, path, body, h)
}

type audioFile struct {
	name        string
	contentType string
	data        []byte
}

// intakeForm builds the multipart body of a case submission.
func intakeForm(t *testing.T, fields map[string]string, file *audioFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="%s"`, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(file.data); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func validFields() map[string]string {
	return map[string]string{
		"userName": "Ana Lopez",
		"email":    "ana@example.com",
		"phone":    "+15551234567",
		"category": "Property Dispute",
		"language": "en",
		"method":   "record",
	}
}

func webmAudio() *audioFile {
	return &audioFile{name: "recording.webm", contentType: "audio/webm", data: []byte("fake-webm-bytes")}
}

// submitCase posts an intake form and returns the response.
func submitCase(t *testing.T, ta *testApp, fields map[string]string, file *audioFile) *http.Response {
	t.Helper()
	body, contentType := intakeForm(t, fields, file)
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/cases", body, map[string]string{
		"Content-Type": contentType,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// assertErrorCode checks the code of the error envelope.
func assertErrorCode(t *testing.T, body map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %s, got %v", code, errObj["code"])
	}
}

func hasPrefix(v interface{}, prefix string) bool {
	s, ok := v.(string)
	return ok && strings.HasPrefix(s, prefix)
}
