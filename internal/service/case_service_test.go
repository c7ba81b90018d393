package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStarter struct {
	started []string
	err     error
}

func (s *recordingStarter) Start(ctx context.Context, caseID string) error {
	s.started = append(s.started, caseID)
	return s.err
}

func newService(t *testing.T) (*CaseService, *store.MemoryStore, *client.MemoryStorage, *recordingStarter) {
	t.Helper()
	s := store.NewMemoryStore()
	storage := client.NewMemoryStorage("http://files.local")
	starter := &recordingStarter{}
	return NewCaseService(s, storage, starter, nil, nil, nil), s, storage, starter
}

func validRequest() model.CreateCaseRequest {
	return model.CreateCaseRequest{
		UserName: "Ana Lopez",
		Email:    "ana@example.com",
		Category: model.CategoryPropertyDispute,
		Language: model.LanguageEN,
		Method:   model.MethodRecord,
	}
}

func audio(name, contentType string) AudioUpload {
	return AudioUpload{
		Filename:    name,
		ContentType: contentType,
		Size:        4,
		Body:        strings.NewReader("RIFF"),
	}
}

func TestIntakeCreatesCaseAndStartsPipeline(t *testing.T) {
	svc, s, storage, starter := newService(t)
	ctx := context.Background()

	resp, err := svc.Intake(ctx, validRequest(), audio("recording.webm", "audio/webm"))
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusProcessing, resp.Status)
	assert.Equal(t, []string{resp.CaseID}, starter.started)

	c, err := s.Get(ctx, resp.CaseID)
	require.NoError(t, err)
	assert.Equal(t, model.StageUpload, c.Stage)
	assert.Equal(t, "Ana Lopez", c.UserName)
	require.Len(t, c.ProcessingSteps, 1)
	assert.Equal(t, "upload", c.ProcessingSteps[0].Step)
	assert.Equal(t, model.StepStatusCompleted, c.ProcessingSteps[0].Status)
	assert.Equal(t, "Audio file uploaded successfully", c.ProcessingSteps[0].Message)

	assert.True(t, strings.HasPrefix(c.AudioKey, "audio-uploads/"))
	assert.True(t, strings.HasSuffix(c.AudioKey, ".webm"))
	assert.Equal(t, "http://files.local/"+c.AudioKey, c.AudioFileURL)
	ct, ok := storage.ContentType(c.AudioKey)
	require.True(t, ok)
	assert.Equal(t, "audio/webm", ct)
}

func TestIntakeRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateCaseRequest, *AudioUpload)
		field  string
	}{
		{"empty category", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.Category = "" }, "category"},
		{"unknown category", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.Category = "Tax Fraud" }, "category"},
		{"bad email", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.Email = "not-an-email" }, "email"},
		{"missing name", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.UserName = "" }, "userName"},
		{"blank name", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.UserName = "   " }, "userName"},
		{"unsupported language", func(r *model.CreateCaseRequest, _ *AudioUpload) { r.Language = "pt" }, "language"},
		{"too long", func(r *model.CreateCaseRequest, _ *AudioUpload) {
			d := 601.0
			r.DurationSeconds = &d
		}, "durationSeconds"},
		{"too large", func(_ *model.CreateCaseRequest, a *AudioUpload) { a.Size = MaxAudioSize + 1 }, ""},
		{"not audio", func(_ *model.CreateCaseRequest, a *AudioUpload) { a.ContentType = "image/png" }, ""},
		{"missing file", func(_ *model.CreateCaseRequest, a *AudioUpload) { a.Body = nil }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, s, storage, starter := newService(t)
			req := validRequest()
			a := audio("clip.mp3", "audio/mpeg")
			tt.mutate(&req, &a)

			resp, err := svc.Intake(context.Background(), req, a)
			assert.Nil(t, resp)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			if tt.field != "" {
				assert.Contains(t, verr.Details, tt.field)
			}

			cases, err := s.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, cases)
			assert.Empty(t, storage.Keys(""))
			assert.Empty(t, starter.started)
		})
	}
}

func TestIntakeFailsCaseWhenStartFails(t *testing.T) {
	svc, s, _, starter := newService(t)
	starter.err = errors.New("queue down")

	_, err := svc.Intake(context.Background(), validRequest(), audio("a.wav", "audio/wav"))
	require.Error(t, err)

	require.Len(t, starter.started, 1)
	c, err := s.Get(context.Background(), starter.started[0])
	require.NoError(t, err)
	assert.Equal(t, model.CaseStatusFailed, c.Status)
	assert.NotEmpty(t, c.FailureReason)
}

func TestGetUnknownCase(t *testing.T) {
	svc, _, _, _ := newService(t)
	_, err := svc.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAcceptedAudioType(t *testing.T) {
	assert.True(t, AcceptedAudioType("audio/webm"))
	assert.True(t, AcceptedAudioType("audio/webm;codecs=opus"))
	assert.True(t, AcceptedAudioType("video/mp4"))
	assert.False(t, AcceptedAudioType("audio/"))
	assert.False(t, AcceptedAudioType("video/webm"))
	assert.False(t, AcceptedAudioType(""))
}

func TestAudioKeyDefaultsToWav(t *testing.T) {
	assert.Equal(t, "audio-uploads/abc.wav", AudioKey("abc", "recording"))
	assert.Equal(t, "audio-uploads/abc.m4a", AudioKey("abc", "Voice.M4A"))
}

func TestListFiltersAndStats(t *testing.T) {
	svc, s, _, _ := newService(t)
	ctx := context.Background()
	seed := []*model.Case{
		{UserName: "Ana", Email: "ana@example.com", Category: model.CategoryWageTheft, Status: model.CaseStatusCompleted},
		{UserName: "Ben", Email: "ben@example.com", Category: model.CategoryWageTheft, Status: model.CaseStatusGenerating},
		{UserName: "Cleo", Email: "cleo@example.com", Category: model.CategoryLoanRecovery, Status: model.CaseStatusFailed},
		{UserName: "Dan", Email: "dan@example.com", Category: model.CategoryHarassment, Status: model.CaseStatusCompleted},
	}
	for _, c := range seed {
		_, err := s.Create(ctx, c)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, model.CaseFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Cases, 4)
	assert.Equal(t, model.CaseStats{Total: 4, Completed: 2, Processing: 1, Failed: 1, SuccessRate: 50}, all.Stats)

	byCategory, err := svc.List(ctx, model.CaseFilter{Category: model.CategoryWageTheft})
	require.NoError(t, err)
	assert.Len(t, byCategory.Cases, 2)

	byStatus, err := svc.List(ctx, model.CaseFilter{Status: model.CaseStatusCompleted, Search: "DAN"})
	require.NoError(t, err)
	require.Len(t, byStatus.Cases, 1)
	assert.Equal(t, "Dan", byStatus.Cases[0].UserName)
	assert.Equal(t, 4, byStatus.Stats.Total)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, model.CaseStats{}, ComputeStats(nil))
}

func TestOptions(t *testing.T) {
	svc, _, _, _ := newService(t)
	opts := svc.Options()
	assert.Len(t, opts.Categories, len(model.ValidCategories))
	require.Len(t, opts.Languages, 5)
	assert.Equal(t, model.IntakeOption{Value: "es", Label: "Spanish"}, opts.Languages[1])
}
