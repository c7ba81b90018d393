package model

import (
	"time"

	"github.com/google/uuid"
)

// Case is one user's submitted legal issue and its processing record.
type Case struct {
	ID       string   `json:"id"`
	UserName string   `json:"userName"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Category Category `json:"category"`
	Language Language `json:"language"`
	Method   Method   `json:"method"`

	Status CaseStatus `json:"status"`

	AudioKey          string   `json:"-"`
	AudioFileURL      string   `json:"audioFileUrl,omitempty"`
	Transcription     string   `json:"transcription,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	DetectedLanguage  string   `json:"detectedLanguage,omitempty"`
	GeneratedDocument string   `json:"generatedDocument,omitempty"`
	DocumentURL       string   `json:"documentUrl,omitempty"`
	FailureReason     string   `json:"failureReason,omitempty"`

	ProcessingSteps []ProcessingStep `json:"processingSteps"`

	Stage       Stage      `json:"stage"`
	ActiveStage Stage      `json:"activeStage,omitempty"`
	ClaimedAt   *time.Time `json:"claimedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProcessingStep is one entry of the case audit log.
type ProcessingStep struct {
	Step      string     `json:"step"`
	Status    StepStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Message   string     `json:"message"`
}

// NewCaseID returns a fresh case identifier.
func NewCaseID() string {
	return uuid.New().String()
}

// AppendStep records a finished stage in the audit log.
func (c *Case) AppendStep(stage Stage, status StepStatus, message string, at time.Time) {
	c.ProcessingSteps = append(c.ProcessingSteps, ProcessingStep{
		Step:      stage.Step(),
		Status:    status,
		Timestamp: at,
		Message:   message,
	})
}

// Clone returns a deep copy so callers never share the step slice with a store.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	out := *c
	out.ProcessingSteps = append([]ProcessingStep(nil), c.ProcessingSteps...)
	if c.Confidence != nil {
		v := *c.Confidence
		out.Confidence = &v
	}
	if c.ClaimedAt != nil {
		v := *c.ClaimedAt
		out.ClaimedAt = &v
	}
	return &out
}

// CasePatch is a partial update. Nil fields are left untouched.
type CasePatch struct {
	Status            *CaseStatus
	AudioFileURL      *string
	Transcription     *string
	GeneratedDocument *string
	DocumentURL       *string
}

// Apply writes the non-nil fields onto c.
func (p CasePatch) Apply(c *Case) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.AudioFileURL != nil {
		c.AudioFileURL = *p.AudioFileURL
	}
	if p.Transcription != nil {
		c.Transcription = *p.Transcription
	}
	if p.GeneratedDocument != nil {
		c.GeneratedDocument = *p.GeneratedDocument
	}
	if p.DocumentURL != nil {
		c.DocumentURL = *p.DocumentURL
	}
}

// CreateCaseRequest holds the intake form fields. The audio payload travels separately.
type CreateCaseRequest struct {
	UserName        string   `json:"userName" form:"userName" validate:"required,min=1,max=200"`
	Email           string   `json:"email" form:"email" validate:"required,email"`
	Phone           string   `json:"phone" form:"phone" validate:"omitempty,max=32"`
	Category        Category `json:"category" form:"category" validate:"required,oneof='Loan Recovery' 'Property Dispute' 'Wage Theft' 'Harassment' 'Contract Dispute' 'Domestic Abuse' 'Other'"`
	Language        Language `json:"language" form:"language" validate:"omitempty,oneof=en es fr de it"`
	Method          Method   `json:"method" form:"method" validate:"required,oneof=record upload"`
	DurationSeconds *float64 `json:"durationSeconds" form:"durationSeconds" validate:"omitempty,min=0,max=600"`
}

// CreateCaseResponse is returned once a case is accepted.
type CreateCaseResponse struct {
	CaseID  string     `json:"caseId"`
	Status  CaseStatus `json:"status"`
	Message string     `json:"message"`
}

// CaseFilter narrows the case list.
type CaseFilter struct {
	Status   CaseStatus `query:"status"`
	Category Category   `query:"category"`
	Search   string     `query:"q"`
}

// CaseStats summarizes the case list.
type CaseStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Processing  int `json:"processing"`
	Pending     int `json:"pending"`
	Failed      int `json:"failed"`
	SuccessRate int `json:"successRate"`
}

// CaseListResponse represents the case list
type CaseListResponse struct {
	Cases []*Case   `json:"cases"`
	Stats CaseStats `json:"stats"`
}

// IntakeOption is one selectable value on the intake form.
type IntakeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// IntakeOptionsResponse lists the categories and languages accepted at intake
type IntakeOptionsResponse struct {
	Categories []IntakeOption `json:"categories"`
	Languages  []IntakeOption `json:"languages"`
}

// StageTaskPayload is the queued work item for one pipeline stage.
type StageTaskPayload struct {
	CaseID string `json:"caseId"`
	Stage  Stage  `json:"stage"`
}
