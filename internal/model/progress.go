package model

// Progress is the UI-facing view of a case's pipeline progress.
type Progress struct {
	CaseID        string           `json:"caseId"`
	Status        CaseStatus       `json:"status"`
	StepIndex     int              `json:"stepIndex"`
	TotalSteps    int              `json:"totalSteps"`
	Percent       int              `json:"percent"`
	CurrentStep   string           `json:"currentStep,omitempty"`
	IsComplete    bool             `json:"isComplete"`
	IsFailed      bool             `json:"isFailed"`
	IsTerminal    bool             `json:"isTerminal"`
	DocumentURL   string           `json:"documentUrl,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
	Steps         []ProcessingStep `json:"steps"`
}
