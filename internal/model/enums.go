package model

// Case status
type CaseStatus string

const (
	CaseStatusPending      CaseStatus = "pending"
	CaseStatusProcessing   CaseStatus = "processing"
	CaseStatusTranscribing CaseStatus = "transcribing"
	CaseStatusGenerating   CaseStatus = "generating"
	CaseStatusCompleted    CaseStatus = "completed"
	CaseStatusFailed       CaseStatus = "failed"
)

var ValidCaseStatuses = []CaseStatus{
	CaseStatusPending, CaseStatusProcessing, CaseStatusTranscribing,
	CaseStatusGenerating, CaseStatusCompleted, CaseStatusFailed,
}

// Rank orders the forward statuses. Failed ranks -1 since it is reachable from any of them.
func (s CaseStatus) Rank() int {
	switch s {
	case CaseStatusPending:
		return 0
	case CaseStatusProcessing:
		return 1
	case CaseStatusTranscribing:
		return 2
	case CaseStatusGenerating:
		return 3
	case CaseStatusCompleted:
		return 4
	}
	return -1
}

func (s CaseStatus) IsValid() bool {
	for _, v := range ValidCaseStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Category is the legal matter a case is filed under.
type Category string

const (
	CategoryLoanRecovery    Category = "Loan Recovery"
	CategoryPropertyDispute Category = "Property Dispute"
	CategoryWageTheft       Category = "Wage Theft"
	CategoryHarassment      Category = "Harassment"
	CategoryContractDispute Category = "Contract Dispute"
	CategoryDomesticAbuse   Category = "Domestic Abuse"
	CategoryOther           Category = "Other"
)

var ValidCategories = []Category{
	CategoryLoanRecovery, CategoryPropertyDispute, CategoryWageTheft, CategoryHarassment,
	CategoryContractDispute, CategoryDomesticAbuse, CategoryOther,
}

func (c Category) IsValid() bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Language
type Language string

const (
	LanguageEN Language = "en"
	LanguageES Language = "es"
	LanguageFR Language = "fr"
	LanguageDE Language = "de"
	LanguageIT Language = "it"
)

var ValidLanguages = []Language{LanguageEN, LanguageES, LanguageFR, LanguageDE, LanguageIT}

// Name returns the English display name of the language.
func (l Language) Name() string {
	switch l {
	case LanguageES:
		return "Spanish"
	case LanguageFR:
		return "French"
	case LanguageDE:
		return "German"
	case LanguageIT:
		return "Italian"
	}
	return "English"
}

// Capture method
type Method string

const (
	MethodRecord Method = "record"
	MethodUpload Method = "upload"
)

// Step status
type StepStatus string

const (
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

// Stage is one pipeline phase. Values are ordered; a case records the last one it completed.
type Stage int

const (
	StageNone Stage = iota
	StageUpload
	StageTranscription
	StageGeneration
	StageDelivery
)

// Step returns the name used in the processing step log.
func (s Stage) Step() string {
	switch s {
	case StageUpload:
		return "upload"
	case StageTranscription:
		return "transcription"
	case StageGeneration:
		return "generation"
	case StageDelivery:
		return "delivery"
	}
	return "none"
}

func (s Stage) String() string {
	return s.Step()
}

// ActiveStatus is the case status while the stage runs.
func (s Stage) ActiveStatus() CaseStatus {
	switch s {
	case StageUpload:
		return CaseStatusProcessing
	case StageTranscription:
		return CaseStatusTranscribing
	case StageGeneration:
		return CaseStatusGenerating
	}
	return CaseStatusCompleted
}

// DoneStatus is the case status after the stage completes.
func (s Stage) DoneStatus() CaseStatus {
	switch s {
	case StageUpload:
		return CaseStatusProcessing
	case StageTranscription:
		return CaseStatusGenerating
	}
	return CaseStatusCompleted
}
