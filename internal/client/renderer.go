package client

import (
	"context"
	"time"
)

// CaseMeta is the case information printed around a rendered document.
type CaseMeta struct {
	CaseID    string
	UserName  string
	Email     string
	Category  string
	CreatedAt time.Time
}

// Renderer turns document text into a downloadable file.
type Renderer interface {
	Render(ctx context.Context, document string, meta CaseMeta) ([]byte, error)
	ContentType() string
	Extension() string
}
