// Package document drafts legal letters from a transcript using per-category templates.
package document

import (
	"bytes"
	"context"
	"strings"
	"text/template"
	"time"

	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/model"
)

const dateLayout = "January 2, 2006"

type letterData struct {
	UserName      string
	Date          string
	Excerpt       string
	Transcript    string
	CategoryUpper string
}

type letter struct {
	tmpl       *template.Template
	heading    string
	excerptLen int
}

func newLetter(name, text string, excerptLen int) letter {
	return letter{
		tmpl:       template.Must(template.New(name).Parse(text)),
		heading:    strings.SplitN(text, "\n", 2)[0],
		excerptLen: excerptLen,
	}
}

// generators holds one letter per category. Other and unknown categories use generic.
var (
	generators = map[model.Category]letter{
		model.CategoryPropertyDispute: newLetter("property", propertyDisputeTemplate, 200),
		model.CategoryWageTheft:       newLetter("wage", wageTheftTemplate, 200),
		model.CategoryLoanRecovery:    newLetter("loan", loanRecoveryTemplate, 200),
		model.CategoryHarassment:      newLetter("harassment", harassmentTemplate, 200),
		model.CategoryContractDispute: newLetter("contract", contractDisputeTemplate, 200),
		model.CategoryDomesticAbuse:   newLetter("domestic", domesticAbuseTemplate, 150),
	}
	generic = newLetter("generic", genericTemplate, 0)
)

// Generate drafts the letter for category dated today.
func Generate(transcript string, category model.Category, userName string) string {
	return GenerateAt(transcript, category, userName, time.Now())
}

// GenerateAt drafts the letter for category dated at the given time.
func GenerateAt(transcript string, category model.Category, userName string, at time.Time) string {
	l, ok := generators[category]
	if !ok {
		l = generic
	}

	label := string(category)
	if label == "" {
		label = string(model.CategoryOther)
	}
	data := letterData{
		UserName:      userName,
		Date:          at.Format(dateLayout),
		Excerpt:       excerpt(transcript, l.excerptLen),
		Transcript:    transcript,
		CategoryUpper: strings.ToUpper(label),
	}

	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, data); err != nil {
		// templates are parsed at init and data is plain strings
		panic(err)
	}
	return buf.String()
}

// TemplateHint is the letter heading for category, given to language models as a guide.
func TemplateHint(category model.Category) string {
	l, ok := generators[category]
	if !ok {
		l = generic
	}
	return l.heading
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// TemplateGenerator fills the category template without calling a model.
// Used when no language model is configured.
type TemplateGenerator struct {
	Now func() time.Time
}

func (g TemplateGenerator) Generate(ctx context.Context, req client.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return GenerateAt(req.Transcript, model.Category(req.Category), req.UserName, now()), nil
}
