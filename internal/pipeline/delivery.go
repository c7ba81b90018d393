package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/model"
	"go.uber.org/zap"
)

const documentKeyPrefix = "generated-documents"

// DocumentKey is the storage key of the rendered document for a case.
func DocumentKey(caseID, ext string) string {
	return fmt.Sprintf("%s/legal-document-%s.%s", documentKeyPrefix, caseID, ext)
}

// RunDelivery renders the document, stores it and notifies the user. The case
// stays completed whatever the outcome; the delivery step records it.
func (p *Pipeline) RunDelivery(ctx context.Context, caseID string) error {
	return p.runStage(ctx, caseID, model.StageDelivery, func(ctx context.Context, c *model.Case) error {
		meta := client.CaseMeta{
			CaseID:    c.ID,
			UserName:  c.UserName,
			Email:     c.Email,
			Category:  string(c.Category),
			CreatedAt: c.CreatedAt,
		}

		var artifact []byte
		err := p.call(ctx, model.StageDelivery, func(ctx context.Context) error {
			var err error
			artifact, err = p.collab.Renderer.Render(ctx, c.GeneratedDocument, meta)
			return err
		})
		if err != nil {
			return fmt.Errorf("render document: %w", err)
		}

		key := DocumentKey(c.ID, p.collab.Renderer.Extension())
		var url string
		err = p.call(ctx, model.StageDelivery, func(ctx context.Context) error {
			var err error
			url, err = p.collab.Storage.Upload(ctx, key, bytes.NewReader(artifact), p.collab.Renderer.ContentType())
			return err
		})
		if err != nil {
			return fmt.Errorf("store document: %w", err)
		}

		c, err = p.verifyClaim(ctx, caseID, model.StageDelivery, *c.ClaimedAt, func(c *model.Case) {
			c.DocumentURL = url
		})
		if err != nil {
			return err
		}

		attachment := &client.Attachment{
			Filename:    fmt.Sprintf("legal-document-%s.%s", c.ID, p.collab.Renderer.Extension()),
			ContentType: p.collab.Renderer.ContentType(),
			Data:        artifact,
		}
		err = p.call(ctx, model.StageDelivery, func(ctx context.Context) error {
			id, err := p.collab.Notifier.NotifyEmail(ctx, client.Email{
				To:         c.Email,
				Subject:    emailSubject(c),
				Body:       emailBody(c, url),
				Attachment: attachment,
			})
			if err == nil {
				p.log.Info("email sent", zap.String("case_id", c.ID), zap.String("message_id", id))
			}
			return err
		})
		p.metrics.IncNotification("email", err == nil)
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}

		if c.Phone != "" {
			err = p.call(ctx, model.StageDelivery, func(ctx context.Context) error {
				id, err := p.collab.Notifier.NotifySMS(ctx, c.Phone, smsMessage(c, url))
				if err == nil {
					p.log.Info("sms sent", zap.String("case_id", c.ID), zap.String("message_id", id))
				}
				return err
			})
			p.metrics.IncNotification("sms", err == nil)
			if err != nil {
				return fmt.Errorf("send sms: %w", err)
			}
		}

		_, err = p.complete(ctx, caseID, model.StageDelivery, "Document generated and ready for download", nil)
		return err
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func emailSubject(c *model.Case) string {
	return fmt.Sprintf("Your legal document is ready (Case %s)", shortID(c.ID))
}

func emailBody(c *model.Case, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", c.UserName)
	b.WriteString("Your legal document has been successfully generated and is ready for download.\n\n")
	b.WriteString("Case Details:\n")
	fmt.Fprintf(&b, "- Case ID: %s\n", c.ID)
	fmt.Fprintf(&b, "- Category: %s\n", c.Category)
	fmt.Fprintf(&b, "- Created: %s\n\n", c.CreatedAt.Format("January 2, 2006"))
	fmt.Fprintf(&b, "Document URL: %s\n\n", url)
	b.WriteString("Please keep this document for your records. If you need any modifications or have questions, please contact us.\n\n")
	b.WriteString("Best regards,\nLegal Voice AI Team\n")
	return b.String()
}

func smsMessage(c *model.Case, url string) string {
	return fmt.Sprintf("Legal Voice AI: Your legal document (Case %s) is ready. Download: %s", shortID(c.ID), url)
}
