package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/legalvoice/api/internal/config"
	mail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Attachment is a file sent along with an email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email is one outgoing message.
type Email struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Notifier delivers email and SMS messages and returns the provider message id.
type Notifier interface {
	NotifyEmail(ctx context.Context, msg Email) (string, error)
	NotifySMS(ctx context.Context, phone, message string) (string, error)
}

// AWSNotifier sends email through SES v2 and SMS through SNS
type AWSNotifier struct {
	ses      *sesv2.Client
	sns      *sns.Client
	from     string
	senderID string
}

// NewAWSNotifier builds SES and SNS clients from the AWS section of the config
func NewAWSNotifier(ctx context.Context, awsCfg *config.AWSConfig, notifyCfg *config.NotifyConfig) (*AWSNotifier, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}
	if awsCfg.AccessKeyID != "" && awsCfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			awsCfg.AccessKeyID,
			awsCfg.SecretAccessKey,
			"",
		)))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSNotifier{
		ses:      sesv2.NewFromConfig(sdkCfg),
		sns:      sns.NewFromConfig(sdkCfg),
		from:     notifyCfg.FromAddress,
		senderID: notifyCfg.SenderID,
	}, nil
}

// NotifyEmail sends a plain text email, as raw MIME when an attachment is present
func (n *AWSNotifier) NotifyEmail(ctx context.Context, msg Email) (string, error) {
	content := &sestypes.EmailContent{
		Simple: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(msg.Body)},
			},
		},
	}
	if msg.Attachment != nil {
		raw, err := buildRawEmail(n.from, msg)
		if err != nil {
			return "", err
		}
		content = &sestypes.EmailContent{Raw: &sestypes.RawMessage{Data: raw}}
	}

	out, err := n.ses.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(n.from),
		Destination:      &sestypes.Destination{ToAddresses: []string{msg.To}},
		Content:          content,
	})
	if err != nil {
		return "", classify(fmt.Errorf("ses send email failed: %w", err))
	}
	return aws.ToString(out.MessageId), nil
}

// NotifySMS publishes a transactional SMS
func (n *AWSNotifier) NotifySMS(ctx context.Context, phone, message string) (string, error) {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if n.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(n.senderID),
		}
	}

	out, err := n.sns.Publish(ctx, input)
	if err != nil {
		return "", classify(fmt.Errorf("sns publish failed: %w", err))
	}
	return aws.ToString(out.MessageId), nil
}

// buildRawEmail renders msg as a MIME message with the attachment for SES raw sends.
func buildRawEmail(from string, msg Email) ([]byte, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if a := msg.Attachment; a != nil {
		err := m.AttachReader(a.Filename, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(a.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render email: %w", err)
	}
	return buf.Bytes(), nil
}

// LogNotifier writes messages to the log instead of sending them.
// Used when notifications are disabled.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyEmail(ctx context.Context, msg Email) (string, error) {
	fields := []zap.Field{
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)),
	}
	if msg.Attachment != nil {
		fields = append(fields, zap.String("attachment", msg.Attachment.Filename))
	}
	n.log.Info("email notification", fields...)
	return fmt.Sprintf("email-%d", time.Now().UnixNano()), nil
}

func (n *LogNotifier) NotifySMS(ctx context.Context, phone, message string) (string, error) {
	n.log.Info("sms notification", zap.String("to", phone), zap.String("message", message))
	return fmt.Sprintf("sms-%d", time.Now().UnixNano()), nil
}
