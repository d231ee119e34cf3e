package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESSender creates a new SES-backed AlertSender that mails toAddress.
func NewSESSender(region, fromAddress, fromName, toAddress string) (port.AlertSender, error) {
	if toAddress == "" {
		return nil, fmt.Errorf("SES alert sender requires a recipient address")
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesSender) SendDocumentFailure(ctx context.Context, doc *domain.Document, reason string) error {
	subject, textBody, htmlBody := buildFailureMessage(doc, reason)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildFailureMessage(doc *domain.Document, reason string) (subject, text, htmlBody string) {
	class := string(doc.DocumentClass)
	if class == "" {
		class = "unclassified"
	}
	subject = fmt.Sprintf("Document processing failed: %s", doc.FileName)
	text = fmt.Sprintf("Document %s (%s, %s) failed after %d attempt(s).\n\nOrganization: %s\nStorage key: %s\nError: %s\n",
		doc.ID, doc.FileName, class, doc.ProcessingAttempts, doc.OrganizationID, doc.StorageKey, reason)
	htmlBody = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Document processing failed</h2>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Document</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">File</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Class</td><td>%s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Organization</td><td>%s</td></tr>
  </table>
  <p style="color: #b91c1c; word-break: break-all;">%s</p>
</body>
</html>`, doc.ID, html.EscapeString(doc.FileName), class, doc.OrganizationID, html.EscapeString(reason))
	return subject, text, htmlBody
}
