package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"mentorspractice/internal/models"
)

// EmailService sends lead-notification emails via Amazon SES
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	toEmail   string
	enabled   bool
}

// NewEmailService creates a new email service. If fromEmail is empty the
// service is created disabled and all sends become no-ops.
func NewEmailService(awsRegion, fromEmail, fromName, toEmail string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)
	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendNewLeadEmail notifies the coaching staff that a new visitor registered
// their contact details on the practice site.
func (s *EmailService) SendNewLeadEmail(ctx context.Context, identity models.Identity) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): new lead %s", identity.Phone)
		return nil
	}
	if s.toEmail == "" {
		log.Println("Skipping lead email: LEAD_TO_EMAIL not configured")
		return nil
	}

	email := identity.Email
	if email == "" {
		email = "(not provided)"
	}

	subject := fmt.Sprintf("New practice lead: %s", identity.Name)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #1e3a8a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>New Practice Lead</h1>
		</div>
		<div class="content">
			<p>A new visitor registered on the IELTS practice site:</p>
			<ul>
				<li><strong>Name:</strong> %s</li>
				<li><strong>Phone:</strong> %s</li>
				<li><strong>Email:</strong> %s</li>
			</ul>
		</div>
		<div class="footer">
			<p>This is an automated notification from the practice site. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, identity.Name, identity.Phone, email)

	textBody := fmt.Sprintf(`A new visitor registered on the IELTS practice site:

Name:  %s
Phone: %s
Email: %s

---
This is an automated notification from the practice site. Please do not reply.
`, identity.Name, identity.Phone, email)

	return s.sendEmail(ctx, s.toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
