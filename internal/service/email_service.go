package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"familyregistry/internal/config"
	"familyregistry/internal/models"
)

// sesAPI is the part of the SES client used for sending
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends registration notices via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without a sender address the
// service is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, cfg config.EmailConfig, appBaseURL string, debug bool) (*EmailService, error) {
	if cfg.FromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s from=%s", cfg.AWSRegion, cfg.FromEmail)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", cfg.FromEmail, cfg.AWSRegion)
	return newEmailService(sesv2.NewFromConfig(awsCfg), cfg, appBaseURL, debug), nil
}

func newEmailService(client sesAPI, cfg config.EmailConfig, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendRegistrationReceived tells a family their form is waiting for review
func (s *EmailService) SendRegistrationReceived(ctx context.Context, family *models.FamilyRecord) error {
	if !s.shouldSend("registration received", family) {
		return nil
	}

	subject := "We received your family registration"
	intro := "Thank you for registering your family with the community registry."
	detail := "An administrator will review your details shortly. You will receive another email once your registration has been reviewed."
	htmlBody := s.renderHTML(family.FamilyHead, subject, intro, detail, "")
	textBody := s.renderText(family.FamilyHead, intro, detail, "")

	return s.sendEmail(ctx, family.Email, subject, htmlBody, textBody)
}

// SendStatusChanged tells a family the outcome of the review
func (s *EmailService) SendStatusChanged(ctx context.Context, family *models.FamilyRecord) error {
	if !s.shouldSend("status "+string(family.Status), family) {
		return nil
	}

	var subject, intro, detail, link string
	switch family.Status {
	case models.StatusApproved:
		subject = "Your family registration was approved"
		intro = "Good news: your family registration has been approved."
		detail = "You can now sign in with your email address and the date of birth you registered with."
		link = s.appBaseURL + "/login"
	case models.StatusRejected:
		subject = "Your family registration was not approved"
		intro = "Your family registration could not be approved."
		detail = "Please contact the community office if you believe this is a mistake."
	default:
		return nil
	}

	htmlBody := s.renderHTML(family.FamilyHead, subject, intro, detail, link)
	textBody := s.renderText(family.FamilyHead, intro, detail, link)
	return s.sendEmail(ctx, family.Email, subject, htmlBody, textBody)
}

func (s *EmailService) shouldSend(kind string, family *models.FamilyRecord) bool {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Skipping %s email (service disabled) to %s", kind, family.Email)
		}
		return false
	}
	if family.Email == "" {
		log.Printf("Skipping %s email: family %s has no email address", kind, family.ID)
		return false
	}
	return true
}

func (s *EmailService) renderHTML(name, title, intro, detail, link string) string {
	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p style="text-align: center;"><a href="%s" class="button">Sign in</a></p>`, html.EscapeString(link))
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #8a4b2a; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fbf7f2; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #8a4b2a; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>%s</h1></div>
		<div class="content">
			<p>Dear %s,</p>
			<p>%s</p>
			<p>%s</p>
			%s
		</div>
		<div class="footer"><p>This is an automated email from the community registry. Please do not reply.</p></div>
	</div>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(name), html.EscapeString(intro), html.EscapeString(detail), button)
}

func (s *EmailService) renderText(name, intro, detail, link string) string {
	body := fmt.Sprintf("Dear %s,\n\n%s\n\n%s\n", name, intro, detail)
	if link != "" {
		body += "\nSign in: " + link + "\n"
	}
	return body + "\n---\nThis is an automated email from the community registry. Please do not reply.\n"
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: from=%s to=%s subject=%s", fromAddress, toEmail, subject)
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

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
