package interviewquiz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"gopkg.in/gomail.v2"
)

const mailSenderName = "IT Interview Hub"

// ResultsEmail is the summary mailed to a user after a quiz
type ResultsEmail struct {
	Domain     string
	Difficulty string
	Score      int
	Total      int
	UserEmail  string
	UserName   string
}

// Mailer delivers result emails
type Mailer interface {
	SendResults(ctx context.Context, email ResultsEmail) error
}

// FormattedEmail is a rendered message
type FormattedEmail struct {
	Subject string
	Text    string
	HTML    string
}

var resultsTextTemplate = texttemplate.Must(texttemplate.New("results.txt").Parse(`Quiz Results - IT Interview Hub

Hello {{.Name}},

Thank you for completing the quiz! Here are your results:

Quiz Summary:
- Domain: {{.Domain}}
- Difficulty Level: {{.Difficulty}}
- Score: {{.Score}} out of {{.Total}}
- Percentage: {{.Percentage}}%

Keep practicing to improve your knowledge!

Best regards,
IT Interview Hub
`))

var resultsHTMLTemplate = htmltemplate.Must(htmltemplate.New("results.html").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #2563eb;">Quiz Results - IT Interview Hub</h2>
  <p>Hello {{.Name}},</p>
  <p>Thank you for completing the quiz! Here are your results:</p>
  <div style="background: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #0f172a;">Quiz Summary</h3>
    <p><strong>Domain:</strong> {{.Domain}}</p>
    <p><strong>Difficulty Level:</strong> {{.Difficulty}}</p>
    <p><strong>Score:</strong> {{.Score}} out of {{.Total}}</p>
    <p><strong>Percentage:</strong> {{.Percentage}}%</p>
  </div>
  <p style="margin-top: 30px;">Keep practicing to improve your knowledge!</p>
  <p>Best regards,<br>IT Interview Hub</p>
</div>
`))

// FormatResultsEmail renders the subject and both bodies
func FormatResultsEmail(email ResultsEmail) (FormattedEmail, error) {
	data := struct {
		Name       string
		Domain     string
		Difficulty string
		Score      int
		Total      int
		Percentage int
	}{
		Name:       valueOr(email.UserName, "User"),
		Domain:     email.Domain,
		Difficulty: email.Difficulty,
		Score:      email.Score,
		Total:      email.Total,
		Percentage: Percentage(email.Score, email.Total),
	}

	var text, html bytes.Buffer
	if err := resultsTextTemplate.Execute(&text, data); err != nil {
		return FormattedEmail{}, fmt.Errorf("failed to render text body: %w", err)
	}
	if err := resultsHTMLTemplate.Execute(&html, data); err != nil {
		return FormattedEmail{}, fmt.Errorf("failed to render html body: %w", err)
	}

	return FormattedEmail{
		Subject: fmt.Sprintf("Quiz Results: %s - %s Level", email.Domain, email.Difficulty),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer creates a mailer for the relay in cfg
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// SendResults renders and sends the results email. ctx is checked before dialing only;
// gomail has no cancellation.
func (m *SMTPMailer) SendResults(ctx context.Context, email ResultsEmail) error {
	if !m.cfg.Configured() {
		return errors.New("email transport is not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	formatted, err := FormatResultsEmail(email)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.User, mailSenderName)
	msg.SetHeader("To", email.UserEmail)
	msg.SetHeader("Subject", formatted.Subject)
	msg.SetBody("text/plain", formatted.Text)
	msg.AddAlternative("text/html", formatted.HTML)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
