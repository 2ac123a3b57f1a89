package interviewquiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatResultsEmail(t *testing.T) {
	email, err := FormatResultsEmail(ResultsEmail{
		Domain:     "JavaScript",
		Difficulty: "Beginner",
		Score:      2,
		Total:      3,
		UserEmail:  "a@b.co",
		UserName:   "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, "Quiz Results: JavaScript - Beginner Level", email.Subject)
	assert.Contains(t, email.Text, "Hello Ada,")
	assert.Contains(t, email.Text, "- Score: 2 out of 3")
	assert.Contains(t, email.Text, "- Percentage: 67%")
	assert.Contains(t, email.HTML, "<strong>Domain:</strong> JavaScript")
	assert.Contains(t, email.HTML, "<strong>Percentage:</strong> 67%")
}

func TestFormatResultsEmailDefaultsAndEscaping(t *testing.T) {
	email, err := FormatResultsEmail(ResultsEmail{Domain: "<b>CSS</b>", Difficulty: "Easy", Score: 0, Total: 0})
	require.NoError(t, err)

	assert.Contains(t, email.Text, "Hello User,")
	assert.Contains(t, email.Text, "- Percentage: 0%")
	assert.NotContains(t, email.HTML, "<b>CSS</b>")
	assert.Contains(t, email.HTML, "&lt;b&gt;CSS&lt;/b&gt;")
}

func TestSMTPMailerRequiresConfiguration(t *testing.T) {
	mailer := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})

	err := mailer.SendResults(context.Background(), ResultsEmail{Domain: "CSS", UserEmail: "a@b.co", Total: 1})
	assert.Error(t, err)
}
