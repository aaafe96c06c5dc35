package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"time"

	gomail "gopkg.in/gomail.v2"

	"github.com/mentorloop/api/logger"
)

const (
	sessionReminderTemplate = "session_reminder.html"
	reviewRequestTemplate   = "review_request.html"
)

var templates *template.Template

// InitTemplates parses the embedded email templates. Must be called once
// at startup before any send.
func InitTemplates(fs embed.FS) error {
	t, err := template.ParseFS(fs, "templates/email/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}
	templates = t
	return nil
}

// ReminderData fills the session reminder template.
type ReminderData struct {
	StudentName string
	MentorName  string
	ServiceName string
	SessionTime time.Time
	Window      string // "24 hours" or "1 hour"
}

// ReviewRequestData fills the review request template.
type ReviewRequestData struct {
	StudentName string
	MentorName  string
	ServiceName string
}

// SMTPMailer sends transactional mail over SMTP.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

// SendSessionReminder notifies a student about an upcoming session.
func (m *SMTPMailer) SendSessionReminder(to string, data ReminderData) error {
	subject := fmt.Sprintf("Reminder: your session with %s in %s", data.MentorName, data.Window)
	return sendEmail(to, subject, sessionReminderTemplate, data)
}

// SendReviewRequest asks a student to review a completed session.
func (m *SMTPMailer) SendReviewRequest(to string, data ReviewRequestData) error {
	subject := fmt.Sprintf("How was your session with %s?", data.MentorName)
	return sendEmail(to, subject, reviewRequestTemplate, data)
}

func sendEmail(toEmail, subject, templateName string, data interface{}) error {
	if templates == nil {
		return fmt.Errorf("email templates not initialized")
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, templateName, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templateName, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		logger.ErrorLogger.Errorf("Invalid SMTP port: %v", err)
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         smtpHost,
	}

	if err := dialer.DialAndSend(mailer); err != nil {
		logger.ErrorLogger.Errorf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.InfoLogger.Infof("Sent %s email to %s", templateName, toEmail)
	return nil
}
