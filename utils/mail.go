package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

type EmailData struct {
	Name            string
	Message         string
	VerificationURL string
	LogoURL         string
}

func renderEmailBody(data EmailData, templatePath string) (string, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

func SendEmail(emailTo string, emailSubject string, data EmailData, templatePath string) error {
	body, err := renderEmailBody(data, templatePath)
	if err != nil {
		return err
	}

	from := os.Getenv("FROM_EMAIL")
	message := fmt.Sprintf(
		"From: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		from,
		emailSubject,
		body,
	)

	auth := smtp.PlainAuth(
		"",
		from,
		os.Getenv("FROM_EMAIL_PASSWORD"),
		os.Getenv("FROM_EMAIL_SMTP"),
	)

	if err := smtp.SendMail(os.Getenv("SMTP_ADDRESS"), auth, from, []string{emailTo}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
