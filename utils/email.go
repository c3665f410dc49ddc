package utils

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"
)

// SMTP settings are read lazily so tests and workers that never send mail do
// not need them configured.
var (
	smtpTimeout = 10 * time.Second
)

func smtpEnv() (host, port, username, password, fromName, fromEmail string) {
	return os.Getenv("SMTP_HOST"),
		os.Getenv("SMTP_PORT"),
		os.Getenv("SMTP_USERNAME"),
		os.Getenv("SMTP_PASSWORD"),
		os.Getenv("SMTP_FROM_NAME"),
		os.Getenv("SMTP_FROM_EMAIL")
}

// SendEmail delivers a plain-text mail over SMTP with STARTTLS. When SMTP is
// not configured it logs and returns nil, so notification paths stay
// non-fatal in development.
func SendEmail(to, subject, body string) error {
	host, port, username, password, fromName, fromEmail := smtpEnv()

	if host == "" || username == "" || password == "" {
		log.Printf("⚠️ SMTP not configured, skipping email to %s (%s)", to, subject)
		return nil
	}
	if fromEmail == "" {
		fromEmail = username
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", username, password, host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := client.Mail(fromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	from := fromEmail
	if fromName != "" {
		from = fmt.Sprintf("%s <%s>", fromName, fromEmail)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n%s", from, to, subject, body))

	if _, err = w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		log.Printf("⚠️ SMTP QUIT error (non-critical): %v", err)
	}

	return nil
}

// SendResetLink emails a password-reset URL.
func SendResetLink(toEmail, resetToken string) error {
	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5173"
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s", baseURL, resetToken)
	subject := "Reset your password"
	body := fmt.Sprintf("Click here to reset your password: %s\n\nIf you did not request this password reset, please ignore this email.", resetURL)

	return SendEmail(toEmail, subject, body)
}
