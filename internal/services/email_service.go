package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/modular-erp-api/internal/config"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// emailSender is the part of the Resend client the service uses
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	config *config.Config
	sender emailSender
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config: cfg,
		sender: client.Emails,
	}
}

// Helper function to safely get string from pointer
func getStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// checkEmailPreconditions reports whether a message to address should be sent
func (s *EmailService) checkEmailPreconditions(address, operation string) (bool, error) {
	if !s.config.EnableEmailNotifications {
		logger.Debug("Email notifications disabled, skipping", "operation", operation)
		return false, nil
	}
	if s.config.ResendAPIKey == "" {
		return false, fmt.Errorf("cannot send %s: RESEND_API_KEY is not set", operation)
	}
	if strings.TrimSpace(address) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

// SendInvitation e-mails the acceptance link for a pending invitation
func (s *EmailService) SendInvitation(ctx context.Context, invitation *models.UserInvitation, inviterName string) error {
	data := struct {
		Name        string
		InviterName string
		CompanyName string
		Role        string
		Message     string
		AcceptURL   string
		ExpiresAt   string
	}{
		Name:        getStringValue(invitation.Name),
		InviterName: inviterName,
		CompanyName: getStringValue(invitation.CompanyName),
		Role:        invitation.Role,
		Message:     getStringValue(invitation.Message),
		AcceptURL:   fmt.Sprintf("%s/invitations/accept?token=%s", strings.TrimRight(s.config.AppURL, "/"), invitation.Token),
		ExpiresAt:   invitation.ExpiresAt.Format("January 2, 2006 15:04 MST"),
	}
	return s.send(invitation.Email, "You have been invited to Modular ERP", "invitation.html", data)
}

// SendWelcome greets a user whose account was just created
func (s *EmailService) SendWelcome(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		Email  string
		AppURL string
	}{
		Name:   user.Name,
		Email:  user.Email,
		AppURL: s.config.AppURL,
	}
	return s.send(user.Email, "Welcome to Modular ERP", "welcome.html", data)
}

// SendSecurityAlert tells an administrator about a high-severity security event
func (s *EmailService) SendSecurityAlert(ctx context.Context, admin *models.User, event *models.SecurityEvent) error {
	data := struct {
		Name        string
		EventType   string
		Severity    string
		Description string
		IPAddress   string
		OccurredAt  string
		AppURL      string
	}{
		Name:        admin.Name,
		EventType:   event.EventType,
		Severity:    event.Severity,
		Description: event.Description,
		IPAddress:   event.IPAddress,
		OccurredAt:  event.CreatedAt.Format("2006-01-02 15:04:05 MST"),
		AppURL:      s.config.AppURL,
	}
	subject := fmt.Sprintf("Security alert: %s", strings.ReplaceAll(event.EventType, "_", " "))
	return s.send(admin.Email, subject, "security_alert.html", data)
}

// SendPasswordReset e-mails the link that redeems a password reset token
func (s *EmailService) SendPasswordReset(ctx context.Context, user *models.User, token string, expiresAt time.Time) error {
	data := struct {
		Name      string
		ResetURL  string
		ExpiresAt string
	}{
		Name:      user.Name,
		ResetURL:  fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.config.AppURL, "/"), token),
		ExpiresAt: expiresAt.Format("January 2, 2006 15:04 MST"),
	}
	return s.send(user.Email, "Reset your Modular ERP password", "password_reset.html", data)
}

func (s *EmailService) send(to, subject, templateName string, data any) error {
	ok, err := s.checkEmailPreconditions(to, templateName)
	if !ok {
		return err
	}

	body, err := s.renderTemplate(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.sender.Send(params); err != nil {
		logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return err
	}

	logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}

func (s *EmailService) renderTemplate(name string, data any) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
