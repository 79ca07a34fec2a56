package mail

import (
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"workspace-hub/internal/data/entity"
	"workspace-hub/pkg/utils"

	"go.uber.org/zap"
)

// Mailer is the delivery collaborator. The core only needs a boolean
// outcome; transport mechanics stay behind this interface.
type Mailer interface {
	SendOTP(email, code string, purpose entity.OTPPurpose, displayName string) error
	SendWorkspaceInvite(email, workspaceName, workspaceCode, invitedBy string) error
}

// ==================== SMTP ====================

type smtpMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	return &smtpMailer{
		config: config,
		log:    log.With(zap.String("component", "mailer")),
	}
}

func (m *smtpMailer) SendOTP(email, code string, purpose entity.OTPPurpose, displayName string) error {
	subject := "Your verification code"
	if purpose == entity.OTPPurposePasswordReset {
		subject = "Your password reset code"
	}

	body := fmt.Sprintf("Hi %s,\r\n\r\nYour code is: %s\r\n\r\nIt expires shortly. If you did not request this, ignore this email.\r\n",
		displayName, code)

	return m.send(email, subject, body)
}

func (m *smtpMailer) SendWorkspaceInvite(email, workspaceName, workspaceCode, invitedBy string) error {
	subject := fmt.Sprintf("You were added to workspace %s", workspaceName)
	body := fmt.Sprintf("Hi,\r\n\r\n%s added you to the workspace %q.\r\nJoin code: %s\r\n",
		invitedBy, workspaceName, workspaceCode)

	return m.send(email, subject, body)
}

// send delivers one message over SMTP with a bounded dial timeout so a
// dead mail server cannot hang a request.
func (m *smtpMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		m.log.Error("Failed to dial SMTP server", zap.Error(err), zap.String("addr", addr))
		return fmt.Errorf("dial smtp %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("AUTH"); ok {
		auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.config.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + m.config.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	if _, err := wc.Write([]byte(msg)); err != nil {
		wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return client.Quit()
}

// ==================== DEV ====================

// logMailer prints messages to the log instead of sending them. Used
// when no SMTP host is configured.
type logMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) Mailer {
	return &logMailer{log: log.With(zap.String("component", "mailer"))}
}

func (m *logMailer) SendOTP(email, code string, purpose entity.OTPPurpose, displayName string) error {
	m.log.Info("OTP email (dev mode, not sent)",
		zap.String("email", email),
		zap.String("code", code),
		zap.String("purpose", string(purpose)),
	)
	return nil
}

func (m *logMailer) SendWorkspaceInvite(email, workspaceName, workspaceCode, invitedBy string) error {
	m.log.Info("Workspace invite email (dev mode, not sent)",
		zap.String("email", email),
		zap.String("workspace", workspaceName),
	)
	return nil
}
