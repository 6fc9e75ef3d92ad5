package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"
)

var ErrNoRecipient = errors.New("mail has no recipient")

type SMTPConfig struct {
	FromEmail   string
	Host        string
	SandboxHost string
	Port        int
	Username    string
	Password    string
	Sandbox     bool
}

type MailTrapClient struct {
	cfg    SMTPConfig
	logger *zap.SugaredLogger
}

func NewMailTrapClient(cfg SMTPConfig, logger *zap.SugaredLogger) *MailTrapClient {
	return &MailTrapClient{
		cfg:    cfg,
		logger: logger,
	}
}

type MailOption struct {
	TemplateFile string
	To           []string
	BCC          []string
}

// Render executes the "subject" and "body" blocks of a template.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)

	if err != nil {
		return "", "", err
	}

	subjectBuf := new(bytes.Buffer)

	if err := tmpl.ExecuteTemplate(subjectBuf, "subject", data); err != nil {
		return "", "", err
	}

	bodyBuf := new(bytes.Buffer)

	if err := tmpl.ExecuteTemplate(bodyBuf, "body", data); err != nil {
		return "", "", err
	}

	return strings.TrimSpace(subjectBuf.String()), bodyBuf.String(), nil
}

func (c *MailTrapClient) Send(option *MailOption, data any) error {
	if option == nil {
		return fmt.Errorf("nil mail option received")
	}

	if len(option.To) == 0 {
		return ErrNoRecipient
	}

	subject, body, err := Render(option.TemplateFile, data)

	if err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", c.cfg.FromEmail)
	message.SetHeader("To", option.To...)

	if len(option.BCC) > 0 {
		message.SetHeader("Bcc", option.BCC...)
	}

	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)

	host := c.cfg.Host

	if c.cfg.Sandbox {
		host = c.cfg.SandboxHost
	}

	dialer := gomail.NewDialer(host, c.cfg.Port, c.cfg.Username, c.cfg.Password)

	if err := dialer.DialAndSend(message); err != nil {
		c.logger.Errorw("Failed to send email", "email", option.To, "template", option.TemplateFile, "error", err)
		return err
	}

	c.logger.Infow("Email sent", "email", option.To, "template", option.TemplateFile)
	return nil
}
