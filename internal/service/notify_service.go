package service

import (
	"context"
	"courtbooking/internal/config"
	"courtbooking/internal/db"
	"courtbooking/internal/entities"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is told about every reservation change the system applies. A failing
// notifier never undoes the change.
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, entities.Notification) error { return nil }

// MultiNotifier fans a notification out to every member and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n entities.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EmailSender delivers one plain-text email.
type EmailSender interface {
	SendEmail(ctx context.Context, toEmail, toName, subject, body string) error
}

// SMSSender delivers one text message.
type SMSSender interface {
	SendSMS(ctx context.Context, toNumber, body string) error
}

// MessageNotifier tells the customer about their reservation by email and SMS.
// Either channel may be nil.
type MessageNotifier struct {
	Email  EmailSender
	SMS    SMSSender
	logger *slog.Logger
}

func NewMessageNotifier(email EmailSender, sms SMSSender, logger *slog.Logger) *MessageNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageNotifier{Email: email, SMS: sms, logger: logger.With("component", "notifier")}
}

// NewMessageNotifierFromConfig wires whichever channels have credentials.
func NewMessageNotifierFromConfig(cfg *config.Config, logger *slog.Logger) *MessageNotifier {
	var email EmailSender
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		email = NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName)
	}
	var sms SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioFromNumber != "" {
		sms = NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	}
	return NewMessageNotifier(email, sms, logger)
}

func (m *MessageNotifier) Notify(ctx context.Context, n entities.Notification) error {
	r := n.Reservation
	subject, body := renderMessage(n)

	var errs []error
	if m.Email != nil && hasContact(r.Email) {
		if err := m.Email.SendEmail(ctx, r.Email, r.CustomerName, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	if m.SMS != nil && hasContact(r.Phone) {
		if !strings.HasPrefix(r.Phone, "+") {
			m.logger.Warn("phone number is not in E.164 form, SMS may fail", "phone", r.Phone)
		}
		if err := m.SMS.SendSMS(ctx, r.Phone, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func hasContact(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, db.DefaultContact)
}

func renderMessage(n entities.Notification) (subject, body string) {
	r := n.Reservation
	verb := "confirmed"
	if n.Kind == entities.NotificationCancelled {
		verb = "cancelled"
	}
	subject = fmt.Sprintf("Court %d on %s at %s %s", r.Court, r.Date.Format(db.DateLayout), r.TimeSlot, verb)
	body = fmt.Sprintf("Hello %s,\n\nYour reservation of court %d on %s at %s has been %s.\n",
		r.CustomerName, r.Court, r.Date.Format("Mon 02 Jan 2006"), r.TimeSlot, verb)
	return subject, body
}

type SendGridSender struct {
	client   *sendgrid.Client
	fromMail string
	fromName string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey), fromMail: fromEmail, fromName: fromName}
}

func (s *SendGridSender) SendEmail(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromMail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email to %s via SendGrid: %w", toEmail, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSID,
		Password:   authToken,
		AccountSid: accountSID,
	})
	return &TwilioSender{client: client, fromNumber: fromNumber}
}

func (s *TwilioSender) SendSMS(_ context.Context, toNumber, body string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("sending SMS to %s: %w", toNumber, err)
	}
	return nil
}
