// Package managers handles the sending of emails for account activation and
// the public contact form using the Mailgun service and the Hermes package
// for email formatting.
package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"kanzlei-server/internal/config"
)

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendActivationMail(email, name, token string) error
	SendConfirmationMail(email, name string) error
	SendContactMail(fromName, fromEmail, subject, message string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes      *hermes.Hermes
	Mailgun     *mailgun.MailgunImpl
	Environment string
	Recipient   string
	From        string
}

// SendActivationMail sends an activation email to a newly created user with
// the one-time token needed to set a first password.
func (mm *MailManager) SendActivationMail(email, name, token string) error {
	if mm.Environment != "production" {
		log.Info("Skipping activation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"An account has been created for you on the Kanzlei Weber & Partner website.",
				"Before you can log in, you need to set a password.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To activate your account, open the admin area and enter the following activation code:",
					InviteCode:   token,
				},
			},
			Outros: []string{
				"The code is valid for 24 hours. If it expires, an administrator can issue a new one.",
			},
		},
	}

	return mm.send(email, "Activate your account", mailBody)
}

// SendConfirmationMail confirms to a user that their account has been activated.
func (mm *MailManager) SendConfirmationMail(email, name string) error {
	if mm.Environment != "production" {
		log.Info("Skipping confirmation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"Your account has been successfully activated.",
				"You can now log in to the admin area with your email address and password.",
			},
		},
	}

	return mm.send(email, "Account successfully activated", mailBody)
}

// SendContactMail relays a contact form submission to the firm's inbox.
func (mm *MailManager) SendContactMail(fromName, fromEmail, subject, message string) error {
	if mm.Environment != "production" {
		log.Info("Skipping contact mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: "Team",
			Intros: []string{
				fmt.Sprintf("New contact form submission from %s (%s):", fromName, fromEmail),
				message,
			},
		},
	}

	return mm.send(mm.Recipient, "Contact form: "+subject, mailBody)
}

func (mm *MailManager) send(to, subject string, mailBody hermes.Email) error {
	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	msg := mm.Mailgun.NewMessage(mm.From, subject, "", to)
	msg.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, msg)
	if err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", to)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured
// Mailgun and Hermes settings. Outside production, mails are logged and skipped.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if cfg.Environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	mailgunInstance := mailgun.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:      "Kanzlei Weber & Partner",
				Link:      "https://kanzlei-weber.de/",
				Copyright: "© Kanzlei Weber & Partner Rechtsanwälte",
			},
		},
		Mailgun:     mailgunInstance,
		Environment: cfg.Environment,
		Recipient:   cfg.Mail.ContactRecipient,
		From:        "Kanzlei Weber & Partner <" + cfg.Mail.ContactRecipient + ">",
	}
	log.Info("Initialized mail manager")
	return mm
}
