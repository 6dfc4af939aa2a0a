package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/ids"
	"github.com/sas-esd/esdmail/services/esd-service/internal/event"
	"github.com/sas-esd/esdmail/services/esd-service/internal/eventaction"
	"github.com/sas-esd/esdmail/services/esd-service/internal/mailtemplate"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
)

const (
	queryTemplateTypeID = `SELECT id FROM mail_template_type WHERE technical_name = $1 LIMIT 1`
	queryTemplateID     = `SELECT id FROM mail_template WHERE mail_template_type_id = $1 LIMIT 1`
	queryLanguageID     = `SELECT id FROM language WHERE name = $1`
	queryEventActionID  = `SELECT id FROM event_action WHERE event_name = $1 AND action_name = $2 LIMIT 1`
)

const serialMailEventActionTitle = "ESD - Serial mail"

// CreateSerialMailEventAction installs the serial mail template type, its template,
// their translations and the event action that mails serials once an order is paid.
type CreateSerialMailEventAction struct {
	logger *slog.Logger
	newID  func() []byte
	now    func() string
}

func NewCreateSerialMailEventAction(logger *slog.Logger) *CreateSerialMailEventAction {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CreateSerialMailEventAction{
		logger: logger,
		newID:  ids.RandomBytes,
		now:    platform.Now,
	}
}

func (m *CreateSerialMailEventAction) Name() string {
	return "CreateSerialMailEventAction"
}

func (m *CreateSerialMailEventAction) CreationTimestamp() int64 {
	return 1607192450
}

func (m *CreateSerialMailEventAction) Update(ctx context.Context, conn db.Connection) error {
	return m.insertEventAction(ctx, conn)
}

func (m *CreateSerialMailEventAction) UpdateDestructive(context.Context, db.Connection) error {
	return nil
}

func (m *CreateSerialMailEventAction) insertEventAction(ctx context.Context, conn db.Connection) error {
	var templateTypeID, templateID []byte

	if typeLookup := m.fetchTemplateTypeID(ctx, conn); typeLookup.found() {
		templateTypeID = typeLookup.id
		templateID = m.fetchTemplateID(ctx, conn, templateTypeID).id
	} else {
		templateTypeID = m.newID()
		templateID = m.newID()
		if err := m.insertMailTemplateType(ctx, conn, templateTypeID); err != nil {
			return err
		}
		if err := m.insertMailTemplate(ctx, conn, templateID, templateTypeID); err != nil {
			return err
		}
	}

	if len(templateID) == 0 || len(templateTypeID) == 0 {
		m.logger.Info("serial mail template incomplete, event action skipped")
		return nil
	}

	existing := fetchID(ctx, conn, m.logger, "event action", queryEventActionID,
		event.SerialPaymentStatusPaidName, platform.MailSendAction)
	if existing.found() {
		return nil
	}

	config, err := json.Marshal(eventaction.NewMailSendConfig(templateTypeID, templateID))
	if err != nil {
		return fmt.Errorf("encode event action config: %w", err)
	}
	return conn.Insert(ctx, "event_action", map[string]any{
		"id":          m.newID(),
		"title":       serialMailEventActionTitle,
		"event_name":  event.SerialPaymentStatusPaidName,
		"action_name": platform.MailSendAction,
		"config":      string(config),
		"created_at":  m.now(),
	})
}

func (m *CreateSerialMailEventAction) insertMailTemplateType(ctx context.Context, conn db.Connection, templateTypeID []byte) error {
	err := conn.Insert(ctx, "mail_template_type", map[string]any{
		"id":                 templateTypeID,
		"technical_name":     mailtemplate.TypeSerialTechnicalName,
		"available_entities": mailtemplate.AvailableEntities,
		"created_at":         m.now(),
	})
	if err != nil {
		return err
	}

	langs := m.resolveLanguages(ctx, conn)
	translation := func(languageID []byte, name string) error {
		return conn.Insert(ctx, "mail_template_type_translation", map[string]any{
			"mail_template_type_id": templateTypeID,
			"language_id":           languageID,
			"name":                  name,
			"created_at":            m.now(),
		})
	}

	if langs.systemNeedsOwnRow() {
		if err := translation(langs.system, mailtemplate.TypeSerialName); err != nil {
			return err
		}
	}
	if langs.english != nil {
		if err := translation(langs.english, mailtemplate.TypeSerialName); err != nil {
			return err
		}
	}
	if langs.german != nil {
		if err := translation(langs.german, mailtemplate.TypeSerialNameDE); err != nil {
			return err
		}
	}
	return nil
}

func (m *CreateSerialMailEventAction) insertMailTemplate(ctx context.Context, conn db.Connection, templateID, templateTypeID []byte) error {
	err := conn.Insert(ctx, "mail_template", map[string]any{
		"id":                    templateID,
		"mail_template_type_id": templateTypeID,
		"created_at":            m.now(),
	})
	if err != nil {
		return err
	}

	langs := m.resolveLanguages(ctx, conn)
	translation := func(languageID []byte, content mailtemplate.Content) error {
		return conn.Insert(ctx, "mail_template_translation", map[string]any{
			"mail_template_id": templateID,
			"language_id":      languageID,
			"subject":          content.Subject,
			"description":      content.Description,
			"sender_name":      content.SenderName,
			"content_html":     content.ContentHTML,
			"content_plain":    content.ContentPlain,
			"created_at":       m.now(),
		})
	}

	english := mailtemplate.English()
	if langs.systemNeedsOwnRow() {
		if err := translation(langs.system, english); err != nil {
			return err
		}
	}
	if langs.english != nil {
		if err := translation(langs.english, english); err != nil {
			return err
		}
	}
	if langs.german != nil {
		if err := translation(langs.german, mailtemplate.German()); err != nil {
			return err
		}
	}
	return nil
}

func (m *CreateSerialMailEventAction) fetchTemplateTypeID(ctx context.Context, conn db.Connection) lookup {
	return fetchID(ctx, conn, m.logger, "mail template type", queryTemplateTypeID, mailtemplate.TypeSerialTechnicalName)
}

func (m *CreateSerialMailEventAction) fetchTemplateID(ctx context.Context, conn db.Connection, templateTypeID []byte) lookup {
	return fetchID(ctx, conn, m.logger, "mail template", queryTemplateID, templateTypeID)
}

func (m *CreateSerialMailEventAction) fetchLanguageIDByName(ctx context.Context, conn db.Connection, name string) []byte {
	return fetchID(ctx, conn, m.logger, "language "+name, queryLanguageID, name).id
}

// languages holds the resolved language ids; english and german are nil when unresolved.
type languages struct {
	system  []byte
	english []byte
	german  []byte
}

func (m *CreateSerialMailEventAction) resolveLanguages(ctx context.Context, conn db.Connection) languages {
	return languages{
		system:  platform.SystemLanguageID(),
		english: m.fetchLanguageIDByName(ctx, conn, platform.EnglishLanguageName),
		german:  m.fetchLanguageIDByName(ctx, conn, platform.GermanLanguageName),
	}
}

// systemNeedsOwnRow is false when the default language is English or German, whose
// rows are written separately.
func (l languages) systemNeedsOwnRow() bool {
	return !bytes.Equal(l.system, l.english) && !bytes.Equal(l.system, l.german)
}
