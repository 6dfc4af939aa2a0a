package eventaction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/ids"
)

// MailSendConfig is the config of a mail-send event action. Ids are hex encoded.
type MailSendConfig struct {
	MailTemplateTypeID string `json:"mail_template_type_id"`
	MailTemplateID     string `json:"mail_template_id"`
}

// NewMailSendConfig builds a config from storage-form ids.
func NewMailSendConfig(templateTypeID, templateID []byte) MailSendConfig {
	return MailSendConfig{
		MailTemplateTypeID: ids.BytesToHex(templateTypeID),
		MailTemplateID:     ids.BytesToHex(templateID),
	}
}

// TemplateID returns the mail template id in storage form.
func (c MailSendConfig) TemplateID() ([]byte, error) {
	if c.MailTemplateID == "" {
		return nil, fmt.Errorf("mail_template_id missing")
	}
	return ids.HexToBytes(c.MailTemplateID)
}

func ParseMailSendConfig(raw []byte) (MailSendConfig, error) {
	var cfg MailSendConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return MailSendConfig{}, fmt.Errorf("parse event action config: %w", err)
	}
	return cfg, nil
}

type EventAction struct {
	ID         []byte
	Title      string
	EventName  string
	ActionName string
	Config     []byte
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListByEvent(ctx context.Context, eventName, actionName string) ([]EventAction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, event_name, action_name, config
		FROM event_action
		WHERE event_name = $1 AND action_name = $2
		ORDER BY created_at
	`, eventName, actionName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventAction
	for rows.Next() {
		var a EventAction
		if err := rows.Scan(&a.ID, &a.Title, &a.EventName, &a.ActionName, &a.Config); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
