// Package storage reads mail template content from the storefront database.
package storage

import (
	"context"
	"errors"

	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/ids"
)

var ErrNotFound = errors.New("mail template translation not found")

// Translation is one language's content of a mail template.
type Translation struct {
	LanguageID   string `json:"languageId"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	SenderName   string `json:"senderName"`
	ContentHTML  string `json:"contentHtml"`
	ContentPlain string `json:"contentPlain"`
}

type TranslationFinder interface {
	FindTranslation(ctx context.Context, templateID []byte, languageIDs ...[]byte) (Translation, error)
}

type MailTemplateRepository struct {
	pool *db.Pool
}

func NewMailTemplateRepository(pool *db.Pool) *MailTemplateRepository {
	return &MailTemplateRepository{pool: pool}
}

// FindTranslation returns the translation in the first of languageIDs that has one.
func (r *MailTemplateRepository) FindTranslation(ctx context.Context, templateID []byte, languageIDs ...[]byte) (Translation, error) {
	if len(languageIDs) == 0 {
		return Translation{}, ErrNotFound
	}
	rows, err := r.pool.Query(ctx, `
		SELECT language_id, subject, COALESCE(description, ''), sender_name, content_html, content_plain
		FROM mail_template_translation
		WHERE mail_template_id = $1 AND language_id = ANY($2)
	`, templateID, languageIDs)
	if err != nil {
		return Translation{}, err
	}
	defer rows.Close()

	found := map[string]Translation{}
	for rows.Next() {
		var (
			languageID []byte
			t          Translation
		)
		if err := rows.Scan(&languageID, &t.Subject, &t.Description, &t.SenderName, &t.ContentHTML, &t.ContentPlain); err != nil {
			return Translation{}, err
		}
		t.LanguageID = ids.BytesToHex(languageID)
		found[t.LanguageID] = t
	}
	if rows.Err() != nil {
		return Translation{}, rows.Err()
	}
	return pickTranslation(found, languageIDs)
}

func pickTranslation(found map[string]Translation, languageIDs [][]byte) (Translation, error) {
	for _, id := range languageIDs {
		if t, ok := found[ids.BytesToHex(id)]; ok {
			return t, nil
		}
	}
	return Translation{}, ErrNotFound
}
