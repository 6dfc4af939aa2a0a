package migration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sas-esd/esdmail/libs/db"
	"github.com/sas-esd/esdmail/libs/ids"
	"github.com/sas-esd/esdmail/services/esd-service/internal/eventaction"
	"github.com/sas-esd/esdmail/services/esd-service/internal/mailtemplate"
	"github.com/sas-esd/esdmail/services/esd-service/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	englishID = ids.MustHexToBytes("8f2c1a7e3d4b4c5a9e6f7a8b9c0d1e2f")
	germanID  = ids.MustHexToBytes("1a2b3c4d5e6f40718293a4b5c6d7e8f9")
)

func withLanguages(conn *memConn) *memConn {
	conn.languages[platform.EnglishLanguageName] = englishID
	conn.languages[platform.GermanLanguageName] = germanID
	return conn
}

func TestSerialMailRunsOnce(t *testing.T) {
	ctx := context.Background()
	conn := withLanguages(newMemConn())
	step := NewCreateSerialMailEventAction(nil)

	require.NoError(t, step.Update(ctx, conn))
	require.NoError(t, step.Update(ctx, conn))

	assert.Equal(t, 1, conn.count("mail_template_type"))
	assert.Equal(t, 1, conn.count("mail_template"))
	assert.Equal(t, 1, conn.count("event_action"))
	assert.Equal(t, 3, conn.count("mail_template_type_translation"))
	assert.Equal(t, 3, conn.count("mail_template_translation"))
}

func TestSerialMailDefaultLanguageIsEnglish(t *testing.T) {
	conn := newMemConn()
	conn.languages[platform.EnglishLanguageName] = platform.SystemLanguageID()
	conn.languages[platform.GermanLanguageName] = germanID

	require.NoError(t, NewCreateSerialMailEventAction(nil).Update(context.Background(), conn))

	assert.Equal(t, 2, conn.count("mail_template_type_translation"))
	assert.Equal(t, 2, conn.count("mail_template_translation"))
}

func TestSerialMailDefaultLanguageIsGerman(t *testing.T) {
	conn := newMemConn()
	conn.languages[platform.EnglishLanguageName] = englishID
	conn.languages[platform.GermanLanguageName] = platform.SystemLanguageID()

	require.NoError(t, NewCreateSerialMailEventAction(nil).Update(context.Background(), conn))

	rows := conn.table("mail_template_translation")
	require.Len(t, rows, 2)
	for _, r := range rows {
		if string(r["language_id"].([]byte)) == string(platform.SystemLanguageID()) {
			assert.Equal(t, mailtemplate.German().Subject, r["subject"])
		}
	}
}

func TestSerialMailTemplateRowsPerLanguage(t *testing.T) {
	conn := withLanguages(newMemConn())
	require.NoError(t, NewCreateSerialMailEventAction(nil).Update(context.Background(), conn))

	byLanguage := map[string]map[string]any{}
	for _, r := range conn.table("mail_template_translation") {
		byLanguage[ids.BytesToHex(r["language_id"].([]byte))] = r
	}
	require.Len(t, byLanguage, 3)

	english := mailtemplate.English()
	german := mailtemplate.German()
	assert.Equal(t, english.Subject, byLanguage[platform.LanguageSystem]["subject"])
	assert.Equal(t, english.Subject, byLanguage[ids.BytesToHex(englishID)]["subject"])
	assert.Equal(t, german.Subject, byLanguage[ids.BytesToHex(germanID)]["subject"])
	assert.Equal(t, german.ContentPlain, byLanguage[ids.BytesToHex(germanID)]["content_plain"])
	assert.NotEqual(t, english.ContentPlain, german.ContentPlain)

	names := map[string]any{}
	for _, r := range conn.table("mail_template_type_translation") {
		names[ids.BytesToHex(r["language_id"].([]byte))] = r["name"]
	}
	assert.Equal(t, mailtemplate.TypeSerialName, names[platform.LanguageSystem])
	assert.Equal(t, mailtemplate.TypeSerialNameDE, names[ids.BytesToHex(germanID)])
}

func TestSerialMailEventActionRow(t *testing.T) {
	conn := withLanguages(newMemConn())
	step := NewCreateSerialMailEventAction(nil)
	step.now = func() string { return platform.FormatStorage(time.Date(2020, 12, 5, 18, 20, 50, 123e6, time.UTC)) }

	require.NoError(t, step.Update(context.Background(), conn))

	types := conn.table("mail_template_type")
	require.Len(t, types, 1)
	assert.Equal(t, `{"order":"order","salesChannel":"sales_channel"}`, types[0]["available_entities"])
	assert.Equal(t, "2020-12-05 18:20:50.123", types[0]["created_at"])

	actions := conn.table("event_action")
	require.Len(t, actions, 1)
	action := actions[0]
	assert.Equal(t, "ESD - Serial mail", action["title"])
	assert.Equal(t, "esd.serial.payment.status.paid", action["event_name"])
	assert.Equal(t, "action.mail.send", action["action_name"])

	var cfg eventaction.MailSendConfig
	require.NoError(t, json.Unmarshal([]byte(action["config"].(string)), &cfg))
	assert.Equal(t, ids.BytesToHex(types[0]["id"].([]byte)), cfg.MailTemplateTypeID)
	assert.Equal(t, ids.BytesToHex(conn.table("mail_template")[0]["id"].([]byte)), cfg.MailTemplateID)
	assert.Len(t, cfg.MailTemplateID, 32)
}

func TestSerialMailReusesExistingTypeWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	conn := withLanguages(newMemConn())
	step := NewCreateSerialMailEventAction(nil)
	require.NoError(t, step.Update(ctx, conn))

	conn.deleteAll("mail_template")
	conn.deleteAll("event_action")

	require.NoError(t, step.Update(ctx, conn))
	assert.Equal(t, 0, conn.count("event_action"))
	assert.Equal(t, 0, conn.count("mail_template"))
	assert.Equal(t, 1, conn.count("mail_template_type"))
}

func TestSerialMailLanguageLookupFailure(t *testing.T) {
	conn := withLanguages(newMemConn())
	conn.failQuery[queryLanguageID] = &db.QueryError{Query: queryLanguageID, Err: errors.New("connection reset")}

	require.NoError(t, NewCreateSerialMailEventAction(nil).Update(context.Background(), conn))

	types := conn.table("mail_template_type_translation")
	require.Len(t, types, 1)
	assert.Equal(t, platform.SystemLanguageID(), types[0]["language_id"])
	assert.Equal(t, 1, conn.count("mail_template_translation"))
	assert.Equal(t, 1, conn.count("event_action"))
}

func TestSerialMailTypeLookupFailurePropagatesInsertError(t *testing.T) {
	ctx := context.Background()
	conn := withLanguages(newMemConn())
	step := NewCreateSerialMailEventAction(nil)
	require.NoError(t, step.Update(ctx, conn))

	conn.failQuery[queryTemplateTypeID] = &db.QueryError{Query: queryTemplateTypeID, Err: errors.New("timeout")}
	err := step.Update(ctx, conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, errDuplicate)
	assert.Equal(t, 1, conn.count("mail_template_type"))
}

func TestSerialMailDestructiveIsNoop(t *testing.T) {
	conn := newMemConn()
	step := NewCreateSerialMailEventAction(nil)
	require.NoError(t, step.UpdateDestructive(context.Background(), conn))
	assert.Empty(t, conn.rows)
	assert.Equal(t, int64(1607192450), step.CreationTimestamp())
}

func TestFetchIDStates(t *testing.T) {
	ctx := context.Background()
	conn := withLanguages(newMemConn())
	step := NewCreateSerialMailEventAction(nil)

	found := fetchID(ctx, conn, step.logger, "language", queryLanguageID, platform.EnglishLanguageName)
	assert.Equal(t, lookupFound, found.state)
	assert.Equal(t, englishID, found.id)

	missing := fetchID(ctx, conn, step.logger, "language", queryLanguageID, "Français")
	assert.Equal(t, lookupNotFound, missing.state)
	assert.Nil(t, missing.id)

	conn.failQuery[queryLanguageID] = errors.New("boom")
	failed := fetchID(ctx, conn, step.logger, "language", queryLanguageID, platform.EnglishLanguageName)
	assert.Equal(t, lookupFailed, failed.state)
	assert.False(t, failed.found())
	assert.Error(t, failed.err)
}

func TestMessagingTables(t *testing.T) {
	conn := newMemConn()
	step := NewCreateEsdMessagingTables()
	require.NoError(t, step.Update(context.Background(), conn))
	assert.Len(t, conn.execs, len(messagingDDL))
	assert.Contains(t, conn.execs[0], "outbox_events")
	require.NoError(t, step.UpdateDestructive(context.Background(), conn))
}
