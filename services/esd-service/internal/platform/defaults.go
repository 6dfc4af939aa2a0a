// Package platform holds the identifiers and formats the storefront host defines
// and this plugin relies on.
package platform

import (
	"time"

	"github.com/sas-esd/esdmail/libs/ids"
)

const (
	// LanguageSystem is the id of the installation's default language.
	LanguageSystem = "2fbb5fe2e29a4d70aa5854ce7ce3e20b"
	// LiveVersion is the version id of live (non-draft) data.
	LiveVersion = "0fa91ce3e96a4bc2be4bd9ce752c3425"

	// StorageDateTimeFormat is how created_at columns are written.
	StorageDateTimeFormat = "2006-01-02 15:04:05.000"

	// MailSendAction is the event action that sends a templated mail.
	MailSendAction = "action.mail.send"

	EnglishLanguageName = "English"
	GermanLanguageName  = "Deutsch"
)

// SystemLanguageID returns LanguageSystem in storage form.
func SystemLanguageID() []byte {
	return ids.MustHexToBytes(LanguageSystem)
}

// Now renders the current time in storage format. Every call reads the clock again.
func Now() string {
	return FormatStorage(time.Now())
}

func FormatStorage(t time.Time) string {
	return t.UTC().Format(StorageDateTimeFormat)
}
