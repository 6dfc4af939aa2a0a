package platform

// Scopes an execution context can run in.
const (
	ScopeUser   = "user"
	ScopeSystem = "system"
)

// Context is the storefront execution context an event was raised in.
// Identifiers are hex encoded.
type Context struct {
	LanguageID string `json:"languageId"`
	VersionID  string `json:"versionId"`
	CurrencyID string `json:"currencyId,omitempty"`
	Scope      string `json:"scope"`
}

// DefaultContext is a system-scope context in the default language on live data.
func DefaultContext() Context {
	return Context{
		LanguageID: LanguageSystem,
		VersionID:  LiveVersion,
		Scope:      ScopeSystem,
	}
}

// Language returns the context language, falling back to the system language.
func (c Context) Language() string {
	if c.LanguageID == "" {
		return LanguageSystem
	}
	return c.LanguageID
}
