package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type Role string

const (
	RoleTalent   Role = "talent"
	RoleEmployer Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleTalent || r == RoleEmployer
}

// SessionContext identifies the caller of a use case. It is built once by the
// HTTP layer and passed explicitly; use cases never look it up themselves.
type SessionContext struct {
	UserID uuid.UUID
	Role   Role
}

func (s SessionContext) IsTalent() bool   { return s.Role == RoleTalent }
func (s SessionContext) IsEmployer() bool { return s.Role == RoleEmployer }

type LocaleContext struct {
	Language language.Tag
	Location *time.Location
}

var (
	supportedLanguages = []language.Tag{language.English, language.Vietnamese}
	languageMatcher    = language.NewMatcher(supportedLanguages)
)

func DefaultLocale() LocaleContext {
	return LocaleContext{Language: language.English, Location: time.UTC}
}

// ParseLocale resolves an Accept-Language header and an IANA zone name.
// Unknown values fall back to English / UTC.
func ParseLocale(acceptLanguage, timezone string) LocaleContext {
	loc := DefaultLocale()

	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, _ := languageMatcher.Match(tags...)
			loc.Language = supportedLanguages[idx]
		}
	}

	if tz := strings.TrimSpace(timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc.Location = l
		}
	}
	return loc
}

// FormatTime renders t in the caller's zone.
func (l LocaleContext) FormatTime(t time.Time) string {
	zone := l.Location
	if zone == nil {
		zone = time.UTC
	}
	layout := "Mon, 02 Jan 2006 15:04 MST"
	if l.Language == language.Vietnamese {
		layout = "15:04 02/01/2006 MST"
	}
	return t.In(zone).Format(layout)
}
