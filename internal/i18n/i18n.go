package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundle        *i18n.Bundle
	supported     []language.Tag
	matcher       language.Matcher
	defaultLocale = "en"
)

type ctxKey struct{}

// Init loads all locale files and sets the default locale.
func Init(defLocale string) error {
	if defLocale != "" {
		defaultLocale = defLocale
	}

	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	// The default locale goes first so the matcher falls back to it.
	tags := []language.Tag{language.Make(defaultLocale)}
	for _, t := range b.LanguageTags() {
		if t != tags[0] {
			tags = append(tags, t)
		}
	}
	bundle = b
	supported = tags
	matcher = language.NewMatcher(tags)
	slog.Info("i18n: loaded locale files", "count", len(entries), "default", defaultLocale)
	return nil
}

// WithLocale returns a new context carrying the given locale string (e.g. "hi", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext extracts the locale from the context.
// Returns the configured default locale if not set.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return defaultLocale
}

// Negotiate picks the best loaded locale for an Accept-Language header value.
func Negotiate(acceptLanguage string) string {
	if matcher == nil || acceptLanguage == "" {
		return defaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return defaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Middleware stores the negotiated request locale in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := Negotiate(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
	})
}

// T translates a message ID using the locale from the context.
// Optional templateData provides values for template placeholders.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	if bundle == nil {
		return messageID
	}
	lang := LocaleFromContext(ctx)
	l := i18n.NewLocalizer(bundle, lang, defaultLocale)

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(templateData) > 0 && templateData[0] != nil {
		cfg.TemplateData = templateData[0]
	}

	msg, err := l.Localize(cfg)
	if err != nil {
		return messageID
	}
	return msg
}
