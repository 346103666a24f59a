package prompt

// DefaultLanguage is used when the requested language is unsupported.
const DefaultLanguage = "en"

// languageDirectives holds the per-language instruction text. Keys are
// ISO 639-1 codes for a subset of South Africa's official languages.
var languageDirectives = map[string]string{
	"en": `Respond in English.`,
	"af": `Antwoord in Afrikaans. Haal saaknames en sitate in hul oorspronklike vorm aan.`,
	"zu": `Phendula ngesiZulu. Amagama amacala nezinkomba zishiywe ngendlela yawo yokuqala.`,
	"xh": `Phendula ngesiXhosa. Amagama amatyala nezalathiso zishiywe ngendlela yazo yantlandlolo.`,
}

// directiveForLanguage returns the instruction text for the given language
// code, falling back to the default language when unsupported.
func directiveForLanguage(lang string) string {
	if d, ok := languageDirectives[lang]; ok {
		return d
	}
	return languageDirectives[DefaultLanguage]
}

// SupportedLanguages lists the language codes with dedicated directives.
func SupportedLanguages() []string {
	return []string{"en", "af", "zu", "xh"}
}
