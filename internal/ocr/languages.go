package ocr

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ParseLanguages splits a comma-separated language list into codes,
// preserving order. Surrounding whitespace is dropped; blank entries are an error.
func ParseLanguages(list string) ([]string, error) {
	const op = "ParseLanguages"

	if strings.TrimSpace(list) == "" {
		return nil, NewError(op, KindArgument, ErrNoLanguages, "")
	}

	parts := strings.Split(list, ",")
	codes := make([]string, 0, len(parts))
	for i, part := range parts {
		code := strings.TrimSpace(part)
		if code == "" {
			return nil, NewError(op, KindArgument, ErrNoLanguages, fmt.Sprintf("empty code at position %d in %q", i+1, list))
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Script-qualified codes that have no ISO 639 equivalent.
var tesseractAliases = map[string]string{
	"ch_sim":      "chi_sim",
	"ch_tra":      "chi_tra",
	"zh":          "chi_sim",
	"zh-hans":     "chi_sim",
	"zh-hant":     "chi_tra",
	"rs_latin":    "srp_latn",
	"rs_cyrillic": "srp",
}

var bcp47Aliases = map[string]string{
	"ch_sim":      "zh-Hans",
	"ch_tra":      "zh-Hant",
	"rs_latin":    "sr-Latn",
	"rs_cyrillic": "sr-Cyrl",
}

// TesseractLanguage maps a two- or three-letter ISO 639 code (or a
// script-qualified code such as ch_sim) to a Tesseract traineddata name.
func TesseractLanguage(code string) (string, error) {
	lower := strings.ToLower(code)
	if alias, ok := tesseractAliases[lower]; ok {
		return alias, nil
	}
	// Already a traineddata name like deu_frak or script/Latin.
	if strings.ContainsAny(lower, "_/") {
		return code, nil
	}

	base, err := language.ParseBase(lower)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	iso3 := base.ISO3()
	if iso3 == "" || iso3 == "und" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	return iso3, nil
}

// TesseractLanguages maps every code with TesseractLanguage.
func TesseractLanguages(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		lang, err := TesseractLanguage(code)
		if err != nil {
			return nil, err
		}
		out = append(out, lang)
	}
	return out, nil
}

// LanguageHints converts codes into canonical BCP-47 tags for the Google APIs.
func LanguageHints(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if alias, ok := bcp47Aliases[strings.ToLower(code)]; ok {
			out = append(out, alias)
			continue
		}
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
		}
		out = append(out, tag.String())
	}
	return out, nil
}
