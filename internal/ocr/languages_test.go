package ocr

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseLanguages(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"single", "en", []string{"en"}, false},
		{"ordered pair", "en,fr", []string{"en", "fr"}, false},
		{"spaces trimmed", " de , en ", []string{"de", "en"}, false},
		{"keeps order", "fr,en,de", []string{"fr", "en", "de"}, false},
		{"empty", "", nil, true},
		{"blank", "   ", nil, true},
		{"trailing comma", "en,", nil, true},
		{"double comma", "en,,fr", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLanguages(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLanguages(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrNoLanguages) {
					t.Errorf("error %v does not match ErrNoLanguages", err)
				}
				if KindOf(err) != KindArgument {
					t.Errorf("KindOf = %v, want %v", KindOf(err), KindArgument)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLanguages(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLanguages(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTesseractLanguage(t *testing.T) {
	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{"en", "eng", false},
		{"fr", "fra", false},
		{"de", "deu", false},
		{"EN", "eng", false},
		{"eng", "eng", false},
		{"ch_sim", "chi_sim", false},
		{"ch_tra", "chi_tra", false},
		{"zh", "chi_sim", false},
		{"deu_frak", "deu_frak", false},
		{"script/Latin", "script/Latin", false},
		{"xx", "", true},
		{"not-a-language", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := TesseractLanguage(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Fatalf("TesseractLanguage(%q) error = %v, want ErrUnsupportedLanguage", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TesseractLanguage(%q) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Errorf("TesseractLanguage(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestTesseractLanguagesStopsAtFirstError(t *testing.T) {
	if _, err := TesseractLanguages([]string{"en", "xx", "fr"}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("error = %v, want ErrUnsupportedLanguage", err)
	}

	got, err := TesseractLanguages([]string{"en", "fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"eng", "fra"}) {
		t.Errorf("TesseractLanguages = %v", got)
	}
}

func TestLanguageHints(t *testing.T) {
	got, err := LanguageHints([]string{"en", "ch_sim", "pt-BR"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"en", "zh-Hans", "pt-BR"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LanguageHints = %v, want %v", got, want)
	}

	if _, err := LanguageHints([]string{"en", "!!"}); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("error = %v, want ErrUnsupportedLanguage", err)
	}
}
