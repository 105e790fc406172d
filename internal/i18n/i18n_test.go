package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
}

func TestTranslateItalian(t *testing.T) {
	initLang(t, "it")

	if got := T("MenuNewTest"); got != "Nuova prova" {
		t.Errorf("T(MenuNewTest) = %q, want 'Nuova prova'", got)
	}
	if got := Language(); got != "it" {
		t.Errorf("Language() = %q, want it", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	initLang(t, "en")

	if got := T("MenuNewTest"); got != "New test" {
		t.Errorf("T(MenuNewTest) = %q, want 'New test'", got)
	}
}

func TestDefaultLanguage(t *testing.T) {
	initLang(t, "")

	if got := Language(); got != DefaultLanguage {
		t.Errorf("Language() = %q, want %q", got, DefaultLanguage)
	}
}

func TestInvalidLanguage(t *testing.T) {
	if err := Init("not a language!"); err == nil {
		t.Fatal("expected error for malformed tag")
	}
}

func TestPluralTranslation(t *testing.T) {
	initLang(t, "it")

	if got := Tp("WordCount", 1); got != "1 parola" {
		t.Errorf("Tp(WordCount, 1) = %q, want '1 parola'", got)
	}
	if got := Tp("WordCount", 5); got != "5 parole" {
		t.Errorf("Tp(WordCount, 5) = %q, want '5 parole'", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	initLang(t, "en")

	got := Td("QuestionOf", map[string]any{"Current": 3, "Total": 10})
	if got != "Question 3 of 10" {
		t.Errorf("Td(QuestionOf) = %q, want 'Question 3 of 10'", got)
	}
}

func TestMissingKey(t *testing.T) {
	initLang(t, "en")

	if got := T("NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestFromContext(t *testing.T) {
	initLang(t, "it")

	ctx := WithTranslator(context.Background(), NewTranslator("en"))
	if got := FromContext(ctx).T("HistoryTitle"); got != "History" {
		t.Errorf("context translator = %q, want 'History'", got)
	}
	if got := FromContext(context.Background()).T("HistoryTitle"); got != "Storico" {
		t.Errorf("fallback translator = %q, want 'Storico'", got)
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "it")

	var got string
	h := Middleware("it")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context()).T("ResultTitle")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Result" {
		t.Errorf("with Accept-Language en: %q, want 'Result'", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != "Risultato" {
		t.Errorf("without Accept-Language: %q, want 'Risultato'", got)
	}
}
