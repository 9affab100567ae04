package lexical

import (
	"reflect"
	"testing"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return a
}

func contains(terms []string, want string) bool {
	for _, term := range terms {
		if term == want {
			return true
		}
	}
	return false
}

func TestAnalyzeSplitsCamelCase(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("parseHTTPResponse")
	for _, want := range []string{"parse", "http", "response"} {
		if !contains(terms, want) {
			t.Errorf("expected term %q in %v", want, terms)
		}
	}
}

func TestAnalyzeSplitsSnakeCase(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("user_session_manager")
	for _, want := range []string{"user", "session", "manager"} {
		if !contains(terms, want) {
			t.Errorf("expected term %q in %v", want, terms)
		}
	}
}

func TestAnalyzeDropsShortAndNumericTokens(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("ab 12345 handler")
	if contains(terms, "ab") {
		t.Errorf("short token should be dropped, got %v", terms)
	}
	if contains(terms, "12345") {
		t.Errorf("numeric token should be dropped, got %v", terms)
	}
	if !contains(terms, "handler") {
		t.Errorf("expected term handler in %v", terms)
	}
}

func TestAnalyzeStripsURLs(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("crash reported https://example.com/issues/42 in login")
	if contains(terms, "example") || contains(terms, "https") {
		t.Errorf("URL content should be stripped, got %v", terms)
	}
	if !contains(terms, "crash") || !contains(terms, "login") {
		t.Errorf("surrounding terms lost: %v", terms)
	}
}

func TestAnalyzeStripsImageLinks(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("stack trace ![screenshot](https://img.host/shot.png) attached")
	if contains(terms, "screenshot") {
		t.Errorf("image link should be stripped, got %v", terms)
	}
	if !contains(terms, "stack") || !contains(terms, "attached") {
		t.Errorf("surrounding terms lost: %v", terms)
	}
}

func TestAnalyzeRemovesStopWords(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("the connection with database")
	if contains(terms, "the") || contains(terms, "with") {
		t.Errorf("stop words should be removed, got %v", terms)
	}
	if !contains(terms, "connection") || !contains(terms, "database") {
		t.Errorf("content terms lost: %v", terms)
	}
}

func TestAnalyzeLowercases(t *testing.T) {
	a := newTestAnalyzer(t)
	terms := a.Analyze("NullPointerException")
	if !contains(terms, "null") || !contains(terms, "pointer") || !contains(terms, "exception") {
		t.Errorf("unexpected terms %v", terms)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer(t)
	text := "SessionManager fails to refreshToken after timeout_error in auth_handler"
	first := a.Analyze(text)
	for i := 0; i < 5; i++ {
		if got := a.Analyze(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
}
