package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGreetingFor(t *testing.T) {
	if g := greetingFor("hi"); g == defaultGreetingEnglish {
		t.Error("greetingFor(hi) should not fall back to the English default")
	}
	if g := greetingFor("EN"); g != defaultGreetingEnglish {
		t.Errorf("greetingFor(EN) = %q, want case-insensitive match to default", g)
	}
	if g := greetingFor("xx"); g != defaultGreetingEnglish {
		t.Errorf("greetingFor(xx) = %q, want fallback to default", g)
	}
}

func TestNoSpeechMessage(t *testing.T) {
	if noSpeechMessage("en") == noSpeechMessage("hi") {
		t.Error("expected distinct no-speech messages for en and hi")
	}
	if noSpeechMessage("fr") != noSpeechMessage("en") {
		t.Error("unknown language should fall back to the English no-speech message")
	}
}

func TestGreetingHandler(t *testing.T) {
	s := &Server{log: zerolog.Nop()}

	body, _ := json.Marshal(greetingRequest{Language: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/ptt/greeting", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.Greeting(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp greetingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Language != "hi" {
		t.Errorf("Language = %q, want hi", resp.Language)
	}
	if resp.GreetingEnglish != defaultGreetingEnglish {
		t.Errorf("GreetingEnglish = %q, want default", resp.GreetingEnglish)
	}
}

type fakeTranslator struct {
	calls int
	fail  bool
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	f.calls++
	if f.fail {
		return "", errTranslateFailed
	}
	return "translated:" + text, nil
}

var errTranslateFailed = translateErr("boom")

type translateErr string

func (e translateErr) Error() string { return string(e) }

func TestTranslate_SameLanguagePassesThrough(t *testing.T) {
	tr := &fakeTranslator{}
	s := &Server{log: zerolog.Nop(), translator: tr}

	body, _ := json.Marshal(translateRequest{
		Messages:       []translateMessage{{ID: "1", Text: "hello", Role: "user"}},
		SourceLanguage: "en",
		TargetLanguage: "en",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ptt/translate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.Translate(c)

	if tr.calls != 0 {
		t.Error("Translate should not be called when source equals target language")
	}
	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Messages[0].Text != "hello" {
		t.Errorf("Text = %q, want unchanged hello", resp.Messages[0].Text)
	}
}

func TestTranslate_FallsBackToOriginalOnError(t *testing.T) {
	tr := &fakeTranslator{fail: true}
	s := &Server{log: zerolog.Nop(), translator: tr}

	body, _ := json.Marshal(translateRequest{
		Messages:       []translateMessage{{ID: "1", Text: "hello", Role: "user"}},
		SourceLanguage: "en",
		TargetLanguage: "hi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ptt/translate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.Translate(c)

	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if tr.calls != 1 {
		t.Errorf("calls = %d, want 1", tr.calls)
	}
	if resp.Messages[0].Text != "hello" {
		t.Errorf("Text = %q, want fallback to original hello", resp.Messages[0].Text)
	}
}

func TestTranslate_NilTranslatorPassesThrough(t *testing.T) {
	s := &Server{log: zerolog.Nop()}

	body, _ := json.Marshal(translateRequest{
		Messages:       []translateMessage{{ID: "1", Text: "hello", Role: "user"}},
		SourceLanguage: "en",
		TargetLanguage: "hi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ptt/translate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	s.Translate(c)

	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Messages[0].Text != "hello" {
		t.Errorf("Text = %q, want passthrough hello", resp.Messages[0].Text)
	}
}
