package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tbourn/caked-with-love/internal/completion"
	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/services"
)

func Test_sanitizeContent(t *testing.T) {
	cases := map[string]string{
		"  hi  ":                 "hi",
		"a\r\nb\rc":              "a\nb\nc",
		"p1\n\n\n\n\np2":         "p1\n\np2",
		"cafe\u0301 cake":         "caf\u00e9 cake",
		"\n\n  \t":               "",
		"Red Velvet\r\n\r\n\r\n": "Red Velvet",
	}
	for in, want := range cases {
		if got := sanitizeContent(in); got != want {
			t.Errorf("sanitizeContent(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestPostMessage_AppendsPairAndReturnsReply(t *testing.T) {
	h := newHarness(t)
	var system string
	h.client.reply = func(_ int, msgs []completion.Message) (string, error) {
		system = msgs[0].Content
		return "Our Chocolate cake is ₹500.", nil
	}
	sess := h.sessions.Create()

	w := h.do(t, http.MethodPost, "/sessions/"+sess.ID+"/messages", `{"content":"  price of chocolate?  "}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("post -> %d %s", w.Code, w.Body.String())
	}
	resp := decode[PostMessageResponse](t, w)
	if resp.Turns != 2 || resp.Reply.Speaker != domain.SpeakerAssistant || resp.Reply.Text != "Our Chocolate cake is ₹500." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.HasPrefix(system, services.DefaultPersona) || !strings.HasSuffix(system, testMenu) {
		t.Fatalf("system message missing persona or catalog: %q", system)
	}
	if turns := sess.Turns(); turns[0].Text != "price of chocolate?" {
		t.Fatalf("user turn not sanitized: %q", turns[0].Text)
	}
}

func TestPostMessage_CompletionFailureIs200Apology(t *testing.T) {
	h := newHarness(t)
	h.client.reply = func(int, []completion.Message) (string, error) {
		return "", &completion.Error{Kind: completion.KindUpstream, Detail: `{"error":{"message":"Invalid API Key"}}`}
	}
	sess := h.sessions.Create()

	for i := 1; i <= 3; i++ {
		w := h.do(t, http.MethodPost, "/sessions/"+sess.ID+"/messages", `{"content":"hello"}`, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("post -> %d", w.Code)
		}
		resp := decode[PostMessageResponse](t, w)
		if !strings.HasPrefix(resp.Reply.Text, "Sorry, something went wrong") || resp.Turns != 2*i {
			t.Fatalf("submission %d: %+v", i, resp)
		}
	}
}

func TestPostMessage_Errors(t *testing.T) {
	h := newHarness(t)
	sess := h.sessions.Create()
	path := "/sessions/" + sess.ID + "/messages"

	wantError(t, h.do(t, http.MethodPost, "/sessions/nope/messages", `{"content":"hi"}`, nil), http.StatusBadRequest, ErrCodeBadRequest)
	wantError(t, h.do(t, http.MethodPost, "/sessions/3f2b8c1e-9a4d-4c2b-8f1e-2d3c4b5a6f70/messages", `{"content":"hi"}`, nil), http.StatusNotFound, ErrCodeSessionNotFound)
	wantError(t, h.do(t, http.MethodPost, path, `{bad`, nil), http.StatusBadRequest, ErrCodeBadRequest)
	wantError(t, h.do(t, http.MethodPost, path, `{"content":""}`, nil), http.StatusBadRequest, ErrCodeBadRequest)
	wantError(t, h.do(t, http.MethodPost, path, `{"content":" \r\n\r\n "}`, nil), http.StatusBadRequest, ErrCodeEmptyPrompt)
	wantError(t, h.do(t, http.MethodPost, path, `{"content":"`+strings.Repeat("x", 41)+`"}`, nil), http.StatusBadRequest, ErrCodePromptTooLong)

	if sess.Len() != 0 {
		t.Fatalf("rejected messages must not append turns; len=%d", sess.Len())
	}

	// A pending request makes the session busy.
	if _, err := sess.Begin(domain.ChatTurn{Speaker: domain.SpeakerUser, Text: "pending"}); err != nil {
		t.Fatal(err)
	}
	wantError(t, h.do(t, http.MethodPost, path, `{"content":"hi"}`, nil), http.StatusConflict, ErrCodeSessionBusy)
}
