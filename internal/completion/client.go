// Package completion is a thin synchronous client for an OpenAI-compatible
// chat-completion endpoint (Groq by default). A call posts
//
//	{"model": "<model>", "messages": [{"role": "...", "content": "..."}, ...]}
//
// with a bearer token and returns choices[0].message.content. Failures are
// returned as *Error tagged transport, protocol or upstream; the client never
// retries.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/caked-with-love/internal/observability"
)

// Default endpoint and model.
const (
	DefaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel = "llama-3.3-70b-versatile"
)

const (
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
	// maxDetailBytes caps how much of an upstream payload is echoed in errors.
	maxDetailBytes = 512
)

// Role is the author of a completion message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the request's messages array.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client turns an ordered message history into a single reply.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Options configures an HTTPClient.
type Options struct {
	URL    string
	APIKey string
	Model  string
	// Timeout bounds a whole call; zero keeps the transport default.
	Timeout time.Duration
	// HTTP overrides the underlying client (tests).
	HTTP *http.Client
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	url    string
	apiKey string
	model  string
	http   *http.Client
}

// NewHTTPClient builds an HTTPClient, filling in DefaultURL and DefaultModel.
func NewHTTPClient(opts Options) *HTTPClient {
	hc := opts.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = DefaultURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	return &HTTPClient{url: url, apiKey: opts.APIKey, model: model, http: hc}
}

// Model returns the configured model name.
func (c *HTTPClient) Model() string { return c.model }

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Complete posts messages and returns the first choice's content.
func (c *HTTPClient) Complete(ctx context.Context, messages []Message) (reply string, err error) {
	tr := otel.Tracer("completion/HTTPClient")
	ctx, span := tr.Start(ctx, "Complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", c.model),
			attribute.Int("llm.messages", len(messages)),
		),
	)
	start := time.Now()
	defer func() {
		observability.CompletionLatency.Observe(time.Since(start).Seconds())
		outcome := observability.OutcomeOK
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		observability.CompletionRequests.WithLabelValues(outcome).Inc()
		span.End()
	}()

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", &Error{Kind: KindTransport, Detail: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindTransport, Detail: "build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Error{Kind: KindTransport, Status: resp.StatusCode, Detail: "read response", Err: err}
	}
	return parseReply(resp.StatusCode, raw)
}

// parseReply extracts choices[0].message.content. The HTTP status is not
// consulted on its own: an error payload is recognized by the absence of a
// choices field, whatever the status.
func parseReply(status int, raw []byte) (string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &Error{Kind: KindProtocol, Status: status, Detail: "malformed response body", Err: err}
	}

	choicesRaw, ok := payload["choices"]
	if !ok {
		return "", &Error{Kind: KindUpstream, Status: status, Detail: upstreamDetail(raw)}
	}

	var choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(choicesRaw, &choices); err != nil {
		return "", &Error{Kind: KindProtocol, Status: status, Detail: "choices is not a list", Err: err}
	}
	if len(choices) == 0 {
		return "", &Error{Kind: KindProtocol, Status: status, Detail: "no choices returned"}
	}
	if choices[0].Message == nil || choices[0].Message.Content == nil {
		return "", &Error{Kind: KindProtocol, Status: status, Detail: "choices[0].message.content missing"}
	}
	return *choices[0].Message.Content, nil
}

// upstreamDetail prefers error.message from an OpenAI-style error object and
// falls back to the compacted, truncated payload.
func upstreamDetail(raw []byte) string {
	var e struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Error != nil && e.Error.Message != "" {
		if e.Error.Type != "" {
			return e.Error.Type + ": " + e.Error.Message
		}
		return e.Error.Message
	}

	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		b.Reset()
		b.Write(raw)
	}
	s := b.String()
	if len(s) > maxDetailBytes {
		s = s[:maxDetailBytes]
		// Cut back to a rune boundary.
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
		s += "…"
	}
	return s
}

// IsTimeout reports whether err is a transport failure caused by a deadline.
func IsTimeout(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) || ce.Kind != KindTransport {
		return false
	}
	if errors.Is(ce.Err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(ce.Err, &ne) && ne.Timeout()
}
