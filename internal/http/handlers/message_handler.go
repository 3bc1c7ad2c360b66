// Message HTTP handlers.
//
// This file exposes the chat endpoint:
//   - POST /sessions/{id}/messages   (append a user message and the assistant reply)
//
// The reply is produced synchronously. A failed completion call is not an
// HTTP error: the assistant turn carries an apology and the status is 200.
package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/services"
)

//
// DTOs
//

// PostMessageRequest is the JSON payload for sending a user message.
//
// Content is normalized by the handler (Unicode NFC, line endings, excessive
// blank lines) before it reaches the chat service, which enforces emptiness
// and the maximum rune count.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required" example:"What is the price of the Chocolate cake?"`
}

// PostMessageResponse carries the assistant turn and the session's turn count.
type PostMessageResponse struct {
	Reply domain.ChatTurn `json:"reply"`
	Turns int             `json:"turns" example:"2"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
// NFC composition, CRLF/CR to LF, 3+ LFs collapsed to two, outer space trimmed.
func sanitizeContent(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

//
// Handlers
//

// PostMessage godoc
// @ID          postMessage
// @Summary     Send a message and get the assistant reply
// @Description Appends the user message to the session, asks the completion API for a reply
// @Description and appends it. When the completion call fails the reply is an apology turn
// @Description beginning with "Sorry, something went wrong:" and the status is still 200.
// @Tags        Sessions
// @Accept      json
// @Produce     json
//
// @Param       id    path  string                       true  "Session ID (UUID)"  format(uuid)
// @Param       body  body  handlers.PostMessageRequest  true  "User message payload"
//
// @Success     200  {object}  handlers.PostMessageResponse  "Assistant reply"
// @Failure     400  {object}  handlers.ErrorResponse        "Empty or too long"
// @Failure     404  {object}  handlers.ErrorResponse        "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse        "Session is awaiting a reply"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /sessions/{id}/messages [post]
func (h *Handlers) PostMessage(c *gin.Context) {
	sess, found := h.lookupSession(c)
	if !found {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	reply, err := h.chatSvc.Send(c.Request.Context(), sess, sanitizeContent(req.Content))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt):
			fail(c, http.StatusBadRequest, ErrCodeEmptyPrompt, "content required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodePromptTooLong, err.Error())
		case errors.Is(err, services.ErrSessionBusy):
			fail(c, http.StatusConflict, ErrCodeSessionBusy, "session is awaiting a reply")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, PostMessageResponse{Reply: reply, Turns: sess.Len()})
}
