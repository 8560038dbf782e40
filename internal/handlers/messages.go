package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dental-lab-backend/internal/models"
	"dental-lab-backend/internal/orders"
	"dental-lab-backend/internal/supabase"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS layer; the socket
		// carries no credentials beyond the bearer token.
		return true
	},
}

// messageHub fans new-message events out to each recipient's open
// sockets.
type messageHub struct {
	mu   sync.Mutex
	subs map[uuid.UUID][]chan []byte
}

func newMessageHub() *messageHub {
	return &messageHub{subs: make(map[uuid.UUID][]chan []byte)}
}

func (h *messageHub) subscribe(userID uuid.UUID) chan []byte {
	ch := make(chan []byte, 100)
	h.mu.Lock()
	h.subs[userID] = append(h.subs[userID], ch)
	h.mu.Unlock()
	return ch
}

func (h *messageHub) unsubscribe(userID uuid.UUID, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	channels := h.subs[userID]
	for i, sub := range channels {
		if sub == ch {
			h.subs[userID] = append(channels[:i], channels[i+1:]...)
			break
		}
	}
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
}

func (h *messageHub) publish(userID uuid.UUID, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		select {
		case ch <- payload:
		default:
			// Slow consumer; drop rather than block the sender.
		}
	}
}

type MessagesHandler struct {
	dbClient *supabase.DatabaseClient
	hub      *messageHub
}

func NewMessagesHandler(dbClient *supabase.DatabaseClient) *MessagesHandler {
	return &MessagesHandler{dbClient: dbClient, hub: newMessageHub()}
}

// ListThreads godoc
// @Summary     List message threads
// @Description Conversations with their latest message and unread flag.
// @Tags        messages
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.ThreadResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /messages [get]
func (h *MessagesHandler) ListThreads(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	threads, err := h.dbClient.ListThreads(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list threads", Message: err.Error()})
		return
	}

	out := make([]models.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		out = append(out, models.ThreadResponse{
			ThreadID:    t.ThreadID.String(),
			Counterpart: t.CounterpartName,
			LastMessage: t.LastMessage,
			LastSentAt:  t.LastSentAt,
			Unread:      t.Unread,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListMessages godoc
// @Summary     List a thread's messages
// @Description Oldest first. Reading a thread marks its unread messages read.
// @Tags        messages
// @Produce     json
// @Security    Bearer
// @Param       thread_id path string true "Thread ID (UUID)"
// @Success     200 {array} models.MessageResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /messages/{thread_id} [get]
func (h *MessagesHandler) ListMessages(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}

	msgs, err := h.dbClient.ListMessages(c.Request.Context(), threadID, userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "thread not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list messages", Message: err.Error()})
		return
	}

	out := make([]models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, models.MessageResponse{
			ID:       m.ID.String(),
			ThreadID: m.ThreadID.String(),
			SenderID: m.SenderID.String(),
			Body:     m.Body,
			Mine:     m.SenderID == userID,
			SentAt:   m.SentAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Send godoc
// @Summary     Send a message on a thread
// @Tags        messages
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       thread_id path string true "Thread ID (UUID)"
// @Param       request body models.SendMessageRequest true "Message body"
// @Success     201 {object} models.MessageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /messages/{thread_id} [post]
func (h *MessagesHandler) Send(c *gin.Context) {
	if h.dbClient == nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "database not available"})
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "message body is required"})
		return
	}

	recipient, err := h.dbClient.ThreadRecipient(c.Request.Context(), threadID, userID)
	if errors.Is(err, orders.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "thread not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to resolve thread", Message: err.Error()})
		return
	}

	msg := &models.Message{
		ID:       uuid.New(),
		ThreadID: threadID,
		SenderID: userID,
		Body:     req.Body,
		SentAt:   time.Now(),
	}
	if err := h.dbClient.CreateMessage(c.Request.Context(), msg, recipient); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "failed to send message", Message: err.Error()})
		return
	}

	resp := models.MessageResponse{
		ID:       msg.ID.String(),
		ThreadID: msg.ThreadID.String(),
		SenderID: msg.SenderID.String(),
		Body:     msg.Body,
		SentAt:   msg.SentAt,
	}
	if payload, err := json.Marshal(resp); err == nil {
		h.hub.publish(recipient, payload)
	}

	resp.Mine = true
	c.JSON(http.StatusCreated, resp)
}

// Stream godoc
// @Summary     Stream incoming messages over a websocket
// @Tags        messages
// @Security    Bearer
// @Success     101
// @Failure     401 {object} models.ErrorResponse
// @Router      /messages/stream [get]
func (h *MessagesHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "websocket upgrade failed: " + err.Error()})
		return
	}

	ch := h.hub.subscribe(userID)
	done := make(chan struct{})

	go func() {
		defer conn.Close()
		for {
			select {
			case msg := <-ch:
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Block on reads so the handler notices the peer going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
	h.hub.unsubscribe(userID, ch)
	log.Printf("message stream closed for %s", userID)
}
