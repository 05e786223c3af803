package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/111KartoFan111/AiAssistant/models"
	ws "github.com/111KartoFan111/AiAssistant/websocket"
)

// LiveInterviewHandler drives an interview over a websocket connection. The
// client sends answers, the handler replies with the next question or the
// completion notice. The flow is the same as the REST submit endpoint, just
// kept on one connection.
type LiveInterviewHandler struct {
	interviewService *InterviewService
}

func NewLiveInterviewHandler(interviewService *InterviewService) *LiveInterviewHandler {
	return &LiveInterviewHandler{
		interviewService: interviewService,
	}
}

// HandleMessage processes one client frame.
func (h *LiveInterviewHandler) HandleMessage(client *ws.Client, user *models.User, messageBytes []byte) {
	var msg ws.Message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		slog.Error("Failed to unmarshal websocket message", "error", err, "interview_id", client.InterviewID)
		client.SendEvent(ws.Event{Type: "error", Error: "invalid message"})
		return
	}

	ctx := context.Background()

	switch msg.Type {
	case "answer":
		h.handleAnswer(ctx, client, user, msg)
	case "complete":
		h.handleComplete(ctx, client, user)
	default:
		slog.Warn("Unknown websocket message type", "type", msg.Type, "interview_id", client.InterviewID)
		client.SendEvent(ws.Event{Type: "error", Error: "unknown message type"})
	}
}

func (h *LiveInterviewHandler) handleAnswer(ctx context.Context, client *ws.Client, user *models.User, msg ws.Message) {
	response, err := h.interviewService.SubmitAnswer(ctx, user, client.InterviewID, SubmitAnswerRequest{
		Answer:          msg.Answer,
		ClientMessageID: msg.ClientMessageID,
	})
	if err != nil {
		slog.Error("Failed to submit answer over websocket", "error", err, "interview_id", client.InterviewID)
		client.SendEvent(ws.Event{Type: "error", Error: err.Error()})
		return
	}

	if response.IsInterviewComplete {
		client.SendEvent(ws.Event{Type: "completed", Payload: response})
		return
	}
	client.SendEvent(ws.Event{Type: "question", Payload: response})
}

func (h *LiveInterviewHandler) handleComplete(ctx context.Context, client *ws.Client, user *models.User) {
	if err := h.interviewService.CompleteInterview(ctx, user, client.InterviewID); err != nil {
		slog.Error("Failed to complete interview over websocket", "error", err, "interview_id", client.InterviewID)
		client.SendEvent(ws.Event{Type: "error", Error: err.Error()})
		return
	}
	client.SendEvent(ws.Event{Type: "completed", Payload: map[string]string{"message": "Interview completed"}})
}
