package services

import (
	"context"
	"encoding/json"
	"testing"

	ws "github.com/111KartoFan111/AiAssistant/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, client *ws.Client) ws.Event {
	t.Helper()
	select {
	case data := <-client.Send:
		var event ws.Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("no event queued for client")
		return ws.Event{}
	}
}

func TestLiveInterviewHandleMessage(t *testing.T) {
	service, _, _ := newInterviewFixture(t)
	handler := NewLiveInterviewHandler(service)
	user := testUser()

	started, err := service.StartInterview(context.Background(), user, StartInterviewRequest{Position: "Backend Engineer"})
	require.NoError(t, err)

	client := &ws.Client{
		Send:        make(chan []byte, 64),
		UserID:      user.ID,
		InterviewID: started.InterviewID,
	}

	frame, err := json.Marshal(ws.Message{Type: "answer", Answer: "My answer.", ClientMessageID: "msg-1"})
	require.NoError(t, err)
	handler.HandleMessage(client, user, frame)

	event := receiveEvent(t, client)
	assert.Equal(t, "question", event.Type)
	require.NotNil(t, event.Payload)

	handler.HandleMessage(client, user, []byte(`{"type":"complete"}`))
	event = receiveEvent(t, client)
	assert.Equal(t, "completed", event.Type)

	// Answers after completion come back as errors on the same channel.
	handler.HandleMessage(client, user, frame)
	event = receiveEvent(t, client)
	assert.Equal(t, "error", event.Type)
	assert.NotEmpty(t, event.Error)
}

func TestLiveInterviewHandleMessageRejectsGarbage(t *testing.T) {
	service, _, _ := newInterviewFixture(t)
	handler := NewLiveInterviewHandler(service)
	user := testUser()

	client := &ws.Client{Send: make(chan []byte, 64), InterviewID: "interview-1"}

	handler.HandleMessage(client, user, []byte("not json"))
	event := receiveEvent(t, client)
	assert.Equal(t, "error", event.Type)

	handler.HandleMessage(client, user, []byte(`{"type":"ping"}`))
	event = receiveEvent(t, client)
	assert.Equal(t, "error", event.Type)
	assert.Equal(t, "unknown message type", event.Error)
}
