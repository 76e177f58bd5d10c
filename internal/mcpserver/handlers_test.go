package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamtime/internal/graph"
	"teamtime/internal/schedule"
)

// stubGraph records calls and returns canned responses.
type stubGraph struct {
	schedules    []schedule.AttendeeSchedule
	schedulesErr error

	events []graph.Event

	createdEvent  *graph.Event
	createdIsMeet bool

	cancelledEventID string
	cancelComment    string

	mailTo      []string
	mailSubject string
	mailBody    string

	chatID      string
	chatContent string

	teamID         string
	channelID      string
	channelContent string
}

func (s *stubGraph) GetSchedules(ctx context.Context, attendees []string, start, end time.Time) ([]schedule.AttendeeSchedule, error) {
	return s.schedules, s.schedulesErr
}

func (s *stubGraph) ListEvents(ctx context.Context, start, end time.Time) ([]graph.Event, error) {
	return s.events, nil
}

func (s *stubGraph) CreateEvent(ctx context.Context, event graph.Event) (*graph.Event, error) {
	s.createdEvent = &event
	s.createdIsMeet = event.IsOnlineMeeting
	created := event
	created.ID = "evt-1"
	return &created, nil
}

func (s *stubGraph) CancelEvent(ctx context.Context, eventID, comment string) error {
	s.cancelledEventID = eventID
	s.cancelComment = comment
	return nil
}

func (s *stubGraph) CreateOnlineMeeting(ctx context.Context, subject string, start, end time.Time) (*graph.OnlineMeeting, error) {
	return &graph.OnlineMeeting{ID: "meet-1", Subject: subject, JoinWebURL: "https://teams.example/join/meet-1"}, nil
}

func (s *stubGraph) SendMail(ctx context.Context, to []string, subject, body string) error {
	s.mailTo = to
	s.mailSubject = subject
	s.mailBody = body
	return nil
}

func (s *stubGraph) ListChats(ctx context.Context) ([]graph.Chat, error) {
	return []graph.Chat{{ID: "chat-1", Topic: "standup"}}, nil
}

func (s *stubGraph) SendChatMessage(ctx context.Context, chatID, content string) (*graph.ChatMessage, error) {
	s.chatID = chatID
	s.chatContent = content
	return &graph.ChatMessage{ID: "msg-1"}, nil
}

func (s *stubGraph) ListJoinedTeams(ctx context.Context) ([]graph.Team, error) {
	return []graph.Team{{ID: "team-1", DisplayName: "Platform"}}, nil
}

func (s *stubGraph) ListChannels(ctx context.Context, teamID string) ([]graph.Channel, error) {
	s.teamID = teamID
	return []graph.Channel{{ID: "chan-1", DisplayName: "General"}}, nil
}

func (s *stubGraph) SendChannelMessage(ctx context.Context, teamID, channelID, content string) (*graph.ChatMessage, error) {
	s.teamID = teamID
	s.channelID = channelID
	s.channelContent = content
	return &graph.ChatMessage{ID: "msg-2"}, nil
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return textContent.Text
}

func TestFindMeetingTimes(t *testing.T) {
	// Monday within business hours.
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	stub := &stubGraph{
		schedules: []schedule.AttendeeSchedule{
			{Attendee: "ada@contoso.com"},
			{Attendee: "grace@contoso.com", Busy: []schedule.BusyInterval{
				{Start: start, End: start.Add(time.Hour)},
			}},
		},
	}
	srv := NewServer(stub, "test")

	result, err := srv.handleFindMeetingTimes(context.Background(), toolRequest(map[string]interface{}{
		"attendees":        []interface{}{"ada@contoso.com", "grace@contoso.com"},
		"window_start":     start.Format(time.RFC3339),
		"window_end":       start.Add(2 * time.Hour).Format(time.RFC3339),
		"duration_minutes": float64(30),
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var slots []candidateSlotResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &slots))
	require.NotEmpty(t, slots)

	// Slots where both are free rank first.
	assert.Equal(t, 2, slots[0].AvailableAttendees)
	assert.Equal(t, 2, slots[0].TotalAttendees)
	assert.Equal(t, start.Add(time.Hour).Format(time.RFC3339), slots[0].Start)
}

func TestFindMeetingTimes_InvalidWindow(t *testing.T) {
	srv := NewServer(&stubGraph{}, "test")
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	result, err := srv.handleFindMeetingTimes(context.Background(), toolRequest(map[string]interface{}{
		"attendees":    []interface{}{"ada@contoso.com"},
		"window_start": start.Format(time.RFC3339),
		"window_end":   start.Add(-time.Hour).Format(time.RFC3339),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "window_end must be after window_start")
}

func TestFindMeetingTimes_RejectsNonPositiveDuration(t *testing.T) {
	srv := NewServer(&stubGraph{}, "test")
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

	result, err := srv.handleFindMeetingTimes(context.Background(), toolRequest(map[string]interface{}{
		"attendees":        []interface{}{"ada@contoso.com"},
		"window_start":     start.Format(time.RFC3339),
		"window_end":       start.Add(time.Hour).Format(time.RFC3339),
		"duration_minutes": float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFindMeetingTimes_EmptyAttendees(t *testing.T) {
	srv := NewServer(&stubGraph{}, "test")

	result, err := srv.handleFindMeetingTimes(context.Background(), toolRequest(map[string]interface{}{
		"attendees":    []interface{}{},
		"window_start": "2025-03-03T09:00:00Z",
		"window_end":   "2025-03-03T17:00:00Z",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFindMeetingTimes_GraphFailure(t *testing.T) {
	stub := &stubGraph{schedulesErr: assert.AnError}
	srv := NewServer(stub, "test")

	result, err := srv.handleFindMeetingTimes(context.Background(), toolRequest(map[string]interface{}{
		"attendees":    []interface{}{"ada@contoso.com"},
		"window_start": "2025-03-03T09:00:00Z",
		"window_end":   "2025-03-03T17:00:00Z",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "failed to fetch schedules")
}

func TestCreateEvent(t *testing.T) {
	stub := &stubGraph{}
	srv := NewServer(stub, "test")

	result, err := srv.handleCreateEvent(context.Background(), toolRequest(map[string]interface{}{
		"subject":        "Design review",
		"start":          "2025-03-03T10:00:00Z",
		"end":            "2025-03-03T11:00:00Z",
		"attendees":      []interface{}{"grace@contoso.com"},
		"body":           "Agenda attached",
		"online_meeting": true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.NotNil(t, stub.createdEvent)
	assert.Equal(t, "Design review", stub.createdEvent.Subject)
	require.Len(t, stub.createdEvent.Attendees, 1)
	assert.Equal(t, "grace@contoso.com", stub.createdEvent.Attendees[0].EmailAddress.Address)
	assert.True(t, stub.createdIsMeet)
	assert.Equal(t, "teamsForBusiness", stub.createdEvent.OnlineMeetingProvider)

	assert.Contains(t, resultText(t, result), "evt-1")
}

func TestCreateEvent_EndBeforeStart(t *testing.T) {
	srv := NewServer(&stubGraph{}, "test")

	result, err := srv.handleCreateEvent(context.Background(), toolRequest(map[string]interface{}{
		"subject": "Backwards",
		"start":   "2025-03-03T11:00:00Z",
		"end":     "2025-03-03T10:00:00Z",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestCancelEvent(t *testing.T) {
	stub := &stubGraph{}
	srv := NewServer(stub, "test")

	result, err := srv.handleCancelEvent(context.Background(), toolRequest(map[string]interface{}{
		"event_id": "evt-9",
		"comment":  "moving to next week",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "evt-9", stub.cancelledEventID)
	assert.Equal(t, "moving to next week", stub.cancelComment)
}

func TestSendMail(t *testing.T) {
	stub := &stubGraph{}
	srv := NewServer(stub, "test")

	result, err := srv.handleSendMail(context.Background(), toolRequest(map[string]interface{}{
		"to":      []interface{}{"grace@contoso.com", "alan@contoso.com"},
		"subject": "Minutes",
		"body":    "See below.",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, []string{"grace@contoso.com", "alan@contoso.com"}, stub.mailTo)
	assert.Equal(t, "Minutes", stub.mailSubject)
	assert.Equal(t, "See below.", stub.mailBody)
}

func TestSendMail_MissingBody(t *testing.T) {
	srv := NewServer(&stubGraph{}, "test")

	result, err := srv.handleSendMail(context.Background(), toolRequest(map[string]interface{}{
		"to":      []interface{}{"grace@contoso.com"},
		"subject": "Minutes",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSendChatMessage(t *testing.T) {
	stub := &stubGraph{}
	srv := NewServer(stub, "test")

	result, err := srv.handleSendChatMessage(context.Background(), toolRequest(map[string]interface{}{
		"chat_id": "chat-1",
		"message": "on my way",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "chat-1", stub.chatID)
	assert.Equal(t, "on my way", stub.chatContent)
}

func TestSendChannelMessage(t *testing.T) {
	stub := &stubGraph{}
	srv := NewServer(stub, "test")

	result, err := srv.handleSendChannelMessage(context.Background(), toolRequest(map[string]interface{}{
		"team_id":    "team-1",
		"channel_id": "chan-1",
		"message":    "release is out",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	assert.Equal(t, "team-1", stub.teamID)
	assert.Equal(t, "chan-1", stub.channelID)
	assert.Equal(t, "release is out", stub.channelContent)
}

func TestListTools_ReturnJSON(t *testing.T) {
	srv := NewServer(&stubGraph{events: []graph.Event{{ID: "evt-3", Subject: "1:1"}}}, "test")

	result, err := srv.handleListEvents(context.Background(), toolRequest(map[string]interface{}{
		"start": "2025-03-03T00:00:00Z",
		"end":   "2025-03-04T00:00:00Z",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "evt-3")

	chats, err := srv.handleListChats(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, chats), "standup")

	teams, err := srv.handleListTeams(context.Background(), toolRequest(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, teams), "Platform")

	channels, err := srv.handleListChannels(context.Background(), toolRequest(map[string]interface{}{
		"team_id": "team-1",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, channels), "General")

	meeting, err := srv.handleCreateOnlineMeeting(context.Background(), toolRequest(map[string]interface{}{
		"subject": "Sync",
		"start":   "2025-03-03T10:00:00Z",
		"end":     "2025-03-03T10:30:00Z",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, meeting), "https://teams.example/join/meet-1")
}
