package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"teamtime/internal/graph"
	"teamtime/internal/schedule"
)

const defaultMeetingDuration = 30 * time.Minute

// candidateSlotResult is the wire shape of a ranked slot.
type candidateSlotResult struct {
	Start              string `json:"start"`
	End                string `json:"end"`
	AvailableAttendees int    `json:"availableAttendeeCount"`
	TotalAttendees     int    `json:"totalAttendeeCount"`
}

func (s *Server) handleFindMeetingTimes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	attendees, err := stringSliceArgument(request, "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(attendees) == 0 {
		return mcp.NewToolResultError("attendees must not be empty"), nil
	}

	windowStart, err := timeArgument(request, "window_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	windowEnd, err := timeArgument(request, "window_end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !windowEnd.After(windowStart) {
		return mcp.NewToolResultError("window_end must be after window_start"), nil
	}

	duration := defaultMeetingDuration
	if raw, ok := request.GetArguments()["duration_minutes"]; ok {
		minutes, ok := raw.(float64)
		if !ok || minutes <= 0 {
			return mcp.NewToolResultError("duration_minutes must be a positive number"), nil
		}
		duration = time.Duration(minutes) * time.Minute
	}

	schedules, err := s.graph.GetSchedules(ctx, attendees, windowStart, windowEnd)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch schedules: %v", err)), nil
	}

	slots := schedule.FindSlots(schedules, windowStart, windowEnd, duration)

	results := make([]candidateSlotResult, 0, len(slots))
	for _, slot := range slots {
		results = append(results, candidateSlotResult{
			Start:              slot.Start.Format(time.RFC3339),
			End:                slot.End.Format(time.RFC3339),
			AvailableAttendees: slot.AvailableAttendees,
			TotalAttendees:     len(attendees),
		})
	}

	return jsonResult(results)
}

func (s *Server) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := timeArgument(request, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := timeArgument(request, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := s.graph.ListEvents(ctx, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list events: %v", err)), nil
	}

	return jsonResult(events)
}

func (s *Server) handleCreateEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := request.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := timeArgument(request, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := timeArgument(request, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !end.After(start) {
		return mcp.NewToolResultError("end must be after start"), nil
	}

	attendees, err := stringSliceArgument(request, "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event := graph.Event{
		Subject: subject,
		Start:   graph.NewDateTimeTimeZone(start),
		End:     graph.NewDateTimeTimeZone(end),
	}
	for _, address := range attendees {
		event.Attendees = append(event.Attendees, graph.Attendee{
			Type:         "required",
			EmailAddress: graph.EmailAddress{Address: address},
		})
	}
	if body := optionalString(request, "body"); body != "" {
		event.Body = &graph.ItemBody{ContentType: "text", Content: body}
	}
	if online, _ := request.GetArguments()["online_meeting"].(bool); online {
		event.IsOnlineMeeting = true
		event.OnlineMeetingProvider = "teamsForBusiness"
	}

	created, err := s.graph.CreateEvent(ctx, event)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create event: %v", err)), nil
	}

	return jsonResult(created)
}

func (s *Server) handleCancelEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := request.RequireString("event_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	comment := optionalString(request, "comment")

	if err := s.graph.CancelEvent(ctx, eventID, comment); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to cancel event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s cancelled", eventID)), nil
}

func (s *Server) handleCreateOnlineMeeting(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, err := request.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := timeArgument(request, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := timeArgument(request, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !end.After(start) {
		return mcp.NewToolResultError("end must be after start"), nil
	}

	meeting, err := s.graph.CreateOnlineMeeting(ctx, subject, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create online meeting: %v", err)), nil
	}

	return jsonResult(meeting)
}

func (s *Server) handleSendMail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := stringSliceArgument(request, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(to) == 0 {
		return mcp.NewToolResultError("to must not be empty"), nil
	}
	subject, err := request.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := request.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.graph.SendMail(ctx, to, subject, body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send mail: %v", err)), nil
	}

	return mcp.NewToolResultText("Mail sent"), nil
}

func (s *Server) handleListChats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chats, err := s.graph.ListChats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list chats: %v", err)), nil
	}

	return jsonResult(chats)
}

func (s *Server) handleSendChatMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID, err := request.RequireString("chat_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sent, err := s.graph.SendChatMessage(ctx, chatID, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send chat message: %v", err)), nil
	}

	return jsonResult(sent)
}

func (s *Server) handleListTeams(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teams, err := s.graph.ListJoinedTeams(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list teams: %v", err)), nil
	}

	return jsonResult(teams)
}

func (s *Server) handleListChannels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID, err := request.RequireString("team_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	channels, err := s.graph.ListChannels(ctx, teamID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list channels: %v", err)), nil
	}

	return jsonResult(channels)
}

func (s *Server) handleSendChannelMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID, err := request.RequireString("team_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	channelID, err := request.RequireString("channel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sent, err := s.graph.SendChannelMessage(ctx, teamID, channelID, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send channel message: %v", err)), nil
	}

	return jsonResult(sent)
}

// optionalString reads a string argument, returning "" when absent.
func optionalString(request mcp.CallToolRequest, key string) string {
	value, _ := request.GetArguments()[key].(string)
	return value
}

// timeArgument parses a required RFC 3339 timestamp argument.
func timeArgument(request mcp.CallToolRequest, key string) (time.Time, error) {
	raw, err := request.RequireString(key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp: %v", key, err)
	}
	return t, nil
}

// stringSliceArgument reads an optional array-of-strings argument.
func stringSliceArgument(request mcp.CallToolRequest, key string) ([]string, error) {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be an array of strings", key)
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		value, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be an array of strings", key)
		}
		values = append(values, value)
	}
	return values, nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
