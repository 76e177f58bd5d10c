package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"teamtime/internal/graph"
	"teamtime/internal/schedule"
)

// GraphAPI is the Graph surface the tool handlers need. The concrete
// *graph.Client satisfies it; tests substitute a stub.
type GraphAPI interface {
	GetSchedules(ctx context.Context, attendees []string, start, end time.Time) ([]schedule.AttendeeSchedule, error)
	ListEvents(ctx context.Context, start, end time.Time) ([]graph.Event, error)
	CreateEvent(ctx context.Context, event graph.Event) (*graph.Event, error)
	CancelEvent(ctx context.Context, eventID, comment string) error
	CreateOnlineMeeting(ctx context.Context, subject string, start, end time.Time) (*graph.OnlineMeeting, error)
	SendMail(ctx context.Context, to []string, subject, body string) error
	ListChats(ctx context.Context) ([]graph.Chat, error)
	SendChatMessage(ctx context.Context, chatID, content string) (*graph.ChatMessage, error)
	ListJoinedTeams(ctx context.Context) ([]graph.Team, error)
	ListChannels(ctx context.Context, teamID string) ([]graph.Channel, error)
	SendChannelMessage(ctx context.Context, teamID, channelID, content string) (*graph.ChatMessage, error)
}

// Server exposes the teamtime tool set over the MCP stdio transport.
type Server struct {
	graph     GraphAPI
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server and registers all tools.
func NewServer(api GraphAPI, version string) *Server {
	mcpServer := server.NewMCPServer(
		"teamtime",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
	)

	s := &Server{
		graph:     api,
		mcpServer: mcpServer,
	}
	s.registerTools()

	return s
}

// Start serves MCP over stdio. Blocks until the client closes the
// connection.
func (s *Server) Start(ctx context.Context) error {
	return server.ServeStdio(s.mcpServer)
}

// registerTools registers the full tool set.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("find_meeting_times",
		mcp.WithDescription("Find common meeting times across attendee calendars. Returns up to 10 candidate slots ranked by attendee availability."),
		mcp.WithArray("attendees",
			mcp.Required(),
			mcp.Description("Email addresses of the attendees to check"),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
		mcp.WithString("window_start",
			mcp.Required(),
			mcp.Description("Start of the search window (RFC 3339)"),
		),
		mcp.WithString("window_end",
			mcp.Required(),
			mcp.Description("End of the search window (RFC 3339)"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Description("Meeting duration in minutes (default 30)"),
		),
	), s.handleFindMeetingTimes)

	s.mcpServer.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List the signed-in user's calendar events in a time range"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Range start (RFC 3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Range end (RFC 3339)"),
		),
	), s.handleListEvents)

	s.mcpServer.AddTool(mcp.NewTool("create_event",
		mcp.WithDescription("Create a calendar event, optionally as a Teams online meeting"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Event subject"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start (RFC 3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end (RFC 3339)"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Email addresses of attendees to invite"),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
		mcp.WithString("body",
			mcp.Description("Event body text"),
		),
		mcp.WithBoolean("online_meeting",
			mcp.Description("Attach a Teams online meeting to the event"),
		),
	), s.handleCreateEvent)

	s.mcpServer.AddTool(mcp.NewTool("cancel_event",
		mcp.WithDescription("Cancel an event the signed-in user organizes"),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("Identifier of the event to cancel"),
		),
		mcp.WithString("comment",
			mcp.Description("Cancellation note sent to attendees"),
		),
	), s.handleCancelEvent)

	s.mcpServer.AddTool(mcp.NewTool("create_online_meeting",
		mcp.WithDescription("Create a standalone Teams online meeting and return its join link"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Meeting subject"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Meeting start (RFC 3339)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Meeting end (RFC 3339)"),
		),
	), s.handleCreateOnlineMeeting)

	s.mcpServer.AddTool(mcp.NewTool("send_mail",
		mcp.WithDescription("Send a plain-text mail from the signed-in user"),
		mcp.WithArray("to",
			mcp.Required(),
			mcp.Description("Recipient email addresses"),
			mcp.Items(map[string]interface{}{"type": "string"}),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Mail subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Mail body text"),
		),
	), s.handleSendMail)

	s.mcpServer.AddTool(mcp.NewTool("list_chats",
		mcp.WithDescription("List the signed-in user's chats"),
	), s.handleListChats)

	s.mcpServer.AddTool(mcp.NewTool("send_chat_message",
		mcp.WithDescription("Send a message to a chat"),
		mcp.WithString("chat_id",
			mcp.Required(),
			mcp.Description("Identifier of the chat"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message text"),
		),
	), s.handleSendChatMessage)

	s.mcpServer.AddTool(mcp.NewTool("list_teams",
		mcp.WithDescription("List the teams the signed-in user is a member of"),
	), s.handleListTeams)

	s.mcpServer.AddTool(mcp.NewTool("list_channels",
		mcp.WithDescription("List the channels of a team"),
		mcp.WithString("team_id",
			mcp.Required(),
			mcp.Description("Identifier of the team"),
		),
	), s.handleListChannels)

	s.mcpServer.AddTool(mcp.NewTool("send_channel_message",
		mcp.WithDescription("Send a message to a team channel"),
		mcp.WithString("team_id",
			mcp.Required(),
			mcp.Description("Identifier of the team"),
		),
		mcp.WithString("channel_id",
			mcp.Required(),
			mcp.Description("Identifier of the channel"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Message text"),
		),
	), s.handleSendChannelMessage)
}
