// Package mcpserver exposes teamtime's calendar, mail, chat and scheduling
// operations as MCP tools over stdio.
//
// The server is constructed only after authentication has fully completed
// and the admission checks have passed; that ordering is a hard precondition
// of the startup flow, not a best-effort arrangement.
//
// Tool handlers are thin request/response shaping over the Graph client.
// The one exception is find_meeting_times, which combines free/busy
// retrieval with the in-process availability resolver and performs the
// defensive input validation the resolver itself deliberately omits.
package mcpserver
