// Package graph is a thin, typed client for the Microsoft Graph operations
// teamtime exposes: free/busy retrieval, calendar events, mail, chat and
// channel messages, and online meetings.
//
// The client performs no business logic. It shapes requests, decodes
// responses into explicit structs at the boundary, and attaches a bearer
// token obtained from a TokenProvider on every call. Access tokens are
// requested per call so the provider can refresh silently underneath.
package graph
