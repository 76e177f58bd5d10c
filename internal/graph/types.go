package graph

import (
	"fmt"
	"time"
)

// graphTimeLayout is the wall-clock layout Graph uses inside
// dateTimeTimeZone values. Fractional seconds in responses are accepted by
// time.Parse without appearing in the layout.
const graphTimeLayout = "2006-01-02T15:04:05"

// DateTimeTimeZone is Graph's split representation of an instant.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// NewDateTimeTimeZone converts an instant to Graph's representation in UTC.
func NewDateTimeTimeZone(t time.Time) DateTimeTimeZone {
	return DateTimeTimeZone{
		DateTime: t.UTC().Format(graphTimeLayout),
		TimeZone: "UTC",
	}
}

// Time converts back to a time.Time. Only UTC responses are expected; the
// client requests UTC via the Prefer header on reads.
func (d DateTimeTimeZone) Time() (time.Time, error) {
	t, err := time.Parse(graphTimeLayout, d.DateTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid graph timestamp %q: %w", d.DateTime, err)
	}
	return t, nil
}

// EmailAddress identifies a mail recipient or attendee.
type EmailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Attendee is an event attendee.
type Attendee struct {
	EmailAddress EmailAddress `json:"emailAddress"`
	Type         string       `json:"type,omitempty"`
}

// ItemBody is a mail or event body.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Event is a calendar event.
type Event struct {
	ID                    string             `json:"id,omitempty"`
	Subject               string             `json:"subject"`
	Body                  *ItemBody          `json:"body,omitempty"`
	Start                 DateTimeTimeZone   `json:"start"`
	End                   DateTimeTimeZone   `json:"end"`
	Attendees             []Attendee         `json:"attendees,omitempty"`
	IsOnlineMeeting       bool               `json:"isOnlineMeeting,omitempty"`
	OnlineMeetingProvider string             `json:"onlineMeetingProvider,omitempty"`
	OnlineMeeting         *OnlineMeetingInfo `json:"onlineMeeting,omitempty"`
	WebLink               string             `json:"webLink,omitempty"`
	Organizer             *Recipient         `json:"organizer,omitempty"`
}

// Recipient wraps an email address the way Graph nests it.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// OnlineMeetingInfo carries the join URL of a Teams meeting attached to an
// event.
type OnlineMeetingInfo struct {
	JoinURL string `json:"joinUrl,omitempty"`
}

// Message is an outgoing mail message.
type Message struct {
	Subject      string      `json:"subject"`
	Body         ItemBody    `json:"body"`
	ToRecipients []Recipient `json:"toRecipients"`
}

// Chat is a one-on-one or group chat.
type Chat struct {
	ID       string `json:"id"`
	Topic    string `json:"topic,omitempty"`
	ChatType string `json:"chatType,omitempty"`
}

// ChatMessage is a message posted to a chat or channel.
type ChatMessage struct {
	ID              string   `json:"id,omitempty"`
	Body            ItemBody `json:"body"`
	CreatedDateTime string   `json:"createdDateTime,omitempty"`
}

// Team is a joined team.
type Team struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// Channel is a channel within a team.
type Channel struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
}

// OnlineMeeting is a standalone Teams online meeting.
type OnlineMeeting struct {
	ID            string `json:"id,omitempty"`
	Subject       string `json:"subject"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	JoinWebURL    string `json:"joinWebUrl,omitempty"`
}

// scheduleResponse is the wire shape of a getSchedule reply.
type scheduleResponse struct {
	Value []scheduleInformation `json:"value"`
}

type scheduleInformation struct {
	ScheduleID    string         `json:"scheduleId"`
	ScheduleItems []scheduleItem `json:"scheduleItems"`
}

type scheduleItem struct {
	Status string           `json:"status"`
	Start  DateTimeTimeZone `json:"start"`
	End    DateTimeTimeZone `json:"end"`
}

// listResponse is the generic shape of Graph collection replies.
type listResponse[T any] struct {
	Value []T `json:"value"`
}
