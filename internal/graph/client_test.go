package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticTokens is a TokenProvider handing out a fixed token.
type staticTokens string

func (s staticTokens) AccessToken(ctx context.Context) (string, error) {
	return string(s), nil
}

// failingTokens always fails acquisition.
type failingTokens struct{}

func (failingTokens) AccessToken(ctx context.Context) (string, error) {
	return "", errors.New("acquisition failed")
}

func TestClient_RequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("client-request-id")
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("token-123"), WithBaseURL(srv.URL))
	_, err := c.ListChats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.NotEmpty(t, gotRequestID, "every request carries a correlation id")
}

func TestClient_TokenFailureShortCircuits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent without a token")
	}))
	defer srv.Close()

	c := NewClient(failingTokens{}, WithBaseURL(srv.URL))
	_, err := c.ListChats(context.Background())
	assert.Error(t, err)
}

func TestClient_DecodesGraphError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":"ErrorAccessDenied","message":"Access is denied."}}`)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	_, err := c.ListJoinedTeams(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "ErrorAccessDenied", apiErr.Code)
}

func TestGetSchedules_ParsesBusyIntervals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/calendar/getSchedule", r.URL.Path)

		var req struct {
			Schedules []string `json:"schedules"`
			Interval  int      `json:"availabilityViewInterval"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a@contoso.com", "b@contoso.com"}, req.Schedules)
		assert.Equal(t, 30, req.Interval)

		fmt.Fprint(w, `{"value":[
			{"scheduleId":"b@contoso.com","scheduleItems":[
				{"status":"busy","start":{"dateTime":"2025-03-03T10:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2025-03-03T11:00:00.0000000","timeZone":"UTC"}},
				{"status":"free","start":{"dateTime":"2025-03-03T12:00:00.0000000","timeZone":"UTC"},"end":{"dateTime":"2025-03-03T13:00:00.0000000","timeZone":"UTC"}}
			]}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	schedules, err := c.GetSchedules(context.Background(), []string{"a@contoso.com", "b@contoso.com"}, start, start.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, schedules, 2)

	// Input order is preserved; "a" came back without data and is empty.
	assert.Equal(t, "a@contoso.com", schedules[0].Attendee)
	assert.Empty(t, schedules[0].Busy)

	// "free" entries are dropped, busy ones parsed.
	assert.Equal(t, "b@contoso.com", schedules[1].Attendee)
	require.Len(t, schedules[1].Busy, 1)
	assert.Equal(t, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), schedules[1].Busy[0].Start)
	assert.Equal(t, time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC), schedules[1].Busy[0].End)
}

func TestGetSchedules_ChunksLargeAttendeeLists(t *testing.T) {
	var mu sync.Mutex
	var chunkSizes []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Schedules []string `json:"schedules"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		chunkSizes = append(chunkSizes, len(req.Schedules))
		mu.Unlock()

		resp := scheduleResponse{}
		for _, id := range req.Schedules {
			resp.Value = append(resp.Value, scheduleInformation{ScheduleID: id})
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	attendees := make([]string, 45)
	for i := range attendees {
		attendees[i] = fmt.Sprintf("user%02d@contoso.com", i)
	}

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	schedules, err := c.GetSchedules(context.Background(), attendees, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, schedules, len(attendees))

	assert.ElementsMatch(t, []int{20, 20, 5}, chunkSizes)
	for i, s := range schedules {
		assert.Equal(t, attendees[i], s.Attendee, "attendee order must be preserved across chunks")
	}
}

func TestSendMail_ShapesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/sendMail", r.URL.Path)

		var req struct {
			Message struct {
				Subject      string      `json:"subject"`
				ToRecipients []Recipient `json:"toRecipients"`
			} `json:"message"`
			SaveToSentItems bool `json:"saveToSentItems"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "status update", req.Message.Subject)
		require.Len(t, req.Message.ToRecipients, 1)
		assert.Equal(t, "ops@contoso.com", req.Message.ToRecipients[0].EmailAddress.Address)
		assert.True(t, req.SaveToSentItems)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	err := c.SendMail(context.Background(), []string{"ops@contoso.com"}, "status update", "all good")
	assert.NoError(t, err)
}

func TestListEvents_QueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/calendarView", r.URL.Path)
		assert.Equal(t, "2025-03-03T09:00:00Z", r.URL.Query().Get("startDateTime"))
		assert.Equal(t, "2025-03-03T17:00:00Z", r.URL.Query().Get("endDateTime"))

		fmt.Fprint(w, `{"value":[{"id":"ev1","subject":"standup",
			"start":{"dateTime":"2025-03-03T09:30:00.0000000","timeZone":"UTC"},
			"end":{"dateTime":"2025-03-03T09:45:00.0000000","timeZone":"UTC"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	events, err := c.ListEvents(context.Background(), start, start.Add(8*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "standup", events[0].Subject)
}

func TestSendChannelMessage_Path(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/team-1/channels/chan-1/messages", r.URL.Path)
		fmt.Fprint(w, `{"id":"msg-1","body":{"contentType":"text","content":"hello"}}`)
	}))
	defer srv.Close()

	c := NewClient(staticTokens("t"), WithBaseURL(srv.URL))
	msg, err := c.SendChannelMessage(context.Background(), "team-1", "chan-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
}
