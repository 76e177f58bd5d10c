package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"teamtime/internal/schedule"
)

// maxSchedulesPerRequest is Graph's limit on the number of schedules a
// single getSchedule call may ask for.
const maxSchedulesPerRequest = 20

// GetSchedules fetches free/busy data for the given attendees over
// [start, end). Requests are chunked to the API limit and fetched
// concurrently; the result preserves the input attendee order.
//
// Attendees the backend returns no schedule for come back with an empty
// busy list, which the resolver treats as unconditionally free.
func (c *Client) GetSchedules(ctx context.Context, attendees []string, start, end time.Time) ([]schedule.AttendeeSchedule, error) {
	results := make([]schedule.AttendeeSchedule, len(attendees))

	g, ctx := errgroup.WithContext(ctx)
	for offset := 0; offset < len(attendees); offset += maxSchedulesPerRequest {
		chunkStart := offset
		chunkEnd := min(offset+maxSchedulesPerRequest, len(attendees))
		chunk := attendees[chunkStart:chunkEnd]

		g.Go(func() error {
			fetched, err := c.getScheduleChunk(ctx, chunk, start, end)
			if err != nil {
				return err
			}
			copy(results[chunkStart:chunkEnd], fetched)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// getScheduleChunk issues one getSchedule call for up to
// maxSchedulesPerRequest attendees.
func (c *Client) getScheduleChunk(ctx context.Context, attendees []string, start, end time.Time) ([]schedule.AttendeeSchedule, error) {
	request := map[string]interface{}{
		"schedules":                attendees,
		"startTime":                NewDateTimeTimeZone(start),
		"endTime":                  NewDateTimeTimeZone(end),
		"availabilityViewInterval": 30,
	}

	var resp scheduleResponse
	if err := c.do(ctx, http.MethodPost, "/me/calendar/getSchedule", request, &resp); err != nil {
		return nil, fmt.Errorf("getSchedule failed: %w", err)
	}

	// Index the reply by schedule ID; the API is not obliged to preserve
	// request order.
	byID := make(map[string]scheduleInformation, len(resp.Value))
	for _, info := range resp.Value {
		byID[info.ScheduleID] = info
	}

	out := make([]schedule.AttendeeSchedule, len(attendees))
	for i, attendee := range attendees {
		out[i] = schedule.AttendeeSchedule{Attendee: attendee}
		info, ok := byID[attendee]
		if !ok {
			continue
		}
		for _, item := range info.ScheduleItems {
			if item.Status == "free" {
				continue
			}
			busyStart, err := item.Start.Time()
			if err != nil {
				return nil, err
			}
			busyEnd, err := item.End.Time()
			if err != nil {
				return nil, err
			}
			out[i].Busy = append(out[i].Busy, schedule.BusyInterval{Start: busyStart, End: busyEnd})
		}
	}
	return out, nil
}

// ListEvents returns the signed-in user's calendar view over [start, end).
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]Event, error) {
	query := url.Values{
		"startDateTime": {start.UTC().Format(time.RFC3339)},
		"endDateTime":   {end.UTC().Format(time.RFC3339)},
		"$orderby":      {"start/dateTime"},
	}

	var resp listResponse[Event]
	if err := c.do(ctx, http.MethodGet, "/me/calendarView?"+query.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("calendarView failed: %w", err)
	}
	return resp.Value, nil
}

// CreateEvent creates a calendar event and returns the created resource.
func (c *Client) CreateEvent(ctx context.Context, event Event) (*Event, error) {
	var created Event
	if err := c.do(ctx, http.MethodPost, "/me/events", event, &created); err != nil {
		return nil, fmt.Errorf("event creation failed: %w", err)
	}
	return &created, nil
}

// CancelEvent cancels an event the signed-in user organizes.
func (c *Client) CancelEvent(ctx context.Context, eventID, comment string) error {
	body := map[string]string{"comment": comment}
	path := fmt.Sprintf("/me/events/%s/cancel", url.PathEscape(eventID))
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("event cancellation failed: %w", err)
	}
	return nil
}

// CreateOnlineMeeting creates a standalone Teams meeting.
func (c *Client) CreateOnlineMeeting(ctx context.Context, subject string, start, end time.Time) (*OnlineMeeting, error) {
	meeting := OnlineMeeting{
		Subject:       subject,
		StartDateTime: start.UTC().Format(time.RFC3339),
		EndDateTime:   end.UTC().Format(time.RFC3339),
	}

	var created OnlineMeeting
	if err := c.do(ctx, http.MethodPost, "/me/onlineMeetings", meeting, &created); err != nil {
		return nil, fmt.Errorf("online meeting creation failed: %w", err)
	}
	return &created, nil
}
