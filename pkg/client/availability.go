package client

import (
	"net/url"
	"strconv"

	"fixwell/pkg/model"
)

// AvailabilityClient is a thin Go client for the availability service.
// With a service type the catalog duration applies; without one the
// caller may pass a duration in minutes (0 leaves it to the server
// default).
type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseURL string) *AvailabilityClient {
	return &AvailabilityClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AvailabilityClient) GetSlots(date string, serviceTypeID string, duration int) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	if serviceTypeID != "" {
		q.Set("service_type_id", serviceTypeID)
	}
	if duration > 0 {
		q.Set("duration", strconv.Itoa(duration))
	}
	return c.httpClient.GET("/api/v1/availability/slots?" + q.Encode())
}

func (c *AvailabilityClient) GetSlotsRange(start, end string, serviceTypeID string, duration int) (*Response, error) {
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if serviceTypeID != "" {
		q.Set("service_type_id", serviceTypeID)
	}
	if duration > 0 {
		q.Set("duration", strconv.Itoa(duration))
	}
	return c.httpClient.GET("/api/v1/availability/slots/range?" + q.Encode())
}

func (c *AvailabilityClient) GetNextSlot(from string, fromTime string, serviceTypeID string) (*Response, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if fromTime != "" {
		q.Set("from_time", fromTime)
	}
	q.Set("service_type_id", serviceTypeID)
	return c.httpClient.GET("/api/v1/availability/next?" + q.Encode())
}

func (c *AvailabilityClient) DecodeSlots(resp *Response) ([]model.Slot, error) {
	var wrapper struct {
		Data []model.Slot `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}

func (c *AvailabilityClient) DecodeSlot(resp *Response) (*model.Slot, error) {
	var wrapper struct {
		Data *model.Slot `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}

func (c *AvailabilityClient) DecodeDayAvailability(resp *Response) ([]model.DayAvailability, error) {
	var wrapper struct {
		Data []model.DayAvailability `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}
