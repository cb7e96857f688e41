package client

import (
	"fmt"
	"net/url"

	"fixwell/pkg/model"
)

// AppointmentClient is a thin Go client for the appointments service,
// used by integration tests and internal tooling.
type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseURL string) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AppointmentClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/appointments", body)
}

func (c *AppointmentClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/appointments/" + url.PathEscape(id))
}

func (c *AppointmentClient) GetForDate(date string, serviceTypeID string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	if serviceTypeID != "" {
		q.Set("service_type_id", serviceTypeID)
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET("/api/v1/appointments?" + q.Encode())
}

func (c *AppointmentClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/appointments/"+url.PathEscape(id), body)
}

func (c *AppointmentClient) Confirm(id string) (*Response, error) {
	return c.httpClient.POST("/api/v1/appointments/"+url.PathEscape(id)+"/confirm", nil)
}

func (c *AppointmentClient) Cancel(id string, reason string) (*Response, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return c.httpClient.POST("/api/v1/appointments/"+url.PathEscape(id)+"/cancel", body)
}

func (c *AppointmentClient) Complete(id string, notes string) (*Response, error) {
	body := map[string]string{}
	if notes != "" {
		body["notes"] = notes
	}
	return c.httpClient.POST("/api/v1/appointments/"+url.PathEscape(id)+"/complete", body)
}

func (c *AppointmentClient) LookupByConfirmationCode(code string) (*Response, error) {
	return c.httpClient.GET("/api/v1/confirmations/" + url.PathEscape(code))
}

func (c *AppointmentClient) DecodeAppointment(resp *Response) (*model.Appointment, error) {
	var wrapper struct {
		Data *model.Appointment `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}

func (c *AppointmentClient) DecodeAppointments(resp *Response) ([]*model.Appointment, int64, error) {
	var wrapper struct {
		Data       []*model.Appointment `json:"data"`
		TotalCount int64                `json:"total_count"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, 0, err
	}
	return wrapper.Data, wrapper.TotalCount, nil
}
