package client

import (
	"fmt"
	"net/url"

	"fixwell/pkg/model"
)

// RuleClient is a thin Go client for the rules service.
type RuleClient struct {
	httpClient *HttpClient
}

func NewRuleClient(baseURL string) *RuleClient {
	return &RuleClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *RuleClient) Create(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/availability-rules", body)
}

func (c *RuleClient) GetByID(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/availability-rules/" + url.PathEscape(id))
}

func (c *RuleClient) ListForDay(dayOfWeek int, serviceTypeID string) (*Response, error) {
	q := url.Values{}
	q.Set("day_of_week", fmt.Sprintf("%d", dayOfWeek))
	if serviceTypeID != "" {
		q.Set("service_type_id", serviceTypeID)
	}
	return c.httpClient.GET("/api/v1/availability-rules?" + q.Encode())
}

func (c *RuleClient) Update(id string, body any) (*Response, error) {
	return c.httpClient.PATCH("/api/v1/availability-rules/"+url.PathEscape(id), body)
}

func (c *RuleClient) Delete(id string) (*Response, error) {
	return c.httpClient.DELETE("/api/v1/availability-rules/" + url.PathEscape(id))
}

func (c *RuleClient) CreateServiceType(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/service-types", body)
}

func (c *RuleClient) GetServiceType(id string) (*Response, error) {
	return c.httpClient.GET("/api/v1/service-types/" + url.PathEscape(id))
}

func (c *RuleClient) DecodeRule(resp *Response) (*model.AvailabilityRule, error) {
	var wrapper struct {
		Data *model.AvailabilityRule `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}

func (c *RuleClient) DecodeRules(resp *Response) ([]*model.AvailabilityRule, error) {
	var wrapper struct {
		Data []*model.AvailabilityRule `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, err
	}
	return wrapper.Data, nil
}
