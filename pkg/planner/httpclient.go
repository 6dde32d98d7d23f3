package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/itinera/itinera/pkg/config"
	"github.com/itinera/itinera/pkg/tmdf"
	"github.com/rs/zerolog/log"
)

// HTTPClient talks JSON to the core planner. Transient transport errors are
// retried with exponential backoff, planner level errors come back inside the
// Response and are never retried
type HTTPClient struct {
	address    string
	maxRetries uint64

	httpClient *http.Client
}

func NewHTTPClient(plannerConfig config.PlannerConfig) *HTTPClient {
	return &HTTPClient{
		address:    plannerConfig.Address,
		maxRetries: uint64(plannerConfig.MaxRetries),
		httpClient: &http.Client{
			Timeout: plannerConfig.Timeout.AsDuration(),
		},
	}
}

func (c *HTTPClient) Plan(ctx context.Context, request *Request) (*Response, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	var response *Response

	retryBackoff := backoff.NewExponentialBackOff()

	err = backoff.Retry(func() error {
		response, err = c.plan(ctx, requestBody)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(retryBackoff, c.maxRetries), ctx))

	if err != nil {
		log.Error().Err(err).Str("planner", c.address).Msg("Planner call failed")
		return nil, err
	}

	return response, nil
}

func (c *HTTPClient) plan(ctx context.Context, requestBody []byte) (*Response, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, "POST", c.address+"/v1/plan", bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, err
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planner returned status %d", httpResponse.StatusCode)
	}

	responseBody, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, err
	}

	var response Response
	if err := json.Unmarshal(responseBody, &response); err != nil {
		return nil, backoff.Permanent(&tmdf.MalformedResponseError{
			Adapter: "planner",
			Reason:  err.Error(),
		})
	}

	for _, journey := range response.Journeys {
		journey.ComputeAggregates()
	}

	return &response, nil
}

// WaitUntilReady blocks until the planner healthcheck answers, retrying with
// backoff. Used at startup so the API never serves before its core is up
func (c *HTTPClient) WaitUntilReady(ctx context.Context) error {
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = 2 * time.Minute

	return backoff.Retry(func() error {
		httpRequest, err := http.NewRequestWithContext(ctx, "GET", c.address+"/v1/status", nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		httpResponse, err := c.httpClient.Do(httpRequest)
		if err != nil {
			return err
		}
		defer httpResponse.Body.Close()

		if httpResponse.StatusCode != http.StatusOK {
			return fmt.Errorf("planner status %d", httpResponse.StatusCode)
		}

		return nil
	}, backoff.WithContext(retryBackoff, ctx))
}
