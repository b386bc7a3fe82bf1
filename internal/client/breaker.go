package client

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

type httpResult struct {
	StatusCode int
	Body       []byte
}

// gatewayDoer sends requests to a payment gateway through a circuit breaker.
// Only transport errors and 5xx responses count as breaker failures.
type gatewayDoer struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[httpResult]
}

func newGatewayDoer(name string, httpClient *http.Client) *gatewayDoer {
	return &gatewayDoer{
		httpClient: httpClient,
		breaker: gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (d *gatewayDoer) Do(req *http.Request) (httpResult, error) {
	res, err := d.breaker.Execute(func() (httpResult, error) {
		resp, err := d.httpClient.Do(req)
		if err != nil {
			return httpResult{}, fmt.Errorf("http client do: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, fmt.Errorf("read response body: %w", err)
		}

		result := httpResult{StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode >= 500 {
			return result, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(body))
		}
		return result, nil
	})
	if err != nil {
		return res, fmt.Errorf("%s: %w", d.breaker.Name(), err)
	}

	return res, nil
}

func (r httpResult) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
