package services

import (
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// EtaClient talks to the external geospatial provider. The tracker stores
// whatever the provider returns; route computation never happens here.
type EtaClient struct {
	http    *resty.Client
	baseURL string
}

type EtaEstimate struct {
	ArrivalTime time.Time
	DistanceKm  float64
}

// NewEtaClientFromEnv returns nil when GEO_API_URL is unset, which disables
// ETA refreshes entirely.
func NewEtaClientFromEnv() *EtaClient {
	baseURL := os.Getenv("GEO_API_URL")
	if baseURL == "" {
		return nil
	}
	return NewEtaClient(baseURL)
}

func NewEtaClient(baseURL string) *EtaClient {
	return &EtaClient{
		http:    resty.New().SetTimeout(10 * time.Second),
		baseURL: baseURL,
	}
}

func (c *EtaClient) Estimate(lat, lng float64) (EtaEstimate, error) {
	var body struct {
		DurationMinutes float64 `json:"durationMinutes"`
		DistanceKm      float64 `json:"distanceKm"`
	}

	resp, err := c.http.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"lat": fmt.Sprintf("%f", lat),
			"lng": fmt.Sprintf("%f", lng),
		}).
		SetResult(&body).
		Get(c.baseURL + "/route")
	if err != nil {
		return EtaEstimate{}, err
	}
	if resp.StatusCode() != 200 {
		return EtaEstimate{}, fmt.Errorf("eta provider returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return EtaEstimate{
		ArrivalTime: time.Now().Add(time.Duration(body.DurationMinutes * float64(time.Minute))),
		DistanceKm:  body.DistanceKm,
	}, nil
}
