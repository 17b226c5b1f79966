package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Details when the place id is unknown.
var ErrNotFound = errors.New("places: place not found")

// StatusError reports a non-OK status from the web service.
type StatusError struct {
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("places: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("places: %s", e.Status)
}

// Service resolves predictions and place details.
type Service interface {
	Predictions(ctx context.Context, req PredictionRequest) ([]Prediction, error)
	Details(ctx context.Context, req DetailsRequest) (Place, error)
}

type PredictionRequest struct {
	Input        string
	SessionToken string
	Options      Options
}

type DetailsRequest struct {
	PlaceID      string
	SessionToken string
	Fields       []string
}

// GoogleClient talks to the Places web service.
type GoogleClient struct {
	key  string
	opts ClientOptions
	log  *zap.Logger
}

var _ Service = (*GoogleClient)(nil)

func NewGoogleClient(key string, fns ...ClientOptionFn) *GoogleClient {
	opts := NewClientOptions(fns...)
	return &GoogleClient{key: key, opts: opts, log: opts.Logger.Named("places")}
}

func (c *GoogleClient) Predictions(ctx context.Context, req PredictionRequest) ([]Prediction, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("input", input)
	if len(req.Options.Types) > 0 {
		q.Set("types", strings.Join(req.Options.Types, "|"))
	}
	if req.Options.Country != "" {
		q.Set("components", "country:"+req.Options.Country)
	}
	if req.SessionToken != "" {
		q.Set("sessiontoken", req.SessionToken)
	}

	var payload autocompleteResponse
	if err := c.get(ctx, "/place/autocomplete/json", q, &payload); err != nil {
		return nil, err
	}
	switch payload.Status {
	case StatusOK:
		return payload.Predictions, nil
	case StatusZeroResults:
		return nil, nil
	default:
		return nil, &StatusError{Status: payload.Status, Message: payload.ErrorMessage}
	}
}

func (c *GoogleClient) Details(ctx context.Context, req DetailsRequest) (Place, error) {
	if strings.TrimSpace(req.PlaceID) == "" {
		return Place{}, ErrNotFound
	}
	q := url.Values{}
	q.Set("place_id", req.PlaceID)
	if len(req.Fields) > 0 {
		q.Set("fields", strings.Join(req.Fields, ","))
	}
	if req.SessionToken != "" {
		q.Set("sessiontoken", req.SessionToken)
	}

	var payload detailsResponse
	if err := c.get(ctx, "/place/details/json", q, &payload); err != nil {
		return Place{}, err
	}
	switch payload.Status {
	case StatusOK:
		if payload.Result == nil {
			return Place{}, ErrNotFound
		}
		place := *payload.Result
		if place.PlaceID == "" {
			place.PlaceID = req.PlaceID
		}
		return place, nil
	case StatusNotFound, StatusZeroResults:
		return Place{}, ErrNotFound
	default:
		return Place{}, &StatusError{Status: payload.Status, Message: payload.ErrorMessage}
	}
}

func (c *GoogleClient) get(ctx context.Context, path string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	q.Set("key", c.key)
	endpoint := strings.TrimRight(c.opts.BaseURL, "/") + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("places: build request: %w", err)
	}
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("places: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("unexpected response", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("places: %s returned %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("places: decode %s: %w", path, err)
	}
	return nil
}
