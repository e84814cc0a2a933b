// Package geo enriches a cycle's record with best-effort public-IP
// geolocation. Lookups never gate the measurement path: every failure maps to
// the zero-valued Location.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultURL     = "https://ipinfo.io/json"
	defaultTimeout = 5 * time.Second
)

// Location is the enrichment attached to every record. The zero value is the
// documented fallback shape.
type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Org       string
}

type Config struct {
	URL     string
	Timeout time.Duration
}

// Dependencies allow test overrides for the HTTP client and logging.
type Dependencies struct {
	HTTPClient *http.Client
	Logger     *log.Logger
}

type Resolver struct {
	url     string
	timeout time.Duration
	client  *http.Client
	logger  *log.Logger
}

func NewResolver(cfg Config, deps Dependencies) *Resolver {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Resolver{url: cfg.URL, timeout: cfg.Timeout, client: client, logger: logger}
}

// Resolve never fails: transport and parse errors are logged and absorbed
// into the zero Location. No retries — this is enrichment, not a gating
// measurement.
func (r *Resolver) Resolve(ctx context.Context) Location {
	loc, err := r.lookup(ctx)
	if err != nil {
		r.logger.Printf("geolocation lookup failed: %v", err)
		return Location{}
	}
	return loc
}

func (r *Resolver) lookup(ctx context.Context) (Location, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, r.url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("fetch geolocation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return Location{}, fmt.Errorf("geolocation lookup: status %s", resp.Status)
	}

	var payload struct {
		Loc    string `json:"loc"`
		City   string `json:"city"`
		Region string `json:"region"`
		Org    string `json:"org"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}, fmt.Errorf("decode geolocation response: %w", err)
	}

	loc := Location{City: payload.City, Region: payload.Region, Org: payload.Org}
	if payload.Loc != "" {
		lat, lon, err := parseLatLon(payload.Loc)
		if err != nil {
			return Location{}, fmt.Errorf("parse geolocation %q: %w", payload.Loc, err)
		}
		loc.Latitude = lat
		loc.Longitude = lon
	}
	return loc, nil
}

// parseLatLon splits a combined "lat,lon" field into two floats.
func parseLatLon(s string) (float64, float64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected lat,lon pair")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
