// Package geo resolves the device's location and derives sun event times
// and network reachability from it.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tilmanv/piwake/internal/ports"
)

// Location is a geographic position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// locateURL is the IP geolocation endpoint used when no location is
// configured.
const locateURL = "http://ip-api.com/json/?fields=lat,lon"

// Locate estimates the device position from its public IP address.
func Locate(ctx context.Context) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locateURL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build locate request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("locate device: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("locate device: unexpected status %s", resp.Status)
	}
	var loc Location
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		return Location{}, fmt.Errorf("decode locate response: %w", err)
	}
	return loc, nil
}

// probeAddress is a well-known anycast endpoint used for the reachability
// probe.
const probeAddress = "1.1.1.1:443"

// probeTimeout bounds how long one probe may block.
const probeTimeout = 2 * time.Second

// Probe checks internet reachability with a TCP dial.
type Probe struct {
	address string
	timeout time.Duration
}

var _ ports.NetworkChecker = (*Probe)(nil)

// NewProbe creates a reachability probe against the default endpoint.
func NewProbe() *Probe {
	return &Probe{address: probeAddress, timeout: probeTimeout}
}

// Online reports whether the probe endpoint is reachable.
func (p *Probe) Online() bool {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
