package utils

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type GeoLocator struct {
	client  *resty.Client
	baseURL string
}

func NewGeoLocator(baseURL string) *GeoLocator {
	return &GeoLocator{
		client:  resty.New().SetTimeout(5 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Locate returns "City, Country" for a public IP, "Local" for private or
// loopback addresses, and "Unknown" when the lookup fails.
func (g *GeoLocator) Locate(ipAddress string) string {
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return "Unknown"
	}
	if ip.IsLoopback() || ip.IsPrivate() {
		return "Local"
	}

	var result struct {
		Status  string `json:"status"`
		Country string `json:"country"`
		City    string `json:"city"`
	}
	resp, err := g.client.R().
		SetResult(&result).
		Get(fmt.Sprintf("%s/%s", g.baseURL, ipAddress))
	if err != nil {
		logrus.WithError(err).WithField("ip", ipAddress).Debug("ip geolocation failed")
		return "Unknown"
	}
	if resp.IsError() {
		return "Unknown"
	}

	if result.City != "" && result.Country != "" {
		return fmt.Sprintf("%s, %s", result.City, result.Country)
	}
	return "Unknown"
}
