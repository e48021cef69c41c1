// Package worldbank fetches CPI observations from the World Bank indicators API.
package worldbank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	"inflation/internal/core"
	"inflation/internal/dataset"
)

const (
	DefaultBaseURL   = "https://api.worldbank.org/v2"
	DefaultCountry   = "NGA"
	DefaultIndicator = "FP.CPI.TOTL"

	perPage = 20000
)

var ErrAPI = errors.New("world bank api error")

type Source struct {
	baseURL   string
	country   string
	indicator string
	client    *http.Client
}

var _ dataset.Source = (*Source)(nil)

// New creates a source for one country and indicator. A nil client gets a
// client with a 15 second timeout.
func New(baseURL, country, indicator string, client *http.Client) *Source {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if country == "" {
		country = DefaultCountry
	}
	if indicator == "" {
		indicator = DefaultIndicator
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Source{
		baseURL:   strings.TrimRight(baseURL, "/"),
		country:   country,
		indicator: indicator,
		client:    client,
	}
}

func (s *Source) Name() string {
	return "worldbank:" + s.country + "/" + s.indicator
}

func (s *Source) endpoint() string {
	q := url.Values{}
	q.Set("format", "xml")
	q.Set("per_page", fmt.Sprint(perPage))
	return fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		s.baseURL, url.PathEscape(s.country), url.PathEscape(s.indicator), q.Encode())
}

func (s *Source) Fetch(ctx context.Context) ([]core.RawObservation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrAPI, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseXML(body)
}

// parseXML extracts (date, value) rows from an indicator response. Rows with
// an empty value are kept so the loader drops them as missing.
func parseXML(raw []byte) ([]core.RawObservation, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrAPI)
	}
	if root.Tag == "error" {
		msg := "unknown error"
		if m := root.FindElement("./message"); m != nil {
			msg = strings.TrimSpace(m.Text())
			if key := m.SelectAttrValue("key", ""); key != "" {
				msg = key + ": " + msg
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAPI, msg)
	}

	entries := root.FindElements("./data")
	if len(entries) == 0 {
		return nil, core.ErrEmptySeries
	}
	rows := make([]core.RawObservation, 0, len(entries))
	for _, e := range entries {
		dateEl := e.FindElement("./date")
		if dateEl == nil {
			continue
		}
		value := ""
		if v := e.FindElement("./value"); v != nil {
			value = strings.TrimSpace(v.Text())
		}
		rows = append(rows, core.RawObservation{
			Date:  normalizeDate(dateEl.Text()),
			Value: value,
		})
	}
	return rows, nil
}

// normalizeDate maps World Bank period labels onto parseable dates:
// "2023" stays as is, "2023M04" becomes "2023-04", "2023Q2" becomes "2023-04".
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return s
	}
	year, rest := s[:4], s[4:]
	switch {
	case strings.HasPrefix(rest, "M") && len(rest) == 3:
		return year + "-" + rest[1:]
	case strings.HasPrefix(rest, "Q") && len(rest) == 2:
		months := map[byte]string{'1': "01", '2': "04", '3': "07", '4': "10"}
		if m, ok := months[rest[1]]; ok {
			return year + "-" + m
		}
	}
	return s
}
