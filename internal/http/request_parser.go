// Package http provides HTTP server and handler implementations.
//
// This file turns comparison forms and JSON bodies into core requests.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"inflation/internal/core"
	"inflation/internal/taxonomy"
)

var (
	errMalformedForm   = errors.New("malformed form")
	errUnknownCategory = errors.New("unknown category")
	errNoAmounts       = errors.New("no amounts entered")
	errInvalidYear     = errors.New("invalid year")
)

const maxLines = 200

// ParseComparisonForm reads the parallel category, subcategory and amount
// fields of the comparison form. Rows with a blank amount are skipped.
// A blank year selects defaultYear.
func ParseComparisonForm(form url.Values, cats []core.Category, defaultYear int) (core.ComparisonRequest, error) {
	categories := form["category"]
	subcategories := form["subcategory"]
	amounts := form["amount"]
	if len(categories) != len(amounts) || len(subcategories) != len(amounts) {
		return core.ComparisonRequest{}, fmt.Errorf("%w: %d categories, %d subcategories, %d amounts",
			errMalformedForm, len(categories), len(subcategories), len(amounts))
	}
	if len(amounts) > maxLines {
		return core.ComparisonRequest{}, fmt.Errorf("%w: too many rows", errMalformedForm)
	}

	year, err := parseOptionalInt(form.Get("year"), defaultYear)
	if err != nil {
		return core.ComparisonRequest{}, fmt.Errorf("%w: %q", errInvalidYear, form.Get("year"))
	}

	req := core.ComparisonRequest{Year: year}
	for i, raw := range amounts {
		raw = sanitizeInput(raw)
		if raw == "" {
			continue
		}
		line, err := formLine(cats, sanitizeInput(categories[i]), sanitizeInput(subcategories[i]), raw)
		if err != nil {
			return core.ComparisonRequest{}, err
		}
		req.Lines = append(req.Lines, line)
	}
	if len(req.Lines) == 0 {
		return core.ComparisonRequest{}, errNoAmounts
	}
	return req, nil
}

func formLine(cats []core.Category, category, subcategory, rawAmount string) (core.CategoryLine, error) {
	cat, ok := taxonomy.Find(cats, category)
	if !ok {
		return core.CategoryLine{}, fmt.Errorf("%w: %q", errUnknownCategory, category)
	}
	if subcategory != "" && !cat.HasSubcategory(subcategory) {
		return core.CategoryLine{}, fmt.Errorf("%w: %q in %s", errUnknownCategory, subcategory, cat.Name)
	}
	line := core.CategoryLine{Category: cat.Name, Subcategory: subcategory}
	amount, err := core.ParseAmount(rawAmount)
	if err != nil {
		return core.CategoryLine{}, fmt.Errorf("%w: %s: %q", err, line.Label(), rawAmount)
	}
	line.Amount = amount
	return line, nil
}

// compareBody is the JSON form of a comparison request.
type compareBody struct {
	Year  int `json:"year"`
	Lines []struct {
		Category    string  `json:"category"`
		Subcategory string  `json:"subcategory"`
		Amount      float64 `json:"amount"`
	} `json:"lines"`
}

// DecodeComparisonJSON decodes a JSON comparison request. Labels are free
// text; a zero year selects defaultYear.
func DecodeComparisonJSON(r io.Reader, defaultYear int) (core.ComparisonRequest, error) {
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	dec.DisallowUnknownFields()

	var body compareBody
	if err := dec.Decode(&body); err != nil {
		return core.ComparisonRequest{}, fmt.Errorf("%w: %v", errMalformedForm, err)
	}
	if len(body.Lines) > maxLines {
		return core.ComparisonRequest{}, fmt.Errorf("%w: too many lines", errMalformedForm)
	}

	req := core.ComparisonRequest{Year: body.Year, Lines: make([]core.CategoryLine, 0, len(body.Lines))}
	if req.Year == 0 {
		req.Year = defaultYear
	}
	for _, l := range body.Lines {
		req.Lines = append(req.Lines, core.CategoryLine{
			Category:    sanitizeInput(l.Category),
			Subcategory: sanitizeInput(l.Subcategory),
			Amount:      l.Amount,
		})
	}
	return req, nil
}

// userMessage maps request and computation errors to text safe to show.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrYearNotFound):
		return "No CPI data for the selected year."
	case errors.Is(err, errNoAmounts):
		return "Enter at least one amount."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Amounts must be non-negative numbers: " + trimSentinel(err)
	case errors.Is(err, errUnknownCategory):
		return "Unknown category: " + trimSentinel(err)
	case errors.Is(err, errInvalidYear):
		return "The year must be a number."
	case errors.Is(err, errMalformedForm):
		return "Invalid request format."
	case errors.Is(err, core.ErrEmptySeries):
		return "No CPI data is loaded."
	default:
		return "Something went wrong computing the comparison."
	}
}

// trimSentinel drops the leading "sentinel: " part of a wrapped error.
func trimSentinel(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
