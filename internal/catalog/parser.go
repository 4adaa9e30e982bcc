// Package catalog turns pasted free-text price lists into structured
// catalog products. Parsing is pure: it never fails as a whole, it
// reports bad lines individually and keeps going.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Ionito/pedidos-colectivos/internal/models"
)

// Matches lines like:
//
//	_Langostinos desvenados $3500 x 100 grs
//	_Mix de mariscos $35000 kg
//	Mejillón pelado $2300 x 100grs.
//
// Optional bullet glyph, title up to the first currency marker, price
// made of digits and separators, then the unit with an optional
// leading "x" token and optional trailing period.
var productLine = regexp.MustCompile(`^[_\-*•]?\s*(.+?)\s*\$\s*([\d.,]+)\s*(?:x\s*)?([^$\n]+?)\s*\.?\s*$`)

var priceSeparators = strings.NewReplacer(".", "", ",", "")

const (
	ReasonUnparsable   = "could not parse this line"
	ReasonInvalidPrice = "invalid price"
	ReasonMissingName  = "missing product name"
)

// LineError reports a single rejected input line.
type LineError struct {
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

// Result holds the outcome of a Parse call. Every non-blank input line
// contributes exactly one entry to either Products or Errors, in input
// order.
type Result struct {
	Products []models.Product `json:"products"`
	Errors   []LineError      `json:"errors"`
}

// Parse splits text into trimmed non-blank lines and matches each one
// independently against the product grammar. Each parsed product gets
// a fresh UUID; rejected lines are collected with a reason instead of
// aborting the batch.
func Parse(text string) Result {
	res := Result{
		Products: []models.Product{},
		Errors:   []LineError{},
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		m := productLine.FindStringSubmatch(line)
		if m == nil {
			res.Errors = append(res.Errors, LineError{Line: line, Reason: ReasonUnparsable})
			continue
		}

		title, rawPrice, unit := m[1], m[2], m[3]

		price, err := parsePrice(rawPrice)
		if err != nil || price <= 0 {
			res.Errors = append(res.Errors, LineError{Line: line, Reason: ReasonInvalidPrice})
			continue
		}

		if strings.TrimSpace(title) == "" {
			res.Errors = append(res.Errors, LineError{Line: line, Reason: ReasonMissingName})
			continue
		}

		res.Products = append(res.Products, models.Product{
			ID:    uuid.NewString(),
			Title: strings.TrimSpace(title),
			Price: price,
			Unit:  strings.TrimSpace(unit),
		})
	}

	return res
}

// parsePrice normalizes a raw price literal. Dots and commas are
// thousands separators ($3.500 and $3,500 both mean 3500); there is no
// decimal support, the remaining digit run is the integer amount.
func parsePrice(raw string) (int, error) {
	return strconv.Atoi(priceSeparators.Replace(raw))
}
