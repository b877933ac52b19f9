// Package videos loads the site's video listing data and derives the
// canonical page URL of every video.
package videos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// UntitledSlugSource is slugified in place of a missing or empty title.
const UntitledSlugSource = "untitled-video"

// Record is the part of a video entry the URL derivation consumes.
type Record struct {
	ID    string
	Title string
}

type rawRecord struct {
	ID    json.RawMessage `json:"id"`
	Title json.RawMessage `json:"title"`
}

// Load reads the JSON array at path. Every failure degrades to an empty or
// partial result with a warning; Load never fails the caller.
func Load(path string, logger *zap.Logger) []Record {
	if logger == nil {
		logger = zap.NewNop()
	}
	// #nosec G304 -- the data path comes from operator configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read video data; no URLs derived", zap.String("path", path), zap.Error(err))
		return []Record{}
	}
	return Decode(data, logger)
}

// Decode parses a JSON array of video objects. A payload that is not an
// array yields no records; individual entries without a usable id are skipped.
func Decode(data []byte, logger *zap.Logger) []Record {
	if logger == nil {
		logger = zap.NewNop()
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Video data is not a JSON array; no URLs derived", zap.Error(err))
		return []Record{}
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		var raw rawRecord
		if err := json.Unmarshal(item, &raw); err != nil {
			logger.Warn("Skipping malformed video entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		id, ok := scalarText(raw.ID)
		if !ok || id == "" {
			logger.Warn("Skipping video entry without id", zap.Int("index", i))
			continue
		}
		title, _ := scalarText(raw.Title)
		records = append(records, Record{ID: id, Title: title})
	}
	return records
}

// URL derives <baseURL>/<slug>-<id>/ for r.
func URL(baseURL string, r Record) string {
	title := r.Title
	if title == "" {
		title = UntitledSlugSource
	}
	return fmt.Sprintf("%s/%s-%s/", strings.TrimRight(baseURL, "/"), Slugify(title), r.ID)
}

// URLs derives the URL of every record, preserving order.
func URLs(baseURL string, records []Record) []string {
	urls := make([]string, 0, len(records))
	for _, r := range records {
		urls = append(urls, URL(baseURL, r))
	}
	return urls
}

// LoadURLs is Load followed by URLs.
func LoadURLs(path, baseURL string, logger *zap.Logger) []string {
	return URLs(baseURL, Load(path, logger))
}

// scalarText renders a JSON string or number as text. Numbers are printed
// the way the site's pages print them, so 1.0 and 1e3 become "1" and "1000".
// Anything else, including null and absent values, reports false.
func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false
		}
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return "", false
		}
		return formatNumber(f), true
	default:
		return "", false
	}
}

// formatNumber prints f in the shortest form that round-trips, using
// exponent notation only below 1e-6 and from 1e21 up.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
