package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the canonical location of the AudioCaps metadata CSVs.
const DefaultBaseURL = "https://raw.githubusercontent.com/cdjkim/audiocaps/master/dataset"

// ErrMetadataUnavailable indicates the remote metadata source could not be
// reached or parsed. This is fatal to a run: no download starts without a
// complete set of tables.
var ErrMetadataUnavailable = errors.New("metadata unavailable")

// Metadata CSV column names. Column order is discovered from the header row,
// not assumed.
const (
	colID        = "audiocap_id"
	colYouTubeID = "youtube_id"
	colStartTime = "start_time"
	colCaption   = "caption"
)

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Loader fetches the per-split metadata tables from a remote CSV source.
type Loader struct {
	baseURL string
	http    httpDoer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBaseURL overrides the metadata source base URL.
func WithBaseURL(u string) LoaderOption {
	return func(l *Loader) {
		if u != "" {
			l.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(c httpDoer) LoaderOption {
	return func(l *Loader) { l.http = c }
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches all three split tables. It fails on the first unavailable
// split: a partial metadata set is useless to the pipeline.
func (l *Loader) Load(ctx context.Context) (Tables, error) {
	var tables Tables

	train, err := l.LoadSplit(ctx, Train)
	if err != nil {
		return tables, err
	}
	val, err := l.LoadSplit(ctx, Val)
	if err != nil {
		return tables, err
	}
	test, err := l.LoadSplit(ctx, Test)
	if err != nil {
		return tables, err
	}

	tables.Train = train
	tables.Val = val
	tables.Test = test
	return tables, nil
}

// LoadSplit fetches and parses the metadata table for one split.
func (l *Loader) LoadSplit(ctx context.Context, s Split) (Table, error) {
	url := fmt.Sprintf("%s/%s.csv", l.baseURL, s)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, s, err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, s, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("%w: %s: unexpected status %d from %s",
			ErrMetadataUnavailable, s, resp.StatusCode, url)
	}

	table, err := parseTable(s, resp.Body)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, s, err)
	}
	return table, nil
}

// parseTable reads a metadata CSV into a Table. Sample ids are kept as
// strings regardless of how they appear in the source (the CSVs carry them as
// bare integers) so the id remains a stable join key and filename stem.
func parseTable(s Split, r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // captions may embed commas; validate per row below

	header, err := reader.Read()
	if err != nil {
		return Table{}, fmt.Errorf("reading header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colID, colYouTubeID, colStartTime} {
		if _, ok := cols[required]; !ok {
			return Table{}, fmt.Errorf("missing column %q", required)
		}
	}

	table := Table{Split: s}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Table{}, fmt.Errorf("line %d: %v", line, err)
		}

		row, err := parseRow(record, cols)
		if err != nil {
			return Table{}, fmt.Errorf("line %d: %v", line, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// parseRow extracts one Row from a CSV record using the header column map.
func parseRow(record []string, cols map[string]int) (Row, error) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	id, ok := field(colID)
	if !ok || id == "" {
		return Row{}, fmt.Errorf("missing %s", colID)
	}
	ytid, ok := field(colYouTubeID)
	if !ok || ytid == "" {
		return Row{}, fmt.Errorf("missing %s", colYouTubeID)
	}
	startStr, ok := field(colStartTime)
	if !ok || startStr == "" {
		return Row{}, fmt.Errorf("missing %s", colStartTime)
	}
	start, err := strconv.ParseFloat(startStr, 64)
	if err != nil {
		return Row{}, fmt.Errorf("invalid %s %q: %v", colStartTime, startStr, err)
	}
	if start < 0 {
		return Row{}, fmt.Errorf("negative %s %q", colStartTime, startStr)
	}

	caption, _ := field(colCaption)

	return Row{ID: id, YouTubeID: ytid, StartTime: start, Caption: caption}, nil
}
