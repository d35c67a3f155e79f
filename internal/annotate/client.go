// Package annotate fetches variant annotations from a remote HTTP service.
//
// The service takes a POST with a JSON body {"ids": [...]} and answers with
// a JSON array of records, each carrying the identifier it describes under
// the id field (default "id"). The Ensembl VEP REST endpoint speaks this
// protocol.
package annotate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/table"
)

// BatchLimit is the most identifiers sent in one request.
const BatchLimit = 200

// DefaultEndpoint is the Ensembl VEP "by identifier" endpoint.
const DefaultEndpoint = "https://rest.ensembl.org/vep/human/id"

// DefaultIDField is the record field that holds the identifier.
const DefaultIDField = "id"

// DefaultTimeout bounds one request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Client calls an annotation service.
type Client struct {
	endpoint string
	idField  string
	http     *http.Client
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Default: a client with DefaultTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithIDField sets the response field that holds the identifier.
func WithIDField(field string) Option {
	return func(c *Client) {
		c.idField = field
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for endpoint. An empty endpoint uses
// DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		idField:  DefaultIDField,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

type request struct {
	IDs []string `json:"ids"`
}

// Annotate fetches annotations for ids in a single request and returns a
// table with the id field column followed by one string column per field,
// one row per returned record in response order.
//
// More than BatchLimit ids, or a field repeated or equal to the id field,
// fails with INVALID_OPTION without contacting the service. A transport failure, a non-2xx status or an unreadable body
// fails with REMOTE_SERVICE.
func (c *Client) Annotate(ctx context.Context, ids []string, fields []string) (*table.Table, error) {
	if len(ids) > BatchLimit {
		return nil, errs.New(errs.CodeInvalidOption, "%d identifiers exceed the batch limit of %d", len(ids), BatchLimit)
	}
	if err := c.checkFields(fields); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return buildTable(c.idField, fields, nil)
	}

	body, err := json.Marshal(request{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Info("fetching annotations", "endpoint", c.endpoint, "ids", len(ids))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.CodeRemoteService, err, "annotation request failed").
			With("endpoint", c.endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errs.New(errs.CodeRemoteService, "annotation service returned %s", resp.Status).
			With("endpoint", c.endpoint).
			With("status", strconv.Itoa(resp.StatusCode)).
			With("body", string(bytes.TrimSpace(snippet)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var records []map[string]json.RawMessage
	if err := dec.Decode(&records); err != nil {
		return nil, errs.Wrap(errs.CodeRemoteService, err, "unreadable annotation response").
			With("endpoint", c.endpoint)
	}
	c.logger.Debug("annotations received", "records", len(records))
	return buildTable(c.idField, fields, records)
}

// checkFields rejects fields that would duplicate a result column.
func (c *Client) checkFields(fields []string) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == c.idField || seen[f] {
			return errs.New(errs.CodeInvalidOption, "duplicate annotation field %q", f).With("option", "annotation.fields")
		}
		seen[f] = true
	}
	return nil
}

// buildTable flattens records into an id column plus one column per field.
// Records without an id are skipped; absent fields are missing values.
func buildTable(idField string, fields []string, records []map[string]json.RawMessage) (*table.Table, error) {
	names := append([]string{idField}, fields...)
	cols := make([][]string, len(names))
	for i := range cols {
		cols[i] = []string{}
	}
	for _, rec := range records {
		id, ok := text(rec[idField])
		if !ok {
			continue
		}
		cols[0] = append(cols[0], id)
		for i, f := range fields {
			v, ok := text(rec[f])
			if !ok {
				v = "NaN"
			}
			cols[i+1] = append(cols[i+1], v)
		}
	}

	out := make([]series.Series, len(names))
	for i, name := range names {
		out[i] = series.New(cols[i], series.String, name)
	}
	return table.FromColumns(out...)
}

// text renders a JSON value as display text. Strings are unquoted, null
// and absent values report false, everything else keeps its JSON form.
func text(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, true
		}
	}
	return string(raw), true
}
