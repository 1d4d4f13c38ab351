package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

const postgrestDefaultTimeout = 60 * time.Second

// PostgrestStore writes rows over the PostgREST HTTP API, as served by Supabase.
type PostgrestStore struct {
	log     logger.Logger
	client  *http.Client
	baseUrl string
	apiKey  string
	dbType  string
}

// PostgrestError is the error body returned by PostgREST.
type PostgrestError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *PostgrestError) Error() string {
	msg := fmt.Sprintf("HTTP %v", e.StatusCode)
	if e.Code != "" {
		msg += fmt.Sprintf(" [%v]", e.Code)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Details != "" {
		msg += "; details: " + e.Details
	}
	if e.Hint != "" {
		msg += "; hint: " + e.Hint
	}
	return msg
}

// NewPostgrestStore creates a client for c. Supabase project URLs get /rest/v1 appended.
func NewPostgrestStore(log logger.Logger, c ConnectionDetails, client *http.Client) (*PostgrestStore, error) {
	raw := strings.TrimRight(c.Data[DefaultConnectionKeyNames.Url], "/")
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store url %q", raw)
	}
	if c.Type == constants.ConnectionTypeSupabase && !strings.HasSuffix(raw, "/rest/v1") {
		raw += "/rest/v1"
	}
	if client == nil {
		client = &http.Client{Timeout: postgrestDefaultTimeout}
	}
	log.Info("Using ", c.Type, " endpoint ", raw)
	return &PostgrestStore{
		log:     log,
		client:  client,
		baseUrl: raw,
		apiKey:  c.Data[DefaultConnectionKeyNames.Key],
		dbType:  c.Type,
	}, nil
}

func (p *PostgrestStore) newRequest(ctx context.Context, method, collection string, query url.Values, body io.Reader) (*http.Request, error) {
	if err := validateIdentifier(collection); err != nil {
		return nil, err
	}
	target := fmt.Sprintf("%v/%v", p.baseUrl, collection)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("apikey", p.apiKey)
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Probe reads zero rows from collection.
func (p *PostgrestStore) Probe(ctx context.Context, collection string) error {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", "0")
	req, err := p.newRequest(ctx, http.MethodGet, collection, q, nil)
	if err != nil {
		return err
	}
	return p.do(req)
}

// Insert posts rows as one JSON array. Every row carries every column so PostgREST sees uniform keys.
func (p *PostgrestStore) Insert(ctx context.Context, collection string, columns []string, rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return errors.New("no rows supplied for insert")
	}
	payload := make([]map[string]interface{}, len(rows))
	for idx, r := range rows {
		m := make(map[string]interface{}, len(columns))
		for _, c := range columns {
			m[c] = r[c]
		}
		payload[idx] = m
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "error encoding rows as JSON")
	}
	q := url.Values{}
	q.Set("columns", strings.Join(columns, ","))
	req, err := p.newRequest(ctx, http.MethodPost, collection, q, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	p.log.Debug("POST ", len(rows), " rows to ", collection)
	return p.do(req)
}

func (p *PostgrestStore) do(req *http.Request) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%v %v", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()
	body, _ := ioutil.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	pe := &PostgrestError{StatusCode: resp.StatusCode}
	if jsonErr := json.Unmarshal(body, pe); jsonErr != nil || pe.Message == "" {
		pe.Message = strings.TrimSpace(string(body))
	}
	return pe
}

func (p *PostgrestStore) GetType() string {
	return p.dbType
}

func (p *PostgrestStore) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
