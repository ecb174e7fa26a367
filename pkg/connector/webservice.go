// pkg/connector/webservice.go
package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// Default ChEMBL web services root
const DefaultAPIBaseURL = "https://www.ebi.ac.uk/chembl/api/data"

// Fields requested from the activity and molecule resources
var (
	ActivityFields = []string{
		"activity_id",
		"assay_chembl_id",
		"assay_description",
		"assay_type",
		"molecule_chembl_id",
		"type",
		"standard_units",
		"relation",
		"standard_value",
		"target_chembl_id",
		"target_organism",
	}
	MoleculeFields = []string{"molecule_chembl_id", "molecule_structures"}
)

// maxIDsPerRequest bounds the molecule_chembl_id__in list of one request
const maxIDsPerRequest = 50

// pageMeta is the paging block of a ChEMBL list response
type pageMeta struct {
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	Next       *string `json:"next"`
	TotalCount int     `json:"total_count"`
}

// WebServiceQuery pages through one ChEMBL REST resource
type WebServiceQuery struct {
	client   *http.Client
	baseURL  string
	resource string // e.g. "activity"
	listKey  string // e.g. "activities"
	params   url.Values
	fields   []string
	pageSize int
	logger   *zap.Logger
}

// WebServiceOptions configures the HTTP side of web service queries
type WebServiceOptions struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
	Client   *http.Client
}

func (o WebServiceOptions) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewWebServiceQuery creates a query over resource, reading objects from listKey
func NewWebServiceQuery(opts WebServiceOptions, resource, listKey string, params url.Values, fields []string, logger *zap.Logger) *WebServiceQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultAPIBaseURL
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	return &WebServiceQuery{
		client:   opts.client(),
		baseURL:  strings.TrimRight(base, "/"),
		resource: resource,
		listKey:  listKey,
		params:   params,
		fields:   fields,
		pageSize: pageSize,
		logger:   logger.Named("chembl-ws"),
	}
}

// NewActivityQuery selects the activities matching filter
func NewActivityQuery(opts WebServiceOptions, filter ActivityFilter, logger *zap.Logger) *WebServiceQuery {
	params := url.Values{}
	params.Set("target_chembl_id", filter.TargetChEMBLID)
	if filter.StandardType != "" {
		params.Set("standard_type", filter.StandardType)
	}
	if filter.Relation != "" {
		params.Set("relation", filter.Relation)
	}
	if filter.AssayType != "" {
		params.Set("assay_type", filter.AssayType)
	}
	return NewWebServiceQuery(opts, "activity", "activities", params, ActivityFields, logger)
}

// URL returns the first page URL
func (q *WebServiceQuery) URL() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = v
	}
	if len(q.fields) > 0 {
		params.Set("only", strings.Join(q.fields, ","))
	}
	params.Set("limit", strconv.Itoa(q.pageSize))
	params.Set("offset", "0")
	return fmt.Sprintf("%s/%s.json?%s", q.baseURL, q.resource, params.Encode())
}

// Fetch follows page_meta.next until the listing is exhausted
func (q *WebServiceQuery) Fetch(ctx context.Context) (model.RecordSet, error) {
	start := time.Now()
	next := q.URL()
	var records []model.Record
	pages := 0

	for next != "" {
		objects, meta, err := q.page(ctx, next)
		if err != nil {
			return model.RecordSet{}, err
		}
		records = append(records, objects...)
		pages++

		next = ""
		if meta.Next != nil && *meta.Next != "" {
			if next, err = q.resolve(*meta.Next); err != nil {
				return model.RecordSet{}, err
			}
		}
	}

	q.logger.Debug("Web service query complete",
		zap.String("resource", q.resource),
		zap.Int("pages", pages),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)))

	return model.RecordSet{Fields: q.fields, Records: records}, nil
}

func (q *WebServiceQuery) page(ctx context.Context, pageURL string) ([]model.Record, pageMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, pageMeta{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, pageMeta{}, fmt.Errorf("request to %s failed: %w", q.resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, pageMeta{}, fmt.Errorf("%s request returned %s: %s",
			q.resource, resp.Status, strings.TrimSpace(string(body)))
	}

	var payload map[string]json.RawMessage
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&payload); err != nil {
		return nil, pageMeta{}, fmt.Errorf("failed to decode %s response: %w", q.resource, err)
	}

	var meta pageMeta
	if raw, ok := payload["page_meta"]; ok {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, pageMeta{}, fmt.Errorf("invalid page_meta: %w", err)
		}
	}

	raw, ok := payload[q.listKey]
	if !ok {
		return nil, pageMeta{}, fmt.Errorf("response has no %q list", q.listKey)
	}
	objects, err := decodeObjects(raw)
	if err != nil {
		return nil, pageMeta{}, fmt.Errorf("invalid %s list: %w", q.listKey, err)
	}
	return objects, meta, nil
}

// decodeObjects keeps integers exact by decoding numbers as json.Number
func decodeObjects(raw json.RawMessage) ([]model.Record, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var objects []map[string]interface{}
	if err := dec.Decode(&objects); err != nil {
		return nil, err
	}
	records := make([]model.Record, len(objects))
	for i, obj := range objects {
		records[i] = model.Record(obj)
	}
	return records, nil
}

// resolve turns the server's next link (usually host-relative) into an absolute URL
func (q *WebServiceQuery) resolve(next string) (string, error) {
	base, err := url.Parse(q.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// MoleculeQuery fetches molecule structures for IDs known only at fetch time
type MoleculeQuery struct {
	opts   WebServiceOptions
	ids    func(ctx context.Context) ([]string, error)
	logger *zap.Logger
}

// NewMoleculeQuery creates a molecule query. ids is called once per Fetch.
func NewMoleculeQuery(opts WebServiceOptions, ids func(ctx context.Context) ([]string, error), logger *zap.Logger) *MoleculeQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MoleculeQuery{opts: opts, ids: ids, logger: logger}
}

// Fetch requests the molecules in batches of IDs
func (q *MoleculeQuery) Fetch(ctx context.Context) (model.RecordSet, error) {
	ids, err := q.ids(ctx)
	if err != nil {
		return model.RecordSet{}, fmt.Errorf("failed to resolve molecule IDs: %w", err)
	}
	ids = uniqueStrings(ids)

	result := model.RecordSet{Fields: MoleculeFields}
	for start := 0; start < len(ids); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		params := url.Values{}
		params.Set("molecule_chembl_id__in", strings.Join(ids[start:end], ","))
		batch := NewWebServiceQuery(q.opts, "molecule", "molecules", params, MoleculeFields, q.logger)
		rs, err := batch.Fetch(ctx)
		if err != nil {
			return model.RecordSet{}, err
		}
		result.Records = append(result.Records, rs.Records...)
	}
	return result, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
