// Package coresystem talks to the external policy registry that holds the
// authoritative owner of every policy.
package coresystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kycreview/internal/identity/models"
	id "kycreview/pkg/domain"
	"kycreview/pkg/platform/circuit"
)

const (
	endpointPolicy  = "newpolicies"
	endpointRelated = "related-policies"

	maxBodyBytes = 1 << 20
)

// CallRecorder counts registry calls by endpoint and outcome.
type CallRecorder interface {
	IncrementCoreSystemCall(endpoint, outcome string)
}

// Client is the HTTP client of the core system. Both lookups are
// idempotent GETs authenticated with a bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *circuit.Breaker
	metrics    CallRecorder
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func WithMetrics(m CallRecorder) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuit.New("core-system"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// policyRecord is the wire shape of a newpolicies row.
type policyRecord struct {
	PolicyNo   string `json:"PolicyNo"`
	FirstName  string `json:"FirstName"`
	LastName   string `json:"LastName"`
	DOB        string `json:"DOB"`
	Mobile     string `json:"Mobile"`
	BranchCode string `json:"BranchCode"`
	BranchName string `json:"BranchName"`
}

// LookupPolicy returns the owner of policyNo. The registry filters by DOB
// itself, so an empty result covers both unknown policies and wrong DOBs.
func (c *Client) LookupPolicy(ctx context.Context, policyNo id.PolicyNumber, dob time.Time) (*models.Owner, error) {
	q := url.Values{}
	q.Set("policy_no", string(policyNo))
	q.Set("dob", dob.Format(models.DateLayout))

	var records []policyRecord
	if err := c.get(ctx, endpointPolicy, q, &records); err != nil {
		return nil, err
	}
	return selectOwner(policyNo, records)
}

// RelatedPolicies returns every policy registered to the same person.
func (c *Client) RelatedPolicies(ctx context.Context, owner *models.Owner) ([]id.PolicyNumber, error) {
	q := url.Values{}
	q.Set("firstname", owner.FirstName)
	q.Set("lastname", owner.LastName)
	q.Set("dob", owner.DOB.Format(models.DateLayout))
	q.Set("mobile", owner.Mobile)

	var raw []string
	if err := c.get(ctx, endpointRelated, q, &raw); err != nil {
		if GetCategory(err) == CategoryNotFound {
			return nil, nil
		}
		return nil, err
	}
	out := make([]id.PolicyNumber, 0, len(raw))
	for _, p := range raw {
		pn, err := id.ParsePolicyNumber(p)
		if err != nil {
			continue
		}
		out = append(out, pn)
	}
	return out, nil
}

func selectOwner(policyNo id.PolicyNumber, records []policyRecord) (*models.Owner, error) {
	var owner *models.Owner
	for _, r := range records {
		pn, err := id.ParsePolicyNumber(r.PolicyNo)
		if err != nil || pn != policyNo {
			continue
		}
		dob, err := models.ParseDOB(r.DOB)
		if err != nil {
			return nil, newError(CategoryBadData, endpointPolicy, "unparseable owner dob", err)
		}
		candidate := &models.Owner{
			PolicyNo:   pn,
			FirstName:  strings.TrimSpace(r.FirstName),
			LastName:   strings.TrimSpace(r.LastName),
			DOB:        dob,
			Mobile:     strings.TrimSpace(r.Mobile),
			BranchCode: r.BranchCode,
			BranchName: r.BranchName,
		}
		if owner != nil && owner.Key() != candidate.Key() {
			return nil, newError(CategoryNotFound, endpointPolicy, "ambiguous policy owner", nil)
		}
		owner = candidate
	}
	if owner == nil {
		return nil, newError(CategoryNotFound, endpointPolicy, "policy not found", nil)
	}
	return owner, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if !c.breaker.Allow(c.now()) {
		c.record(endpoint, "short_circuit")
		return newError(CategoryOutage, endpoint, "circuit open", nil)
	}

	err := c.do(ctx, endpoint, q, out)
	if err == nil {
		c.breaker.RecordSuccess()
		c.record(endpoint, "ok")
		return nil
	}

	category := GetCategory(err)
	if category == CategoryTimeout || category == CategoryOutage {
		c.breaker.RecordFailure()
	} else {
		// the registry answered, so the transport is healthy
		c.breaker.RecordSuccess()
	}
	c.record(endpoint, string(category))
	return err
}

func (c *Client) do(ctx context.Context, endpoint string, q url.Values, out any) error {
	u := fmt.Sprintf("%s/mssql/%s?%s", c.baseURL, endpoint, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return newError(CategoryBadData, endpoint, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return newError(CategoryTimeout, endpoint, "request timed out", err)
		}
		return newError(CategoryOutage, endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return newError(CategoryOutage, endpoint, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return newError(CategoryNotFound, endpoint, "not found", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return newError(CategoryAuth, endpoint, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode >= 500:
		return newError(CategoryOutage, endpoint, fmt.Sprintf("status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return newError(CategoryBadData, endpoint, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(CategoryBadData, endpoint, "decode response", err)
	}
	return nil
}

func (c *Client) record(endpoint, outcome string) {
	if c.metrics != nil {
		c.metrics.IncrementCoreSystemCall(endpoint, outcome)
	}
}
