package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/storesync/internal/domain"
)

const (
	// pageSize is Shopify's documented maximum page size for REST
	// collection endpoints.
	pageSize = 250

	accessTokenHeader = "X-Shopify-Access-Token"
	callLimitHeader   = "X-Shopify-Shop-Api-Call-Limit"

	// throttleThreshold is the reported bucket usage ratio above which
	// the client pauses before requesting the next page.
	throttleThreshold = 0.8
	throttleDelay     = 2 * time.Second
)

// Client fetches paginated resource collections from the Shopify Admin
// REST API for one tenant at a time. It has no side effects beyond
// network I/O and never mutates persisted state; retry policy belongs to
// the caller.
type Client struct {
	httpClient *http.Client
	apiVersion string
	limiter    *rate.Limiter
	logger     *slog.Logger
	scheme     string
}

// NewClient creates a Shopify API client. requestRate caps outgoing
// requests per second across all tenants served by this client.
func NewClient(httpClient *http.Client, apiVersion string, requestRate float64, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		apiVersion: apiVersion,
		limiter:    rate.NewLimiter(rate.Limit(requestRate), 1),
		logger:     logger.With("component", "shopify_client"),
		scheme:     "https",
	}
}

// ForEachPage streams every page of the named resource collection
// ("customers", "products", "orders") for the tenant, invoking fn once
// per page with the raw records. Iteration stops on the first error,
// including any error returned by fn.
func (c *Client) ForEachPage(ctx context.Context, tenant *domain.Tenant, resource string, fn func(records []json.RawMessage) error) error {
	pageInfo := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		records, nextPageInfo, throttled, err := c.fetchPage(ctx, tenant, resource, pageInfo)
		if err != nil {
			return err
		}

		if len(records) > 0 {
			if err := fn(records); err != nil {
				return err
			}
		}

		if nextPageInfo == "" {
			return nil
		}
		pageInfo = nextPageInfo

		// Slow down before the provider starts rejecting requests.
		if throttled {
			c.logger.Debug("approaching API call limit, pausing before next page",
				"tenant_id", tenant.ID, "resource", resource)
			select {
			case <-time.After(throttleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, tenant *domain.Tenant, resource, pageInfo string) ([]json.RawMessage, string, bool, error) {
	u := url.URL{
		Scheme: c.scheme,
		Host:   tenant.ShopifyDomain,
		Path:   fmt.Sprintf("/admin/api/%s/%s.json", c.apiVersion, resource),
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(pageSize))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(accessTokenHeader, tenant.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", false, fmt.Errorf("request %s for tenant %s: %w", resource, tenant.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", false, &domain.UpstreamError{
			TenantID:   tenant.ID,
			StatusCode: resp.StatusCode,
			Resource:   resource,
			Body:       string(body),
		}
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", false, fmt.Errorf("decode %s page: %w", resource, err)
	}

	var records []json.RawMessage
	if raw, ok := payload[resource]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, "", false, fmt.Errorf("decode %s records: %w", resource, err)
		}
	}

	throttled := nearCallLimit(resp.Header.Get(callLimitHeader))
	return records, nextPageInfo(resp.Header.Get("Link")), throttled, nil
}

// nearCallLimit reports whether the "used/max" call-limit header is at
// or above the throttle threshold. Malformed headers are ignored.
func nearCallLimit(header string) bool {
	used, max, ok := strings.Cut(strings.TrimSpace(header), "/")
	if !ok {
		return false
	}
	u, err1 := strconv.ParseFloat(used, 64)
	m, err2 := strconv.ParseFloat(max, 64)
	if err1 != nil || err2 != nil || m <= 0 {
		return false
	}
	return u/m >= throttleThreshold
}

// nextPageInfo extracts the page_info cursor of the rel="next" link from
// a Link response header, or "" when there is no next page.
func nextPageInfo(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}
