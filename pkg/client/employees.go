package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for the pagination loop.
var (
	viventiumPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viventium_pages_fetched_total",
		Help: "Total non-empty employee profile grid pages fetched",
	})

	viventiumEmployeesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "viventium_employees_fetched_total",
		Help: "Total employee profile records fetched",
	})
)

// EmployeeProfile is one vendor record, passed through as-is. The only
// mutation applied is removal of the DivisionKey linkage field.
type EmployeeProfile map[string]any

// divisionKeyField ties a record to its division inside the vendor's data
// model; it is stripped before records are returned to the caller.
const divisionKeyField = "DivisionKey"

// division is the slice of a divisions-listing entry this client needs.
type division struct {
	ID string `json:"id"`
}

// resolveDivisionID fetches the account's divisions and returns the
// identifier of the first one. The id scopes all grid queries for the rest
// of the operation and is never cached across operations.
func (c *Client) resolveDivisionID(ctx context.Context, logger zerolog.Logger, token string, cookies Cookies) (string, error) {
	header := c.authHeaders(token)
	header.Set("Cookie", cookies.cookieHeader())

	params := url.Values{}
	params.Set("pageNumber", "1")
	params.Set("pageSize", "1000")

	raw, err := c.dispatch(ctx, http.MethodGet, c.baseURL+"/paystream/v1/divisions", header, params)
	if err != nil {
		return "", err
	}

	var divisions []division
	if err := json.Unmarshal(raw, &divisions); err != nil {
		return "", &APIError{
			Integration: integrationName,
			StatusCode:  http.StatusOK,
			Message:     "unexpected divisions response shape",
			Err:         err,
		}
	}
	if len(divisions) == 0 {
		return "", ErrNoDivisions
	}

	logger.Debug().
		Str("division_id", divisions[0].ID).
		Int("divisions", len(divisions)).
		Msg("Resolved division")

	return divisions[0].ID, nil
}

// FetchEmployeeProfiles retrieves every active employee profile for the
// account, paging through the grid endpoint until exhaustion. The token and
// cookies are assumed valid for the whole operation; there is no
// mid-operation refresh. All-or-nothing: a failure on any page discards
// progress and surfaces a typed error.
func (c *Client) FetchEmployeeProfiles(ctx context.Context, xsrfToken string, cookies Cookies) ([]EmployeeProfile, error) {
	logger := c.logger.With().Str("op_id", uuid.NewString()).Logger()

	divisionID, err := c.resolveDivisionID(ctx, logger, xsrfToken, cookies)
	if err != nil {
		return nil, err
	}

	// Headers and the cookie string are built once and reused for every page.
	header := c.authHeaders(xsrfToken)
	header.Set("Cookie", cookies.cookieHeader())

	gridURL := fmt.Sprintf("%s/paystream/v1/divisions/%s/grids/EmployeeProfile",
		c.baseURL, url.PathEscape(divisionID))

	var employees []EmployeeProfile
	page := 1
	pages := 0
	for {
		opts, err := json.Marshal(employeeGridQuery(page))
		if err != nil {
			return nil, fmt.Errorf("marshal query options: %w", err)
		}

		params := url.Values{}
		params.Set("queryOptions", string(opts))

		raw, err := c.dispatch(ctx, http.MethodGet, gridURL, header, params)
		if err != nil {
			return nil, err
		}

		var batch []EmployeeProfile
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, &APIError{
				Integration: integrationName,
				StatusCode:  http.StatusOK,
				Message:     "unexpected employee grid response shape",
				Err:         err,
			}
		}

		if len(batch) == 0 {
			break
		}
		employees = append(employees, batch...)
		pages++
		viventiumPagesFetchedTotal.Inc()
		viventiumEmployeesFetchedTotal.Add(float64(len(batch)))

		logger.Debug().
			Int("page", page).
			Int("records", len(batch)).
			Msg("Fetched employee profile page")

		// A short page is the last page; its records are already appended.
		if len(batch) < pageSize {
			break
		}
		page++
	}

	for _, employee := range employees {
		delete(employee, divisionKeyField)
	}

	logger.Info().
		Str("division_id", divisionID).
		Int("pages", pages).
		Int("employees", len(employees)).
		Msg("Employee profile fetch complete")

	return employees, nil
}
