package mfasdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the enrollment API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func accountPath(accountID string) string {
	return "/v1/accounts/" + url.PathEscape(accountID)
}

func enrollmentPath(accountID, enrollmentID string) string {
	return accountPath(accountID) + "/mfa/totp/enrollments/" + url.PathEscape(enrollmentID)
}

// UpsertAccount creates or renames the account.
func (c *Client) UpsertAccount(ctx context.Context, accountID string, req AccountUpsertRequest) (*AccountResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, accountPath(accountID), req)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAccount(ctx context.Context, accountID string) (*AccountResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, accountPath(accountID), nil)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount removes the account together with its authenticators.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, accountPath(accountID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// StartEnrollment begins a TOTP enrollment labelled with the device name.
func (c *Client) StartEnrollment(ctx context.Context, accountID, label string) (*EnrollmentResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, accountPath(accountID)+"/mfa/totp/enrollments",
		EnrollmentStartRequest{Label: label})
	if err != nil {
		return nil, err
	}

	var out EnrollmentResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetEnrollment(ctx context.Context, accountID, enrollmentID string) (*EnrollmentResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, enrollmentPath(accountID, enrollmentID), nil)
	if err != nil {
		return nil, err
	}

	var out EnrollmentResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmEnrollment submits the code shown by the user's authenticator app.
// A mismatch returns an error matching ErrInvalidCode; the enrollment stays
// open and can be retried.
func (c *Client) ConfirmEnrollment(ctx context.Context, accountID, enrollmentID, code string) (*AuthenticatorResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, enrollmentPath(accountID, enrollmentID)+"/confirm",
		CodeRequest{Code: code})
	if err != nil {
		return nil, err
	}

	var out AuthenticatorResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AbandonEnrollment(ctx context.Context, accountID, enrollmentID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, enrollmentPath(accountID, enrollmentID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (c *Client) ListAuthenticators(ctx context.Context, accountID string) ([]AuthenticatorResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, accountPath(accountID)+"/authenticators", nil)
	if err != nil {
		return nil, err
	}

	var out AuthenticatorListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Authenticators, nil
}

func (c *Client) DeleteAuthenticator(ctx context.Context, accountID, authenticatorID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		accountPath(accountID)+"/authenticators/"+url.PathEscape(authenticatorID), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// Verify checks a code against the account's confirmed authenticators.
func (c *Client) Verify(ctx context.Context, accountID, code string) (*VerifyResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, accountPath(accountID)+"/mfa/totp/verify",
		CodeRequest{Code: code})
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// doRequest sends body, if any, as JSON.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON decodes a JSON response into target, or returns an *APIError
// when the status is not the expected one.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// checkStatusNoContent returns an *APIError if the response status is not 204 No Content.
func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, bodyBytes)
	}
	return nil
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        http.StatusText(resp.StatusCode),
		Description: strings.TrimSpace(string(body)),
	}
}
