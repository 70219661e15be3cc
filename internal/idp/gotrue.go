package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"counselor_admin_backend/platform/config"

	"github.com/google/uuid"
)

// GoTrueClient talks to a GoTrue-compatible identity provider admin API.
// All calls authenticate with the privileged service key.
type GoTrueClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewGoTrueClient creates a client from the identity provider configuration.
func NewGoTrueClient(cfg config.IdentityProviderConfig) *GoTrueClient {
	return &GoTrueClient{
		baseURL:    strings.TrimRight(cfg.GetIdentityProviderURL(), "/"),
		serviceKey: cfg.GetIdentityProviderServiceKey(),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Compile-time check that GoTrueClient implements Provider.
var _ Provider = (*GoTrueClient)(nil)

type createUserRequest struct {
	Phone        string         `json:"phone"`
	Email        string         `json:"email,omitempty"`
	PhoneConfirm bool           `json:"phone_confirm"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type userRecord struct {
	ID    uuid.UUID `json:"id"`
	Phone string    `json:"phone"`
	Email string    `json:"email"`
}

type listUsersResponse struct {
	Users []userRecord `json:"users"`
}

type apiErrorBody struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

// CreateIdentity registers a new identity with the provider.
func (c *GoTrueClient) CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	body := createUserRequest{
		Phone:        params.Phone,
		Email:        params.Email,
		PhoneConfirm: params.PhoneVerified,
		EmailConfirm: false,
	}
	if params.DisplayName != "" {
		body.UserMetadata = map[string]any{"full_name": params.DisplayName}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Identity{}, fmt.Errorf("marshal create identity request: %w", err)
	}

	request, err := c.newRequest(ctx, http.MethodPost, "/admin/users", bytes.NewReader(bodyBytes))
	if err != nil {
		return Identity{}, err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return Identity{}, fmt.Errorf("create identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Identity{}, decodeAPIError(resp)
	}

	var record userRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return Identity{}, fmt.Errorf("decode create identity response: %w", err)
	}

	return toIdentity(record), nil
}

// DeleteIdentity removes an identity by id.
func (c *GoTrueClient) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	request, err := c.newRequest(ctx, http.MethodDelete, "/admin/users/"+id.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("delete identity request failed: %w", err)
	}
	defer resp.Body.Close()

	// A missing identity counts as deleted; retried compensation must not fail.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	return nil
}

// ListIdentities fetches one page of identities.
func (c *GoTrueClient) ListIdentities(ctx context.Context, page, perPage int) ([]Identity, error) {
	request, err := c.newRequest(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}

	query := request.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	request.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("list identities request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var listResp listUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("decode list identities response: %w", err)
	}

	identities := make([]Identity, 0, len(listResp.Users))
	for _, record := range listResp.Users {
		identities = append(identities, toIdentity(record))
	}

	return identities, nil
}

func (c *GoTrueClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}

	request.Header.Set("Authorization", "Bearer "+c.serviceKey)
	request.Header.Set("apikey", c.serviceKey)
	return request, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body apiErrorBody
	message := ""
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Msg != "":
			message = body.Msg
		case body.Message != "":
			message = body.Message
		case body.ErrorDescription != "":
			message = body.ErrorDescription
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

func toIdentity(record userRecord) Identity {
	return Identity{
		ID:    record.ID,
		Phone: record.Phone,
		Email: record.Email,
	}
}
