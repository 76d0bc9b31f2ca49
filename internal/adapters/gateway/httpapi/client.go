package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/groupchat-cli/internal/domain"
	"github.com/bnema/groupchat-cli/internal/ports"
)

const maxResponseBytes = 1 << 20

// Client talks to the group chat HTTP API. Protected endpoints carry
// the token as "Authorization: Token <token>".
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

var _ ports.ChatGateway = (*Client)(nil)

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  "gchat",
	}
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, username, password string) (domain.AuthGrant, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/register", "", nil, credentialsPayload{Username: username, Password: password})
	if err != nil {
		return domain.AuthGrant{}, fmt.Errorf("register: %w", err)
	}

	var grant domain.AuthGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return domain.AuthGrant{}, fmt.Errorf("register: decode auth grant: %w", err)
	}

	return grant, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.AuthGrant, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", "", nil, credentialsPayload{Username: username, Password: password})
	if err != nil {
		return domain.AuthGrant{}, fmt.Errorf("login: %w", err)
	}

	var grant domain.AuthGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return domain.AuthGrant{}, fmt.Errorf("login: decode auth grant: %w", err)
	}

	return grant, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (c *Client) ListMessages(ctx context.Context, token string, query domain.MessageQuery) ([]domain.ChatMessage, error) {
	if query.Limit < 0 {
		return nil, errors.New("list messages: limit must be positive")
	}
	if query.Offset < 0 {
		return nil, errors.New("list messages: offset must be non-negative")
	}

	params := url.Values{}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}

	body, err := c.do(ctx, http.MethodGet, "/api/chat/messages", token, params, nil)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// The feed contract: a payload that is not a sequence yields an
	// empty feed rather than an error.
	var probe any
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("list messages: decode payload: %w", err)
	}
	if _, ok := probe.([]any); !ok {
		return []domain.ChatMessage{}, nil
	}

	var messages []domain.ChatMessage
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, fmt.Errorf("list messages: decode messages: %w", err)
	}

	return messages, nil
}

type sendMessagePayload struct {
	Text string `json:"text"`
}

func (c *Client) SendMessage(ctx context.Context, token, text string) (*domain.ChatMessage, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/chat/messages", token, nil, sendMessagePayload{Text: text})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var message domain.ChatMessage
	if err := json.Unmarshal(body, &message); err != nil {
		return nil, fmt.Errorf("send message: decode created message: %w", err)
	}

	return &message, nil
}

func (c *Client) Profile(ctx context.Context, token string) (domain.Member, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/profile", token, nil, nil)
	if err != nil {
		return domain.Member{}, fmt.Errorf("get profile: %w", err)
	}

	var member domain.Member
	if err := json.Unmarshal(body, &member); err != nil {
		return domain.Member{}, fmt.Errorf("get profile: decode member: %w", err)
	}

	return member, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (domain.Member, error) {
	if update.IsEmpty() {
		return domain.Member{}, domain.ErrEmptyProfileUpdate
	}

	body, err := c.do(ctx, http.MethodPut, "/api/profile", token, nil, update)
	if err != nil {
		return domain.Member{}, fmt.Errorf("update profile: %w", err)
	}

	var member domain.Member
	if err := json.Unmarshal(body, &member); err != nil {
		return domain.Member{}, fmt.Errorf("update profile: decode member: %w", err)
	}

	return member, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, params url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var requestBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		requestBody = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, requestBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Token "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &domain.APIError{
			Status:  response.StatusCode,
			Message: extractErrorMessage(body),
		}
	}

	return body, nil
}
