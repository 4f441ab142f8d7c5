package publish

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenRefreshClient exchanges a stored refresh token for a new token pair via
// the provider's OAuth endpoint. No retry here; retry policy belongs to the
// orchestrator.
type TokenRefreshClient struct {
	httpClient *http.Client
	tokenURL   string
}

func NewTokenRefreshClient(httpClient *http.Client, tokenURL string) *TokenRefreshClient {
	return &TokenRefreshClient{
		httpClient: httpClient,
		tokenURL:   tokenURL,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *TokenRefreshClient) Refresh(ctx context.Context, creds Credentials) (TokenPair, error) {
	if creds.RefreshToken == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return TokenPair{}, &TokenRefreshError{Reason: "credentials record missing refresh token or client keys"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.RefreshToken)
	form.Set("client_id", creds.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return TokenPair{}, &TokenRefreshError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("correlationID: %s error calling token endpoint: %s", creds.UserID, err)
		return TokenPair{}, &TokenRefreshError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TokenPair{}, &TokenRefreshError{Reason: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenPair{}, &TokenRefreshError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload tokenResponse
	if err = json.Unmarshal(body, &payload); err != nil {
		return TokenPair{}, &TokenRefreshError{Reason: "unparseable token response: " + err.Error()}
	}

	// Incomplete responses are failures; never substitute defaults for a
	// missing token.
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return TokenPair{}, &TokenRefreshError{Reason: "token response missing access or refresh token"}
	}

	pair := TokenPair{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	if payload.ExpiresIn > 0 {
		pair.ExpiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return pair, nil
}
