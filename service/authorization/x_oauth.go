package authorization

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"

	config "github.com/plumewire-social-core/v2/configuration"
	dal "github.com/plumewire-social-core/v2/dal"
	tables "github.com/plumewire-social-core/v2/dal/tables/v1"
)

// XAuth drives the user-connect authorization-code flow against the provider.
// The publish core never calls this; it only consumes the credential records
// this flow persists.
type XAuth struct {
	credentials *dal.CredentialDao
}

func NewXAuth(credentials *dal.CredentialDao) *XAuth {
	return &XAuth{credentials: credentials}
}

func (self *XAuth) getOauthConfig() *oauth2.Config {
	cfg := config.GetEnvConfigs()
	return &oauth2.Config{
		ClientID:     os.Getenv("X_CLIENT_ID"),
		ClientSecret: os.Getenv("X_CLIENT_SECRET"),
		Endpoint: oauth2.Endpoint{
			AuthURL:   cfg.ProviderAuthorizeURL,
			TokenURL:  cfg.ProviderTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: cfg.OauthRedirectURL,
		Scopes:      []string{"tweet.read", "tweet.write", "users.read", "media.write", "offline.access"},
	}
}

// StartOauthCodeFlow returns the provider authorize URL for the user. The
// user id rides along in the base64 state payload so the callback can
// attribute the vended tokens.
func (self *XAuth) StartOauthCodeFlow(userID string) (string, error) {
	conf := self.getOauthConfig()
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return "", fmt.Errorf("X_CLIENT_ID and X_CLIENT_SECRET must be set")
	}
	statePayload := fmt.Sprintf("{\"userId\": \"%s\"}", userID)
	encodedState := base64.StdEncoding.EncodeToString([]byte(statePayload))
	// offline access is what vends the refresh token; without it the publish
	// core cannot recover from expiry.
	authUrl := conf.AuthCodeURL(encodedState, oauth2.AccessTypeOffline)
	return authUrl, nil
}

// StoreAuthorizationCode exchanges the callback code and persists the
// credential record the publish core reads.
func (self *XAuth) StoreAuthorizationCode(ctx context.Context, authCode string, userID string) error {
	conf := self.getOauthConfig()
	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		log.Printf("error exchanging authorization code for user %s: %s", userID, err)
		return err
	}
	if token.RefreshToken == "" {
		return fmt.Errorf("provider vended no refresh token, re-authorize with offline access")
	}

	item := tables.OauthCredential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		item.ExpiresAtEpochSec = token.Expiry.Unix()
	}
	return self.credentials.Create(ctx, item)
}

// DecodeState unpacks the base64 state payload from the callback redirect.
func DecodeState(state string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return "", err
	}
	var payload struct {
		UserId string `json:"userId"`
	}
	if err = json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	if payload.UserId == "" {
		return "", fmt.Errorf("state payload missing userId")
	}
	return payload.UserId, nil
}
