package sharepoint

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConfig selects how requests are authenticated. Client credentials take
// precedence over a static access token; with neither, requests are anonymous.
type AuthConfig struct {
	AccessToken  string
	TenantID     string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// NewHTTPClient builds the authenticated transport for siteURL.
// ctx is used for token refreshes and should outlive the client.
func NewHTTPClient(ctx context.Context, siteURL string, cfg AuthConfig, timeout time.Duration) (*http.Client, error) {
	var hc *http.Client

	switch {
	case cfg.ClientID != "" || cfg.ClientSecret != "":
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("sharepoint: client credentials need both client-id and client-secret")
		}
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			if cfg.TenantID == "" {
				return nil, fmt.Errorf("sharepoint: tenant-id or token-url is required for client credentials")
			}
			tokenURL = "https://login.microsoftonline.com/" + url.PathEscape(cfg.TenantID) + "/oauth2/v2.0/token"
		}
		scopes := cfg.Scopes
		if len(scopes) == 0 {
			scope, err := DefaultScope(siteURL)
			if err != nil {
				return nil, err
			}
			scopes = []string{scope}
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}
		hc = cc.Client(ctx)

	case cfg.AccessToken != "":
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))

	default:
		hc = &http.Client{}
	}

	hc.Timeout = timeout
	return hc, nil
}

// DefaultScope returns "{scheme}://{host}/.default" for the site's tenant.
func DefaultScope(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("sharepoint: cannot derive scope from site url %q", siteURL)
	}
	return u.Scheme + "://" + u.Host + "/.default", nil
}
