package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kallio-maps/cogtile/internal/cogerr"
)

const gcsReadOnlyScope = "https://www.googleapis.com/auth/devstorage.read_only"
const gcsTokenURL = "https://oauth2.googleapis.com/token"
const gcsJWTAudience = "https://oauth2.googleapis.com/token"

// serviceAccount is the subset of a GCP service-account JSON key file
// this client needs to mint an OAuth2 bearer token.
type serviceAccount struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// gcsTokenSource signs a short-lived JWT with the service-account's
// private key and exchanges it for a bearer token, caching the token
// until shortly before it expires.
type gcsTokenSource struct {
	mu          sync.Mutex
	account     serviceAccount
	privateKey  interface{}
	client      *http.Client
	cachedToken string
	expiresAt   time.Time
}

func newGCSTokenSource() (*gcsTokenSource, error) {
	content := os.Getenv("GOOGLE_SERVICE_ACCOUNT_CONTENT")
	if content == "" {
		return nil, cogerr.New(cogerr.KindOther, "GOOGLE_SERVICE_ACCOUNT_CONTENT is not set")
	}
	var acct serviceAccount
	if err := json.Unmarshal([]byte(content), &acct); err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "failed to parse service account JSON")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(acct.PrivateKey))
	if err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "failed to parse service account private key")
	}
	return &gcsTokenSource{account: acct, privateKey: key, client: &http.Client{}}, nil
}

func (t *gcsTokenSource) token() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cachedToken != "" && time.Now().Before(t.expiresAt.Add(-1*time.Second)) {
		return t.cachedToken, nil
	}

	now := time.Now().UTC()
	exp := now.Add(1 * time.Hour)
	claims := jwt.MapClaims{
		"iss":   t.account.ClientEmail,
		"scope": gcsReadOnlyScope,
		"aud":   gcsJWTAudience,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	assertion := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	assertion.Header["kid"] = t.account.PrivateKeyID
	signed, err := assertion.SignedString(t.privateKey)
	if err != nil {
		return "", cogerr.Wrap(cogerr.KindOther, err, "failed to sign GCS service account JWT")
	}

	tokenURL := t.account.TokenURI
	if tokenURL == "" {
		tokenURL = gcsTokenURL
	}
	resp, err := t.exchangeJWT(tokenURL, signed)
	if err != nil {
		return "", err
	}

	t.cachedToken = resp.AccessToken
	t.expiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	return t.cachedToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (t *gcsTokenSource) exchangeJWT(tokenURL, assertion string) (*tokenResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer"); err != nil {
		return nil, err
	}
	if err := w.WriteField("assertion", assertion); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, tokenURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, cogerr.New(cogerr.KindOther, "GCS token exchange failed, status=%d: %s", resp.StatusCode, data)
	}
	var tr tokenResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, cogerr.Wrap(cogerr.KindInvalidData, err, "failed to parse GCS token response")
	}
	return &tr, nil
}

func gcsObjectURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/storage/v1/b/%s/o/%s?alt=media",
		url.PathEscape(bucket), url.QueryEscape(object))
}
