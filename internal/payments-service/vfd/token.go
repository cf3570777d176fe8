package vfd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/ovo-banking-gateway/internal/payments-service/vfd/dto"
)

var (
	ErrMissingCredentials = errors.New("vfd: missing consumer key/secret")
	ErrTokenRejected      = errors.New("vfd: token request rejected")
	ErrEmptyToken         = errors.New("vfd: token response without token")
)

// TokenSource entrega um bearer token para uma única chamada ao provedor
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenAcquirer troca consumer key/secret por um access token (client credentials).
// Cada chamada faz uma nova troca: não há cache nem renovação.
type TokenAcquirer struct {
	URL    string
	Key    string
	Secret string
	Static string // VFD_ACCESS_TOKEN, usado só quando key/secret não estão configurados
	HTTP   *http.Client
	log    *zap.Logger
}

func NewTokenAcquirer(log *zap.Logger, tokenURL, key, secret, static string, timeout time.Duration) *TokenAcquirer {
	return &TokenAcquirer{
		URL:    tokenURL,
		Key:    key,
		Secret: secret,
		Static: static,
		HTTP:   &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (t *TokenAcquirer) Token(ctx context.Context) (string, error) {
	if t.Key == "" || t.Secret == "" {
		if t.Static != "" {
			return t.Static, nil
		}
		t.log.Warn("vfd missing credentials")
		return "", ErrMissingCredentials
	}

	form := url.Values{"grant_type": {"client_credentials"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, strings.NewReader(form))
	if err != nil {
		return "", fmt.Errorf("vfd token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(t.Key + ":" + t.Secret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := t.HTTP.Do(req)
	if err != nil {
		t.log.Error("vfd token fetch error", zap.Error(err))
		return "", fmt.Errorf("vfd token: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		t.log.Error("vfd token request failed", zap.Int("status", res.StatusCode))
		return "", fmt.Errorf("%w: http %d", ErrTokenRejected, res.StatusCode)
	}

	var out dto.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.log.Error("vfd token decode error", zap.Error(err))
		return "", fmt.Errorf("vfd token decode: %w", err)
	}
	if out.Value() == "" {
		return "", ErrEmptyToken
	}
	return out.Value(), nil
}
