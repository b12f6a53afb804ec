package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"inboxai/internal/config"
	"inboxai/internal/constants"
	"inboxai/internal/logger"
	"inboxai/pkg/errors"
	"inboxai/pkg/metrics"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// refreshMargin is subtracted from the upstream expiry when caching so a
// token is never served within its last minute of validity.
const refreshMargin = time.Minute

// Provider exchanges a long-lived refresh credential for a short-lived
// access token.
type Provider interface {
	AccessToken(ctx context.Context, refreshToken string) (string, error)
}

type OAuthProvider struct {
	cfg    config.GmailConfig
	cache  *redis.Client
	logger logger.Logger
}

// NewOAuthProvider builds a provider against the Google token endpoint.
// cache may be nil, in which case every call performs a live exchange.
func NewOAuthProvider(cfg config.GmailConfig, cache *redis.Client, log logger.Logger) *OAuthProvider {
	return &OAuthProvider{
		cfg:    cfg,
		cache:  cache,
		logger: log,
	}
}

func (p *OAuthProvider) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.ErrAuth.WithDetail("reason", "empty refresh credential")
	}

	cacheKey := constants.CacheKeyPrefixToken + fingerprint(refreshToken)

	if p.cache != nil {
		val, err := p.cache.Get(ctx, cacheKey).Result()
		if err == nil && val != "" {
			p.logger.DebugwCtx(ctx, "Access token served from cache")
			return val, nil
		}
		if err != nil && err != redis.Nil {
			p.logger.WarnwCtx(ctx, "Token cache read failed",
				"error", err,
			)
		}
	}

	tok, err := p.exchange(ctx, refreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("error").Inc()
		return "", errors.Wrap(err, errors.ErrAuth)
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	if p.cache != nil {
		ttl := time.Until(tok.Expiry) - refreshMargin
		if ttl > 0 {
			if err := p.cache.Set(ctx, cacheKey, tok.AccessToken, ttl).Err(); err != nil {
				p.logger.WarnwCtx(ctx, "Token cache write failed",
					"error", err,
				)
			}
		}
	}

	return tok.AccessToken, nil
}

func (p *OAuthProvider) exchange(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	tokenURL := p.cfg.TokenURL
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}

	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: tokenURL,
		},
	}

	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// fingerprint derives the cache key component from the refresh credential.
// The credential itself never appears in Redis keys or logs.
func fingerprint(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}
