package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/benedict-erwin/lokiquery/config"
	"github.com/benedict-erwin/lokiquery/pkg/logger"
)

var (
	clientConfigs = make(map[string]config.ClientConfig)
	signingMethod jwt.SigningMethod
	issuer        string
	tokenTTL      time.Duration
	authMutex     sync.RWMutex
)

// Claims are the JWT claims of a gateway client
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

var (
	ErrUnknownClient  = errors.New("unknown client_id")
	ErrInactiveClient = errors.New("client is inactive")
)

// InitAuth loads the client secrets of the active configuration
func InitAuth() error {
	authConfig := config.Get().Auth
	if !authConfig.Enabled {
		logger.Info().Msg("Auth disabled in config")
	}
	return Load(authConfig)
}

// Load replaces the in-memory clients with cfg.Clients. Only HMAC
// algorithms are accepted; every active client needs a secret.
func Load(cfg config.AuthConfig) error {
	method, err := hmacMethod(cfg.Algorithm)
	if err != nil {
		return err
	}

	loaded := make(map[string]config.ClientConfig, len(cfg.Clients))
	for _, client := range cfg.Clients {
		if client.ClientID == "" {
			return fmt.Errorf("client %q has no client_id", client.ClientName)
		}
		if !client.Active {
			logger.Info().
				Str("client_id", client.ClientID).
				Str("client_name", client.ClientName).
				Msg("Skipping inactive client")
			continue
		}
		if client.SecretKey == "" {
			return fmt.Errorf("client %s (%s) missing secret_key", client.ClientID, client.ClientName)
		}
		loaded[client.ClientID] = client

		logger.Debug().
			Str("client_id", client.ClientID).
			Str("client_name", client.ClientName).
			Strs("permissions", client.Permissions).
			Msg("Client auth loaded successfully")
	}

	authMutex.Lock()
	clientConfigs = loaded
	signingMethod = method
	issuer = cfg.Issuer
	tokenTTL = cfg.TokenTTL
	authMutex.Unlock()

	logger.Info().
		Int("loaded_clients", len(loaded)).
		Int("total_clients", len(cfg.Clients)).
		Str("algorithm", method.Alg()).
		Msg("Auth system initialized")
	return nil
}

func hmacMethod(alg string) (jwt.SigningMethod, error) {
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q, use HS256, HS384 or HS512", alg)
	}
	return method, nil
}

// GetClientInfo returns the config of an active client
func GetClientInfo(clientID string) (config.ClientConfig, bool) {
	authMutex.RLock()
	defer authMutex.RUnlock()

	client, ok := clientConfigs[clientID]
	return client, ok
}

// IssueToken signs a token for clientID. ttl <= 0 uses the configured
// token_ttl.
func IssueToken(clientID string, ttl time.Duration) (string, error) {
	client, ok := GetClientInfo(clientID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
	}

	authMutex.RLock()
	method, iss := signingMethod, issuer
	if ttl <= 0 {
		ttl = tokenTTL
	}
	authMutex.RUnlock()

	now := time.Now()
	claims := &Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   iss,
			Subject:  client.ClientName,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(method, claims).SignedString([]byte(client.SecretKey))
}

// VerifyJWT verifies the token against its client's secret and returns the
// claims
func VerifyJWT(tokenString string) (*Claims, error) {
	authMutex.RLock()
	method, iss := signingMethod, issuer
	authMutex.RUnlock()
	if method == nil {
		return nil, fmt.Errorf("auth not initialized")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{method.Alg()})}
	if iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		c, ok := token.Claims.(*Claims)
		if !ok || c.ClientID == "" {
			return nil, fmt.Errorf("token carries no client_id")
		}
		client, exists := GetClientInfo(c.ClientID)
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownClient, c.ClientID)
		}
		if !client.Active {
			return nil, fmt.Errorf("%w: %s", ErrInactiveClient, c.ClientID)
		}
		return []byte(client.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
