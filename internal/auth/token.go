package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const claimID = "id"

// Payload is the content carried by an access token.
type Payload struct {
	ID int64
}

// TokenConfig holds what the codec needs: the signing secret and the accepted id range.
type TokenConfig struct {
	Secret string
	MinID  int64
	MaxID  int64
}

// TokenCodec signs and verifies HS256 access tokens.
//
// Tokens carry no enforced expiry: revocation happens through the account's
// enabled flag, which the guard re-reads on every request.
type TokenCodec struct {
	secret []byte
	minID  int64
	maxID  int64
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec validates cfg and returns a codec.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.MinID > cfg.MaxID {
		return nil, fmt.Errorf("invalid id bounds [%d, %d]", cfg.MinID, cfg.MaxID)
	}
	return &TokenCodec{
		secret: []byte(cfg.Secret),
		minID:  cfg.MinID,
		maxID:  cfg.MaxID,
		now:    time.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithJSONNumber(),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Issue signs a token for p.
func (c *TokenCodec) Issue(p Payload) (string, error) {
	if p.ID < c.minID || p.ID > c.maxID {
		return "", fmt.Errorf("%w: id %d out of range", ErrIssuance, p.ID)
	}
	claims := jwt.MapClaims{
		claimID: p.ID,
		"iat":   c.now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIssuance, err)
	}
	return signed, nil
}

// Verify checks the signature of raw and decodes its payload. Expiry claims are ignored.
func (c *TokenCodec) Verify(raw string) (Payload, error) {
	claims := jwt.MapClaims{}
	token, err := c.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Payload{}, ErrInvalidToken
	}

	id, err := c.decodeID(claims)
	if err != nil {
		return Payload{}, err
	}
	return Payload{ID: id}, nil
}

func (c *TokenCodec) decodeID(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims[claimID]
	if !ok {
		return 0, fmt.Errorf("%w: missing %q claim", ErrInvalidToken, claimID)
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: %q claim is not a number", ErrInvalidToken, claimID)
	}
	id, err := num.Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %q claim is not an integer", ErrInvalidToken, claimID)
	}
	if id < c.minID || id > c.maxID {
		return 0, fmt.Errorf("%w: %q claim out of range", ErrInvalidToken, claimID)
	}
	return id, nil
}
