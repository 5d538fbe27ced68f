// Package token extracts identity claims from the compact bearer tokens issued
// by the booking service.
//
// The signature segment is never verified. Tokens arrive over HTTPS straight
// from the login endpoint and are only read for the user identity they carry.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned for any token that cannot be decoded.
var ErrMalformedToken = errors.New("malformed token")

// Header is the first token segment. Both fields must be present as strings;
// their values are not interpreted.
type Header struct {
	Alg *string `json:"alg"`
	Typ *string `json:"typ"`
}

// Claims are the identity fields carried in the payload segment. Any other
// claim in the payload is ignored.
type Claims struct {
	UserID     string           `json:"userId"`
	UserRoleID string           `json:"userRoleId"`
	ExpTime    string           `json:"expTime"`
	ExpiresAt  *jwt.NumericDate `json:"exp,omitempty"`
	IssuedAt   *jwt.NumericDate `json:"iat,omitempty"`
	NotBefore  *jwt.NumericDate `json:"nbf,omitempty"`
}

var _ jwt.Claims = (*Claims)(nil)

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return c.NotBefore, nil }
func (c *Claims) GetIssuer() (string, error) { return "", nil }
func (c *Claims) GetSubject() (string, error) { return "", nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) { return nil, nil }

// NumericUserID parses UserID, which the booking endpoints expect as a number.
func (c *Claims) NumericUserID() (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.UserID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("user id %q is not numeric: %w", c.UserID, err)
	}
	return id, nil
}

// Expired reports whether the exp claim lies before now. A missing or zero exp never expires.
func (c *Claims) Expired(now time.Time) bool {
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil || exp.Unix() == 0 {
		return false
	}
	return now.After(exp.Time)
}

// Decode splits a compact token and decodes its header and payload.
func Decode(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrMalformedToken, i+1)
		}
	}

	var header Header
	if err := decodeSegment(parts[0], &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if header.Alg == nil || header.Typ == nil {
		return nil, fmt.Errorf("%w: header lacks alg or typ", ErrMalformedToken)
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}

	return &claims, nil
}

// decodeSegment reads an unpadded base64 segment as JSON. The standard alphabet
// is tried first; the URL-safe one is accepted too since that is what JWT libraries emit.
func decodeSegment(seg string, v any) error {
	data, err := base64.RawStdEncoding.DecodeString(seg)
	if err != nil {
		var urlErr error
		data, urlErr = base64.RawURLEncoding.DecodeString(seg)
		if urlErr != nil {
			return err
		}
	}
	return json.Unmarshal(data, v)
}
