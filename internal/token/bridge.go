package token

import (
	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

// AuthCode is the payload of a Circle.so bridge authorization code: a
// short-lived encoding of an already-verified principal, exchanged exactly
// once for an access token. Codes older than AuthCodeTTL are rejected.
type AuthCode struct {
	UserID       string      `json:"userId"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Organization string      `json:"organization"`
	Role         domain.Role `json:"role"`
	Timestamp    int64       `json:"timestamp"`
}

// AccessClaims is the payload of a bridge access token, shaped the way
// Circle.so expects an OAuth access token to decode.
type AccessClaims struct {
	Sub          string      `json:"sub"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Organization string      `json:"organization"`
	Role         domain.Role `json:"role"`
	Iss          string      `json:"iss"`
	Aud          string      `json:"aud"`
	Iat          int64       `json:"iat"`
	Exp          int64       `json:"exp"`
}

// IssueAuthCode mints an authorization code for a directory-verified
// principal.
func (c *Codec) IssueAuthCode(userID, email, name, organization string, role domain.Role) string {
	code := AuthCode{
		UserID:       userID,
		Email:        email,
		Name:         name,
		Organization: organization,
		Role:         role,
		Timestamp:    c.now().UnixMilli(),
	}
	return c.encode(code)
}

// DecodeAuthCode validates an authorization code. Malformed codes fail with
// ErrInvalidToken; codes past the exchange window fail with
// ErrSessionExpired.
func (c *Codec) DecodeAuthCode(raw string) (AuthCode, error) {
	var code AuthCode
	if err := c.decode(raw, &code); err != nil {
		return AuthCode{}, err
	}
	if c.now().UnixMilli()-code.Timestamp > AuthCodeTTL.Milliseconds() {
		return AuthCode{}, domain.ErrSessionExpired
	}
	return code, nil
}

// IssueAccessToken exchanges a decoded authorization code for a one-hour
// access token.
func (c *Codec) IssueAccessToken(code AuthCode) (string, AccessClaims) {
	now := c.now()
	claims := AccessClaims{
		Sub:          code.UserID,
		Email:        code.Email,
		Name:         code.Name,
		Organization: code.Organization,
		Role:         code.Role,
		Iss:          "csc-auth",
		Aud:          "circle.so",
		Iat:          now.Unix(),
		Exp:          now.Add(AccessTokenTTL).Unix(),
	}
	return c.encode(claims), claims
}

// DecodeAccessToken validates a bridge access token. Exp is in seconds,
// unlike the millisecond timestamps on management sessions.
func (c *Codec) DecodeAccessToken(raw string) (AccessClaims, error) {
	var claims AccessClaims
	if err := c.decode(raw, &claims); err != nil {
		return AccessClaims{}, err
	}
	if claims.Exp != 0 && c.now().Unix() > claims.Exp {
		return AccessClaims{}, domain.ErrSessionExpired
	}
	return claims, nil
}
