package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CampusStoresCanada/csc-institution-management/internal/domain"
)

func TestAuthCode_Roundtrip(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := codecAt(t, "", minted)

	raw := c.IssueAuthCode("contact-9", "jane@university.ca", "Jane Doe", "Example University", domain.RolePrimary)
	code, err := c.DecodeAuthCode(raw)
	require.NoError(t, err)
	assert.Equal(t, "contact-9", code.UserID)
	assert.Equal(t, "Example University", code.Organization)
	assert.Equal(t, domain.RolePrimary, code.Role)
	assert.Equal(t, minted.UnixMilli(), code.Timestamp)
}

func TestAuthCode_ExchangeWindow(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := codecAt(t, "", minted)
	raw := c.IssueAuthCode("contact-9", "jane@university.ca", "Jane Doe", "Example University", domain.RoleMember)

	// 4 minutes in: still exchangeable.
	c.now = func() time.Time { return minted.Add(4 * time.Minute) }
	_, err := c.DecodeAuthCode(raw)
	assert.NoError(t, err)

	// 6 minutes in: past the window.
	c.now = func() time.Time { return minted.Add(6 * time.Minute) }
	_, err = c.DecodeAuthCode(raw)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthCode_Malformed(t *testing.T) {
	c := NewCodec("")
	_, err := c.DecodeAuthCode("garbage!!")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssueAccessToken_OneHourArtifact(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := codecAt(t, "", minted)
	raw := c.IssueAuthCode("contact-9", "jane@university.ca", "Jane Doe", "Example University", domain.RolePrimary)
	code, err := c.DecodeAuthCode(raw)
	require.NoError(t, err)

	tok, claims := c.IssueAccessToken(code)
	assert.Equal(t, "csc-auth", claims.Iss)
	assert.Equal(t, "circle.so", claims.Aud)
	assert.Equal(t, "contact-9", claims.Sub)
	assert.Equal(t, minted.Unix(), claims.Iat)
	assert.Equal(t, minted.Add(time.Hour).Unix(), claims.Exp)

	decoded, err := c.DecodeAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, claims, decoded)
}

func TestDecodeAccessToken_Expired(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := codecAt(t, "", minted)
	raw := c.IssueAuthCode("contact-9", "jane@university.ca", "Jane Doe", "Example University", domain.RoleMember)
	code, err := c.DecodeAuthCode(raw)
	require.NoError(t, err)
	tok, _ := c.IssueAccessToken(code)

	c.now = func() time.Time { return minted.Add(time.Hour + time.Second) }
	_, err = c.DecodeAccessToken(tok)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}
