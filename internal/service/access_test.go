package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filegate/filegate/internal/model"
)

type gatewayFixture struct {
	links   *memLinks
	files   *memFiles
	logs    *memLogs
	gateway *AccessGateway
}

func newGatewayFixture(t *testing.T, limit int) *gatewayFixture {
	t.Helper()

	links := newMemLinks()
	files := newMemFiles()
	logs := newMemLogs()
	limiter := NewRateLimiter(logs, limit, time.Hour, true, true)

	return &gatewayFixture{
		links:   links,
		files:   files,
		logs:    logs,
		gateway: NewAccessGateway(links, files, logs, limiter, testSecret),
	}
}

// issue seeds a link and its backing file, returning the capability pair.
func (f *gatewayFixture) issue(t *testing.T, userID int64, premium bool, expiryAt *time.Time) (string, string) {
	t.Helper()

	token := mustToken(t)
	fileID := "file-" + token[:6]

	require.NoError(t, f.files.Create(&model.File{
		FileID:      fileID,
		UploaderID:  userID,
		Name:        "video.mp4",
		MimeType:    "video/mp4",
		Size:        1024,
		StoragePath: "files/" + fileID,
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, f.links.Create(&model.Link{
		Token:     token,
		FileID:    fileID,
		UserID:    userID,
		IsPremium: premium,
		CreatedAt: time.Now(),
		ExpiryAt:  expiryAt,
	}))

	return token, DeriveKey(token, fileID, testSecret)
}

func TestVerifySuccess(t *testing.T) {
	f := newGatewayFixture(t, 10)
	token, key := f.issue(t, 42, false, nil)

	result := f.gateway.Verify(token, key, "1.2.3.4")
	require.True(t, result.OK)
	assert.Equal(t, token, result.Link.Token)
	assert.Equal(t, "video.mp4", result.File.Name)

	// Counter moved and the attempt was audited as a success
	link, err := f.links.ByToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.AccessCount)
	assert.Equal(t, 1, f.logs.successCount())
}

func TestVerifyUnknownToken(t *testing.T) {
	f := newGatewayFixture(t, 10)

	result := f.gateway.Verify("never-issued", "whatever", "1.2.3.4")
	assert.False(t, result.OK)
	assert.Equal(t, ErrorInvalidToken, result.Kind)
	assert.Equal(t, "invalid_token", f.logs.lastKind())
}

func TestVerifyExpiredTokenReadsAsInvalid(t *testing.T) {
	f := newGatewayFixture(t, 10)
	past := time.Now().Add(-time.Minute)
	token, key := f.issue(t, 42, false, &past)

	result := f.gateway.Verify(token, key, "1.2.3.4")
	assert.False(t, result.OK)
	assert.Equal(t, ErrorInvalidToken, result.Kind)
}

func TestVerifyWrongKey(t *testing.T) {
	f := newGatewayFixture(t, 10)
	token, key := f.issue(t, 42, false, nil)

	wrong := "0" + key[1:]
	if wrong == key {
		wrong = "1" + key[1:]
	}

	result := f.gateway.Verify(token, wrong, "1.2.3.4")
	assert.False(t, result.OK)
	assert.Equal(t, ErrorInvalidKey, result.Kind)

	// A rejected attempt never moves the counter
	link, err := f.links.ByToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(0), link.AccessCount)
	assert.Equal(t, 0, f.logs.successCount())
}

func TestVerifyMissingFile(t *testing.T) {
	f := newGatewayFixture(t, 10)
	token, key := f.issue(t, 42, false, nil)

	link, err := f.links.ByToken(token)
	require.NoError(t, err)
	require.NoError(t, f.files.Delete(link.FileID))

	result := f.gateway.Verify(token, key, "1.2.3.4")
	assert.False(t, result.OK)
	assert.Equal(t, ErrorFileNotFound, result.Kind)
}

func TestVerifyRateLimitBoundary(t *testing.T) {
	const limit = 10
	f := newGatewayFixture(t, limit)
	token, key := f.issue(t, 42, false, nil)

	// The first `limit` accesses pass
	for i := 0; i < limit; i++ {
		result := f.gateway.Verify(token, key, "1.2.3.4")
		require.True(t, result.OK, "access %d should be admitted", i+1)
	}

	// The next one is denied
	result := f.gateway.Verify(token, key, "1.2.3.4")
	assert.False(t, result.OK)
	assert.Equal(t, ErrorAccessDenied, result.Kind)

	// And the denial did not move the counter
	link, err := f.links.ByToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(limit), link.AccessCount)
}

func TestVerifyPremiumExemptFromRateLimit(t *testing.T) {
	f := newGatewayFixture(t, 2)
	token, key := f.issue(t, 42, true, nil)

	for i := 0; i < 20; i++ {
		result := f.gateway.Verify(token, key, "1.2.3.4")
		require.True(t, result.OK)
	}
}
