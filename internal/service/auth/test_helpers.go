package auth

import "time"

// NewTestTokenService creates a TokenService with an injectable time source.
// Only for use in tests.
func NewTestTokenService(
	accessSecret, refreshSecret string,
	accessLifetime, refreshLifetime time.Duration,
	timeFunc func() time.Time,
) TokenService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacTokenService{
		accessKey:       []byte(accessSecret),
		refreshKey:      []byte(refreshSecret),
		accessLifetime:  accessLifetime,
		refreshLifetime: refreshLifetime,
		timeFunc:        timeFunc,
		clockSkew:       0,
	}
}
