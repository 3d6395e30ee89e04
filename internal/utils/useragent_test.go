package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserAgent_Desktop(t *testing.T) {
	info := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	assert.Equal(t, "desktop", info.DeviceType)
	assert.Equal(t, "Chrome", info.Browser)
	assert.False(t, info.IsBot)
}

func TestParseUserAgent_Mobile(t *testing.T) {
	info := ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")

	assert.Equal(t, "mobile", info.DeviceType)
}

func TestParseUserAgent_Empty(t *testing.T) {
	info := ParseUserAgent("")

	assert.Equal(t, "unknown", info.DeviceType)
	assert.Equal(t, "Unknown", info.Browser)
	assert.Equal(t, "Unknown", info.OS)
}
