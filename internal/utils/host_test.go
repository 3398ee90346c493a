package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHostIsStable(t *testing.T) {
	h := GetHost()
	assert.NotEmpty(t, h)
	assert.Equal(t, h, GetHost())
}

func TestToJSONString(t *testing.T) {
	assert.Equal(t, `{"category":"Electronics"}`, ToJSONString(map[string]string{"category": "Electronics"}))
	assert.Equal(t, "<marshal error>", ToJSONString(math.NaN()))
}
