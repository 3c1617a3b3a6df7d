package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, "admin", Actor{Username: " admin "}.Name())
	assert.Equal(t, System, Actor{}.Name())
	assert.True(t, Actor{Username: "  "}.IsSystem())
	assert.False(t, Actor{Username: "admin"}.IsSystem())
}
