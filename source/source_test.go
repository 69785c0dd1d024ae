package source

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAuthError(t *testing.T) {
	t.Run("detects the sentinel through wrapping", func(t *testing.T) {
		assert.True(t, IsAuthError(fmt.Errorf("reddit search r/golang: %w", ErrUnauthorized)))
	})

	t.Run("detects a 401 in the message", func(t *testing.T) {
		assert.True(t, IsAuthError(errors.New("received 401 HTTP response")))
	})

	t.Run("ignores other errors", func(t *testing.T) {
		assert.False(t, IsAuthError(nil))
		assert.False(t, IsAuthError(errors.New("connection reset by peer")))
	})
}

func TestPostText(t *testing.T) {
	assert.Equal(t, "Love it works great", Post{Title: "Love it", Body: "works great"}.Text())
	assert.Equal(t, "Love it ", Post{Title: "Love it"}.Text())
	assert.Equal(t, "just a body", Post{Body: "just a body"}.Text())
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, 20, opts.Limit)
	assert.Equal(t, 24*time.Hour, opts.Window)

	opts = Options{Limit: 5, Window: time.Hour}.withDefaults()
	assert.Equal(t, 5, opts.Limit)
	assert.Equal(t, time.Hour, opts.Window)
}
