package httpx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DrainDefaults(t *testing.T) {
	assert.Equal(t, defaultDrain, New("127.0.0.1:0", http.NewServeMux(), 0).drain)
	assert.Equal(t, defaultDrain, New("127.0.0.1:0", http.NewServeMux(), -time.Second).drain)
	assert.Equal(t, 2*time.Second, New("127.0.0.1:0", http.NewServeMux(), 2*time.Second).drain)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := New("127.0.0.1:0", http.NewServeMux(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
