package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleClientRecognize(t *testing.T) {
	var got paddleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"results":[[{"text":"Statement of Remuneration Paid","confidence":0.9},{"text":"14 52,000.00","confidence":0.7}]]}`))
	}))
	defer srv.Close()

	c := NewPaddleClient(srv.URL, time.Second, nil)
	res, err := c.Recognize(context.Background(), []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "Statement of Remuneration Paid\n14 52,000.00\n", res.Text)
	assert.InDelta(t, 80.0, res.Confidence, 0.001)
	require.Len(t, got.Images, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("png-bytes")), got.Images[0])
}

func TestPaddleClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			_, _ = w.Write([]byte(`{"results":[]}`))
		default:
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	_, err := NewPaddleClient(srv.URL+"/fail", time.Second, nil).Recognize(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	_, err = NewPaddleClient(srv.URL+"/empty", time.Second, nil).Recognize(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestPaddleClientDisabled(t *testing.T) {
	c := NewPaddleClient("", time.Second, nil)
	assert.False(t, c.Enabled())
	_, err := c.Recognize(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrRemoteOCRDisabled)
}
