package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/airmouse/internal/capture"
)

func TestStreamHandler_ServesPreviewFrames(t *testing.T) {
	preview := capture.NewPreview()
	preview.Set([]byte("jpeg-1"))

	ts := httptest.NewServer(NewStreamHandler(preview))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "multipart/x-mixed-replace; boundary=frame", resp.Header.Get("Content-Type"))
	assert.True(t, preview.Watching())

	r := bufio.NewReader(resp.Body)
	readPart := func() string {
		var length int
		for {
			line, err := r.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "Content-Length:") {
				n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:")))
				require.NoError(t, err)
				length = n
			}
			if line == "" && length > 0 {
				break
			}
		}
		body := make([]byte, length)
		_, err := io.ReadFull(r, body)
		require.NoError(t, err)
		return string(body)
	}

	assert.Equal(t, "jpeg-1", readPart())

	preview.Set([]byte("jpeg-two"))
	assert.Equal(t, "jpeg-two", readPart())

	cancel()
	require.Eventually(t, func() bool { return !preview.Watching() }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(capture.NewPreview()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
