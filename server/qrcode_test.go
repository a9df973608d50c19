package main

import (
	"bytes"
	"crypto/tls"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/qr", nil)
	r.Host = "192.168.1.5:3001"
	assert.Equal(t, "http://192.168.1.5:3001/", joinURL("", r))
	assert.Equal(t, "https://tanks.example/", joinURL("https://tanks.example/", r))

	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://192.168.1.5:3001/", joinURL("", r))
}

func TestQRHandlerServesPNG(t *testing.T) {
	rec := httptest.NewRecorder()
	QRHandler("")(rec, httptest.NewRequest(http.MethodGet, "/qr", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, qrSize, img.Bounds().Dx())
}
