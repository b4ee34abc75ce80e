package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/kiyora/animehub/pkg/http/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(`{}`)),
		Header:     http.Header{},
	}
}

func rateLimitedResponse(retryAfter string) *http.Response {
	h := http.Header{}
	if retryAfter != "" {
		h.Set("Retry-After", retryAfter)
	}
	return &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(bytes.NewBufferString(``)),
		Header:     h,
	}
}

func TestDo_Success(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClient := mocks.NewMockHTTPClient(ctrl)
	mockClient.EXPECT().Do(gomock.Any()).Return(okResponse(), nil).Times(1)

	c := NewRateLimitedHTTPClient(WithHTTPClient(mockClient))

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_RetriesOn429(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClient := mocks.NewMockHTTPClient(ctrl)
	gomock.InOrder(
		mockClient.EXPECT().Do(gomock.Any()).Return(rateLimitedResponse("0"), nil),
		mockClient.EXPECT().Do(gomock.Any()).Return(okResponse(), nil),
	)

	c := NewRateLimitedHTTPClient(
		WithHTTPClient(mockClient),
		WithBaseBackoff(time.Millisecond),
	)

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClient := mocks.NewMockHTTPClient(ctrl)
	mockClient.EXPECT().Do(gomock.Any()).Return(rateLimitedResponse("0"), nil).Times(2)

	c := NewRateLimitedHTTPClient(
		WithHTTPClient(mockClient),
		WithMaxRetries(2),
		WithBaseBackoff(time.Millisecond),
	)

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.Error(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestDo_TransportError(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockClient := mocks.NewMockHTTPClient(ctrl)
	mockClient.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused")).Times(1)

	c := NewRateLimitedHTTPClient(WithHTTPClient(mockClient))

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	resp, err := c.Do(req)
	require.Error(t, err)
	assert.Nil(t, resp)
}
