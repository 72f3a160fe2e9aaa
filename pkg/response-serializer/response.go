package serializer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// StoredResponse is the part of a cache entry that is kept in HTTP/1.1 wire format.
type StoredResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ResponseToBytes returns the HTTP/1.1 representation of the response.
// The Content-Length field always reflects the length of the body.
func ResponseToBytes(sRes StoredResponse) ([]byte, error) {
	res := &http.Response{
		StatusCode:    sRes.StatusCode,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        sRes.Header,
		Body:          io.NopCloser(bytes.NewReader(sRes.Body)),
		ContentLength: int64(len(sRes.Body)),
	}
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	return responseToBytes(res)
}

// BytesToResponse reads a response written by ResponseToBytes.
func BytesToResponse(b []byte) (StoredResponse, error) {
	res, err := bytesToResponse(b)
	if err != nil {
		return StoredResponse{}, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return StoredResponse{}, fmt.Errorf("reading stored body: %w", err)
	}
	return StoredResponse{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

// bytesToResponse converts a byte slice to a http.Response.
func bytesToResponse(b []byte) (*http.Response, error) {
	res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(b)), nil)
	if err != nil {
		log.Warn().Err(err).Int("length", len(b)).Msg("Could not read stored response")
		return nil, err
	}
	return res, nil
}

// responseToBytes converts a response to a byte slice.
// It returns the HTTP/1.1 representation of the response
func responseToBytes(res *http.Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := res.Write(buf); err != nil {
		return nil, fmt.Errorf("writing response: %w", err)
	}
	return buf.Bytes(), nil
}
