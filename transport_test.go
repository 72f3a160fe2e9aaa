package clientcache

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(config Config) *http.Client {
	logger := zerolog.Nop()
	config.Logger = &logger
	return NewClient(config)
}

func get(t *testing.T, client *http.Client, url string, header http.Header) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, values := range header {
		req.Header[name] = values
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return res, string(body)
}

func TestTransportFetchCached(t *testing.T) {
	var calls int32
	r := chi.NewRouter()
	r.Get("/fetch-cached", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=100000")
		w.Header().Set("ETag", "etag")
		w.Write([]byte(`{"cached":true}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	first, firstBody := get(t, client, srv.URL+"/fetch-cached", nil)
	second, secondBody := get(t, client, srv.URL+"/fetch-cached", nil)

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("Origin called %d times", n)
	}
	if firstBody != secondBody || secondBody != `{"cached":true}` {
		t.Fatalf("Bodies are %q and %q", firstBody, secondBody)
	}
	if cs := first.Header.Get("Cache-Status"); !strings.Contains(cs, "fwd=uri-miss") || !strings.Contains(cs, "stored") {
		t.Fatalf("First Cache-Status is %q", cs)
	}
	if cs := second.Header.Get("Cache-Status"); !strings.HasPrefix(cs, "Client-Cache; hit; ttl=") {
		t.Fatalf("Second Cache-Status is %q", cs)
	}
	if second.StatusCode != 200 || second.Header.Get("Etag") != "etag" {
		t.Fatalf("Second response is %d %v", second.StatusCode, second.Header)
	}
}

func TestTransportMaxAgeZero(t *testing.T) {
	var calls int32
	r := chi.NewRouter()
	r.Get("/max-age-zero", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=0")
		fmt.Fprintf(w, "response %d", n)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	_, first := get(t, client, srv.URL+"/max-age-zero", nil)
	_, second := get(t, client, srv.URL+"/max-age-zero", nil)

	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("Origin called %d times", n)
	}
	if first != "response 1" || second != "response 2" {
		t.Fatalf("Bodies are %q and %q", first, second)
	}
}

func TestTransportRevalidation(t *testing.T) {
	var calls, notModified int32
	r := chi.NewRouter()
	r.Get("/etag", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			atomic.AddInt32(&notModified, 1)
			w.Header().Set("Cache-Control", "max-age=100")
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Cache-Control", "max-age=0")
		w.Header().Set("ETag", `"v1"`)
		w.Write([]byte("original"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	get(t, client, srv.URL+"/etag", nil)
	res, body := get(t, client, srv.URL+"/etag", nil)
	if res.StatusCode != 200 || body != "original" {
		t.Fatalf("Revalidated response is %d %q", res.StatusCode, body)
	}
	if cs := res.Header.Get("Cache-Status"); cs != "Client-Cache; fwd=stale; fwd-status=304; stored" {
		t.Fatalf("Cache-Status is %q", cs)
	}
	_, body = get(t, client, srv.URL+"/etag", nil)
	if body != "original" {
		t.Fatalf("Body is %q", body)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("Origin called %d times", n)
	}
	if n := atomic.LoadInt32(&notModified); n != 1 {
		t.Fatalf("Origin answered 304 %d times", n)
	}
}

func TestTransportNoCacheSendsValidators(t *testing.T) {
	var lastIfNoneMatch, lastIfModifiedSince atomic.Value
	r := chi.NewRouter()
	r.Get("/no-cache", func(w http.ResponseWriter, r *http.Request) {
		lastIfNoneMatch.Store(r.Header.Get("If-None-Match"))
		lastIfModifiedSince.Store(r.Header.Get("If-Modified-Since"))
		w.Header()["EtAg"] = []string{"etag"}
		w.Header().Set("Last-Modified", "Wed, 21 Oct 2015 07:28:00 GMT")
		w.Header().Set("Cache-Control", "no-cache, max-age=100")
		w.Write([]byte("body"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	get(t, client, srv.URL+"/no-cache", nil)
	if v := lastIfNoneMatch.Load(); v != "" {
		t.Fatalf("First request carried If-None-Match %q", v)
	}
	get(t, client, srv.URL+"/no-cache", nil)
	if v := lastIfNoneMatch.Load(); v != "etag" {
		t.Fatalf("If-None-Match is %q", v)
	}
	if v := lastIfModifiedSince.Load(); v != "Wed, 21 Oct 2015 07:28:00 GMT" {
		t.Fatalf("If-Modified-Since is %q", v)
	}

	// caller-forced bypass sends no validators
	get(t, client, srv.URL+"/no-cache", http.Header{"Cache-Control": {"no-cache"}})
	if v := lastIfNoneMatch.Load(); v != "" {
		t.Fatalf("Bypassing request carried If-None-Match %q", v)
	}
}

func TestTransportNoStore(t *testing.T) {
	var calls int32
	r := chi.NewRouter()
	r.Get("/no-store", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=100, no-store")
		w.Write([]byte("secret"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	for i := 0; i < 3; i++ {
		if _, body := get(t, client, srv.URL+"/no-store", nil); body != "secret" {
			t.Fatalf("Body is %q", body)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("Origin called %d times", n)
	}
}

func TestTransportUnsafeMethods(t *testing.T) {
	var calls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Cache-Control", "max-age=100")
		fmt.Fprintf(w, "%s %s", r.Method, body)
	}
	r := chi.NewRouter()
	r.Post("/mutate", handler)
	r.Put("/mutate", handler)
	r.Patch("/mutate", handler)
	r.Delete("/mutate", handler)
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	for _, method := range []string{"POST", "PUT", "PATCH", "DELETE"} {
		for i := 0; i < 2; i++ {
			req, _ := http.NewRequest(method, srv.URL+"/mutate", strings.NewReader("payload"))
			res, err := client.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			body, _ := io.ReadAll(res.Body)
			res.Body.Close()
			if string(body) != method+" payload" {
				t.Fatalf("Body is %q", body)
			}
			if cs := res.Header.Get("Cache-Status"); cs != "Client-Cache; fwd=method; fwd-status=200" {
				t.Fatalf("Cache-Status is %q", cs)
			}
		}
	}
	if n := atomic.LoadInt32(&calls); n != 8 {
		t.Fatalf("Origin called %d times", n)
	}
}

func TestTransportErrorResponsesNotStored(t *testing.T) {
	var calls int32
	r := chi.NewRouter()
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=100")
		http.Error(w, "not here", http.StatusNotFound)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	for i := 0; i < 2; i++ {
		res, body := get(t, client, srv.URL+"/missing", nil)
		if res.StatusCode != 404 || body != "not here\n" {
			t.Fatalf("Response is %d %q", res.StatusCode, body)
		}
		if cs := res.Header.Get("Cache-Status"); cs != "Client-Cache; fwd=uri-miss; fwd-status=404" {
			t.Fatalf("Cache-Status is %q", cs)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("Origin called %d times", n)
	}
}

func TestTransportErrorPropagated(t *testing.T) {
	errBoom := errors.New("connection refused")
	logger := zerolog.Nop()
	c := New(Config{Logger: &logger})
	client := (&Transport{
		Cache: c,
		Next: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errBoom
		}),
	}).Client()

	_, err := client.Get("http://example.com/")
	if !errors.Is(err, errBoom) {
		t.Fatalf("Error is %v", err)
	}
	var stored bool
	c.cache.Keys(func(string) { stored = true })
	if stored {
		t.Fatal("Failed request resulted in a stored entry")
	}
}

func TestTransportDisabled(t *testing.T) {
	var calls int32
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Cache-Control", "max-age=100")
		w.Write([]byte("hello"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{Disabled: true})

	get(t, client, srv.URL+"/", nil)
	res, _ := get(t, client, srv.URL+"/", nil)
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("Origin called %d times", n)
	}
	if cs := res.Header.Get("Cache-Status"); cs != "Client-Cache; fwd=bypass; fwd-status=200" {
		t.Fatalf("Cache-Status is %q", cs)
	}
}

func TestTransportDoesNotModifyRequest(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=0")
		w.Header().Set("ETag", "e")
		w.Write([]byte("hello"))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	client := newTestClient(Config{})

	get(t, client, srv.URL+"/", nil)
	req, _ := http.NewRequest("GET", srv.URL+"/", nil)
	res, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if req.Header.Get("If-None-Match") != "" {
		t.Fatal("Caller's request was modified")
	}
}
