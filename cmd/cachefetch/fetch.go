package main

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

type fetchResult struct {
	URL         string
	StatusCode  int
	CacheStatus string
	Bytes       int
	Err         error
}

// fetchAll gets every URL `repeat` times in order, logging how the cache handled each request.
// Failed requests are logged and reported in the results.
func fetchAll(client *http.Client, urls []string, repeat int, logger zerolog.Logger) []fetchResult {
	results := make([]fetchResult, 0, len(urls)*repeat)
	for i := 0; i < repeat; i++ {
		for _, url := range urls {
			result := fetch(client, url)
			if result.Err != nil {
				logger.Error().Err(result.Err).Str("url", url).Msg("Request failed")
			} else {
				logger.Info().
					Str("url", url).
					Int("status", result.StatusCode).
					Str("cacheStatus", result.CacheStatus).
					Int("bytes", result.Bytes).
					Msg("Fetched")
			}
			results = append(results, result)
		}
	}
	return results
}

func fetch(client *http.Client, url string) fetchResult {
	result := fetchResult{URL: url}
	res, err := client.Get(url)
	if err != nil {
		result.Err = err
		return result
	}
	defer res.Body.Close()
	n, err := io.Copy(io.Discard, res.Body)
	result.StatusCode = res.StatusCode
	result.CacheStatus = res.Header.Get("Cache-Status")
	result.Bytes = int(n)
	result.Err = err
	return result
}
