package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/always-cache/clientcache/cache"
	responsetransformer "github.com/always-cache/clientcache/pkg/response-transformer"
)

type Config struct {
	// Name of the cache in the Cache-Status header.
	Name string `yaml:"name"`
	// Disable caching, every request goes to the network.
	Disabled bool `yaml:"disabled"`
	// Store is either "memory" or "sqlite".
	Store                string                    `yaml:"store"`
	CacheableStatusCodes []int                     `yaml:"cacheableStatusCodes"`
	URLs                 []string                  `yaml:"urls"`
	Rules                responsetransformer.Rules `yaml:"rules"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	if filename == "" {
		return config, nil
	}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

// newStore creates the cache store of the given kind.
// The returned function releases the store.
func newStore(kind string) (cache.CacheProvider, func(), error) {
	switch kind {
	case "", "memory":
		return cache.NewMemCache(), func() {}, nil
	case "sqlite":
		store, err := cache.NewSQLiteCache()
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("Unknown store %q", kind)
}
