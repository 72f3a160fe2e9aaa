// Package clientcache is a private HTTP cache for clients.
//
// HttpCache decides before each request whether a stored response can be used,
// and after each response whether to store it. Transport wires it into net/http:
//
//	client := clientcache.NewClient(clientcache.Config{})
//	res, err := client.Get("https://example.com/")
//
// Only GET requests take part in caching.
package clientcache
