package ports

import "net/http"

// HTTPClient abstracts HTTP operations so the one-shot poster can be
// exercised against a fake transport. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
