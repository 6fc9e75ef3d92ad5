package modelfilter

import "net/http"

// Filterable is implemented by list filters decoded from the query string.
type Filterable interface {
	ParseFilters(r *http.Request) error
}
