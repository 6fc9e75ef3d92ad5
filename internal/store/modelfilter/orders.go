package modelfilter

import (
	"net/http"

	"github.com/go-playground/form/v4"
)

var decoder = form.NewDecoder()

type GetOrdersFilter struct {
	Status    string `form:"status" validate:"omitempty,oneof=pending processing on-hold cancelled refunded"`
	Reference string `form:"reference" validate:"omitempty,max=64"`
}

func (f *GetOrdersFilter) ParseFilters(r *http.Request) error {
	return decoder.Decode(f, r.URL.Query())
}
