package main

import (
	"net/http"

	"github.com/devphaseX/cqpay-api.git/internal/store/modelfilter"
	"github.com/go-chi/chi/v5"
)

func (app *application) readStringID(r *http.Request, param string) string {
	return chi.URLParam(r, param)
}

// readFilters decodes query filters into f and validates them.
func (app *application) readFilters(r *http.Request, f modelfilter.Filterable) error {
	if err := f.ParseFilters(r); err != nil {
		return err
	}

	if errs := validate.Struct(f); errs != nil {
		return errs
	}

	return nil
}
