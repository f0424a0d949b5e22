package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// a book update must change something
	v.RegisterStructValidation(bookPatchStructValidation, BookPatchRequest{})

	return v
}

func bookPatchStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(BookPatchRequest)

	if req.Title == nil && req.Author == nil && req.ISBN == nil && req.ISSN == nil &&
		req.Section == nil && req.Description == nil && req.Quantity == nil && req.DateAdded == nil {
		sl.ReportError(req, "BookPatchRequest", "BookPatchRequest", "non_empty_patch", "")
	}
}
