package handlers

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func validateOrder(o OrderRequest) []ValidationError {
	errs := []ValidationError{}
	if strings.TrimSpace(o.Title) == "" {
		errs = append(errs, ValidationError{Field: "Title", Description: "Title is required"})
	}
	if o.Deadline.IsZero() {
		errs = append(errs, ValidationError{Field: "Deadline", Description: "Deadline is required"})
	}
	for i, p := range o.Products {
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, ValidationError{
				Field:       fmt.Sprintf("Products[%d].Title", i),
				Description: "Product title is required",
			})
		}
		if p.Price <= 0 {
			errs = append(errs, ValidationError{
				Field:       fmt.Sprintf("Products[%d].Price", i),
				Description: "Product price must be greater than zero",
			})
		}
	}
	return errs
}
