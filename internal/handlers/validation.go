package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bookstore/internal/models"
)

var registerOnce sync.Once

// registerValidators adds the bookstore tags to gin's binding validator.
//
//	bookcategory  one of the fixed book categories
//	bookisbn      1 to 20 characters of digits, hyphens and a trailing X
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			log.Printf("[WARN] validators: gin binding engine is not validator/v10, custom tags unavailable")
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		if err := v.RegisterValidation("bookcategory", validateCategory); err != nil {
			log.Fatalf("register bookcategory validator: %v", err)
		}
		if err := v.RegisterValidation("bookisbn", validateISBN); err != nil {
			log.Fatalf("register bookisbn validator: %v", err)
		}
	})
}

// jsonFieldName makes validation errors name fields the way clients send them.
func jsonFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validateCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

func validateISBN(fl validator.FieldLevel) bool {
	isbn := strings.TrimSpace(fl.Field().String())
	if isbn == "" || len(isbn) > 20 {
		return false
	}
	for i, r := range isbn {
		switch {
		case r >= '0' && r <= '9', r == '-':
		case (r == 'X' || r == 'x') && i == len(isbn)-1:
		default:
			return false
		}
	}
	return true
}

// bindingMessage turns a bind failure into the message shown to the user.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", field))
		case "bookcategory":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", field, categoryList()))
		case "bookisbn":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid ISBN", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func categoryList() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
