package api

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Google Books volume IDs are short URL-safe tokens.
var bookIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// registerValidations installs custom binding validators on gin's shared
// validator engine. Safe to call more than once.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("bookid", func(fl validator.FieldLevel) bool {
		return bookIDPattern.MatchString(fl.Field().String())
	})
}
