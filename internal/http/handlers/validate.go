package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hongminglow/garage-be/internal/auth"
)

const maxBodyBytes = 1 << 20

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var errInvalidJSON = errors.New("invalid JSON payload")

var passwordTooLong = fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// max counts runes; bcrypt limits bytes.
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= auth.MaxPasswordBytes
	})
	return v
}

// decode reads a JSON body of at most maxBodyBytes into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

// fieldErrors validates s and returns one message per offending json field, or nil.
func fieldErrors(v *validator.Validate, s any) map[string]string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": "invalid input"}
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, seen := out[e.Field()]; !seen {
			out[e.Field()] = describe(e)
		}
	}
	return out
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "eqfield":
		return "does not match the password"
	case "username":
		return "may only contain letters, digits and _"
	case "bcryptlen":
		return passwordTooLong
	}
	return "is invalid"
}
