package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/geocoder89/userhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json tag names ("email") instead
// of Go field names ("Email").
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return sf.Name
			}
			return name
		})
	})
}

// BindJSON decodes and validates the body into out. On failure it writes the
// error response and returns false.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	useJSONFieldNames()

	err := ctx.ShouldBindJSON(out)

	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
		return false
	}

	RespondBadRequest(ctx, "Invalid request body", parseBindError(err))

	return false
}

func parseBindError(err error) interface{} {
	// validator errors (struct bind tags)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   fieldError.Field(),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}
	}

	if errors.Is(err, io.EOF) {
		return gin.H{"json": "empty_body"}
	}

	// in the event of bad json

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return gin.H{
			"json": "invalid_json_syntax",
		}
	}

	// in the event of a type mismatch

	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{
				{
					Field:   field,
					Rule:    "type",
					Message: fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String()),
				},
			},
		}
	}

	// final fallback if the error could not be deciphered
	return gin.H{"reason": "unreadable request body"}
}

// passwordTooLong writes a 400 when pw exceeds bcrypt's byte limit. The
// max=72 tag counts runes, so multibyte passwords need this extra check.
func passwordTooLong(ctx *gin.Context, pw string) bool {
	if len(pw) <= security.MaxPasswordBytes {
		return false
	}

	param := strconv.Itoa(security.MaxPasswordBytes)
	RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
		Field:   "password",
		Rule:    "max_bytes",
		Param:   param,
		Message: "must be at most " + param + " bytes",
	}}})
	return true
}

// fieldRequired builds the details for a field that was present but blank.
func fieldRequired(field string) interface{} {
	return gin.H{"fields": []FieldError{{
		Field:   field,
		Rule:    "required",
		Message: validationMessage("required", ""),
	}}}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
