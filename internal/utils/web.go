package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"

	internal_errors "github.com/atlas-forum/atlas/internal/errors"
	"github.com/atlas-forum/atlas/internal/logger"

	"github.com/go-playground/validator/v10"
)

// maxBodySize bounds request bodies read by Decode and DecodeValidate.
const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// WriteErrorAndStatusCode maps err to a response. Errors without an http
// meaning become a generic 500 and are logged, their message is not sent.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var v *internal_errors.ValidationError
	if errors.As(err, &v) {
		WriteJSON(w, http.StatusBadRequest, map[string]any{"errors": v.Fields})
		return
	}
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		http.Error(w, e.Message, e.StatusCode)
		return
	}
	logger.Log.Error("request failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// GetIP returns the client IP from RemoteAddr. Forwarding headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	return ip, nil
}

func Decode(r io.Reader, body any) error {
	if err := json.NewDecoder(io.LimitReader(r, maxBodySize)).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return internal_errors.BadRequest("Body is invalid json")
	}
	return nil
}

// DecodeValidate decodes a json body and reports every failed field.
func DecodeValidate(r io.Reader, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	return Validate(body)
}

func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal_errors.BadRequest("Invalid request")
	}
	v := internal_errors.NewValidationError()
	for _, fe := range fieldErrs {
		v.Add(fe.Field(), reason(fe))
	}
	return v
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
