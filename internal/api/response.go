package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"inventory/internal/db"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type idResponse struct {
	ID int64 `json:"id"`
}

// storeError maps a repository error onto a response. what names the entity
// the request was about, for the not-found message.
func storeError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var verr *db.ValidationError
	switch {
	case errors.Is(err, db.ErrNotFound), db.IsForeignKeyViolation(err):
		jsonError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case db.IsUniqueViolation(err):
		jsonError(w, http.StatusConflict, what+" already exists")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON decodes a JSON request body into target and validates it.
// The returned error is safe to show to the client.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.New("invalid request body")
	}

	err := validate.Struct(target)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return validationMessage(verrs[0])
	}
	return err
}

func validationMessage(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: is required", fe.Field())
	case "min":
		return fmt.Errorf("%s: must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s: must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%s: failed %s validation", fe.Field(), fe.Tag())
	}
}

// pathID parses the named path value as a positive integer ID.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}
