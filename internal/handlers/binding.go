package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	ginbinding "github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// decodeEnvelope reads either {"key": {...}} or the flat object into obj.
// The body is restored so later reads still see it.
func decodeEnvelope(c *gin.Context, key string, obj any) error {
	if c.Request.Body == nil {
		return io.ErrUnexpectedEOF
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return err
	}
	if inner, ok := envelope[key]; ok {
		if len(bytes.TrimSpace(inner)) == 0 || bytes.TrimSpace(inner)[0] != '{' {
			return fmt.Errorf("%q must be an object", key)
		}
		body = inner
	}
	return json.Unmarshal(body, obj)
}

// bindJSON binds the body into obj and writes a 422 with field errors on failure
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		validationFailed(c, err)
		return false
	}
	return true
}

// bindNested binds {"key": {...}} or a flat body, then validates it
func bindNested(c *gin.Context, key string, obj any) bool {
	if err := decodeEnvelope(c, key, obj); err != nil {
		respondError(c, http.StatusBadRequest, "Malformed request body")
		return false
	}
	if err := ginbinding.Validator.ValidateStruct(obj); err != nil {
		validationFailed(c, err)
		return false
	}
	return true
}

func validationFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := fieldName(fe)
			fields[name] = append(fields[name], validationMessage(fe))
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Message: "Validation failed",
			Errors:  fields,
		})
		return
	}
	respondError(c, http.StatusBadRequest, "Malformed request body")
}

func init() {
	// Report fields by their JSON names
	if v, ok := ginbinding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// fieldName turns a namespace like CreateMixDesignInput.compositions[0].unit_cost
// into compositions.0.unit_cost
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.NewReplacer("[", ".", "]", "").Replace(ns)
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return "is required with " + snakeCase(fe.Param())
	case "email":
		return "must be a valid e-mail address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eqfield":
		return "must match " + snakeCase(fe.Param())
	case "nefield":
		return "must differ from " + snakeCase(fe.Param())
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}
