package v1

import (
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads and validates the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return domain.NewValidationError("", "request body is empty")
		}
		return domain.NewValidationError("", "invalid JSON body")
	}
	return validateStruct(dst)
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
		return domain.NewValidationError(field, fmt.Sprintf("failed %q validation", fe.Tag()))
	}
	return domain.NewValidationError("", err.Error())
}

func pathID(r *http.Request, name string) (int64, error) {
	id, ok := utils.ParseID(r.PathValue(name))
	if !ok {
		return 0, domain.NewValidationError(name, "invalid id")
	}
	return id, nil
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	idx := utils.ParseInt(raw, -1)
	if idx < 0 {
		return 0, domain.NewValidationError("index", fmt.Sprintf("invalid index %q", raw))
	}
	return idx, nil
}
