package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"storefront-catalog/internal/models"
)

// FieldViolation describe una regla incumplida por un campo
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
	Value any    `json:"value,omitempty"`
}

// ValidationError agrupa todas las violaciones encontradas, no solo la primera.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Rule))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has indica si hay una violación para el campo y la regla dados
func (e *ValidationError) Has(field, rule string) bool {
	for _, v := range e.Violations {
		if v.Field == field && v.Rule == rule {
			return true
		}
	}
	return false
}

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Reportar los campos con su nombre JSON
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct valida un payload con sus tags `validate` y devuelve un
// *ValidationError con todas las violaciones, o nil.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Violations: make([]FieldViolation, 0, len(verrs))}
	for _, fe := range verrs {
		out.Violations = append(out.Violations, FieldViolation{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return out
}

// Product valida las reglas de la entidad ya fusionada, antes de persistir.
func Product(p *models.Product) error {
	var vs []FieldViolation
	add := func(field, rule string, value any) {
		vs = append(vs, FieldViolation{Field: field, Rule: rule, Value: value})
	}

	if strings.TrimSpace(p.Name) == "" {
		add("name", "required", p.Name)
	} else if models.Slugify(p.Name) == "" {
		add("name", "slug", p.Name)
	}
	if p.Price < 0 {
		add("price", "gte", p.Price)
	}
	if p.Discount < 0 || p.Discount > 100 {
		add("discount", "range", p.Discount)
	}
	if p.Stock < 0 {
		add("stock", "gte", p.Stock)
	}
	if p.Category.IsZero() {
		add("category", "required", p.Category.Hex())
	}
	if p.Vendor.IsZero() {
		add("vendor", "required", p.Vendor.Hex())
	}
	if p.Ratings.Average < 0 || p.Ratings.Average > 5 {
		add("ratings.average", "range", p.Ratings.Average)
	}
	if p.PublishedAt != nil && p.ExpiresAt != nil && p.ExpiresAt.Before(*p.PublishedAt) {
		add("expiresAt", "gtefield", p.ExpiresAt)
	}

	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}

// IsValidationError indica si err es (o envuelve) un *ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// Merge combina las violaciones de varias etapas en un único *ValidationError.
// Un campo que ya tiene violación en una etapa anterior no se repite, para que
// un mismo valor inválido no se reporte dos veces con reglas distintas.
// Un error que no sea de validación se devuelve tal cual.
func Merge(errs ...error) error {
	var (
		out  []FieldViolation
		seen = map[string]bool{}
	)
	for _, err := range errs {
		if err == nil {
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		stage := map[string]bool{}
		for _, v := range verr.Violations {
			if seen[v.Field] {
				continue
			}
			stage[v.Field] = true
			out = append(out, v)
		}
		for f := range stage {
			seen[f] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return &ValidationError{Violations: out}
}

// fieldPath quita el nombre del struct raíz: "ProductInput.images[0].url" → "images[0].url"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
