package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/freshproduce/marketplace/internal/core/domain"
	"github.com/freshproduce/marketplace/internal/pkg/validation"
)

// echoValidator adapts validation.Validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validation.Validator) echo.Validator {
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}

type pageQuery struct {
	Page  string `query:"page"`
	Limit string `query:"limit"`
}

// parsePage reads ?page= and ?limit=. Absent values take the defaults; present
// values must be integers ≥ 1. Limits above the maximum are capped.
func parsePage(c echo.Context) (domain.Page, error) {
	var q pageQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return domain.Page{}, domain.ValidationError("invalid pagination parameters")
	}

	number, err := queryInt("page", q.Page, domain.DefaultPage)
	if err != nil {
		return domain.Page{}, err
	}
	limit, err := queryInt("limit", q.Limit, domain.DefaultLimit)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(number, limit)
}

func queryInt(name, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ValidationError(name + " must be an integer")
	}
	return n, nil
}
