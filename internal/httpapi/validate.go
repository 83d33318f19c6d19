package httpapi

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
)

// validate is shared across requests: the package docs for
// go-playground/validator note a single *Validator caches struct
// metadata, so construction is one-time, matching the teacher's own
// package-level var validate pattern (internal/server/http/validator.go
// in the lixenwraith-chess example this is adapted from, which is
// Fiber-specific; this adaptation calls validate.Struct directly from a
// plain net/http handler instead of a body-parsing middleware).
var validate = validator.New()

// masterQueryParams binds and validates GET /master's query string.
type masterQueryParams struct {
	FEN      string `validate:"required"`
	Moves    int
	TopGames int
}

// lichessQueryParams binds and validates GET /lichess's query string.
type lichessQueryParams struct {
	FEN         string `validate:"required"`
	Variant     string `validate:"required"`
	Moves       int
	TopGames    int
	RecentGames int
}

// validateStruct runs v through the shared validator, translating any
// validator.ValidationErrors into a human-readable apperr.KindValidation,
// the way lixenwraith-chess's validationMiddleware renders its Details
// string from err.Tag()/err.Field()/err.Param().
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}

	var details strings.Builder
	for _, fe := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch fe.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return apperr.New(apperr.KindValidation, details.String())
}
