package httpapi

import (
	"net/http"
	"strconv"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
)

func intParam(q map[string][]string, name string, fallback int) (int, error) {
	vs, ok := q[name]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(vs[0])
	if err != nil {
		return 0, apperr.New(apperr.KindValidation, name+" must be an integer")
	}
	return n, nil
}

func speedsParam(r *http.Request) ([]model.Speed, error) {
	raw := r.URL.Query()["speeds[]"]
	if len(raw) == 0 {
		raw = r.URL.Query()["speeds"]
	}
	out := make([]model.Speed, 0, len(raw))
	for _, s := range raw {
		speed, ok := model.ParseSpeed(s)
		if !ok {
			return nil, apperr.New(apperr.KindValidation, "unknown speed "+s)
		}
		out = append(out, speed)
	}
	return out, nil
}

func ratingsParam(r *http.Request) ([]model.RatingBand, error) {
	raw := r.URL.Query()["ratings[]"]
	if len(raw) == 0 {
		raw = r.URL.Query()["ratings"]
	}
	out := make([]model.RatingBand, 0, len(raw))
	for _, s := range raw {
		band, ok := model.ParseRatingBand(s)
		if !ok {
			return nil, apperr.New(apperr.KindValidation, "unknown rating band "+s)
		}
		out = append(out, band)
	}
	return out, nil
}
