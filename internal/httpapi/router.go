// Package httpapi is the HTTP surface spec §6 describes: JSON request
// parsing/response shaping and routing are explicitly out of scope for
// the core (spec §1), so this package is the thin external collaborator
// that turns query-string parameters into internal/query.Filter calls
// and internal/importer PGN text.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/pprof"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lichess-org/lila-openingexplorer/internal/apperr"
	"github.com/lichess-org/lila-openingexplorer/internal/cache"
	"github.com/lichess-org/lila-openingexplorer/internal/eco"
	"github.com/lichess-org/lila-openingexplorer/internal/importer"
	"github.com/lichess-org/lila-openingexplorer/internal/model"
	"github.com/lichess-org/lila-openingexplorer/internal/query"
	"github.com/lichess-org/lila-openingexplorer/internal/rules"
	"github.com/lichess-org/lila-openingexplorer/internal/store"
)

// Options carries the handler behavior spec §6's configuration section
// assigns to the HTTP layer rather than the core: the response cache's
// move-number bypass threshold and the CORS toggle.
type Options struct {
	CORSEnabled              bool
	CacheMoveNumberThreshold int
}

// Handler wires the core collaborators (stores, query, importer) to the
// HTTP surface.
type Handler struct {
	databases       *store.Databases
	ecoDB           *eco.Database
	cache           *cache.Cache
	masterImporter  *importer.MasterImporter
	lichessImporter *importer.LichessImporter
	opts            Options
	log             zerolog.Logger
}

// NewRouter builds the full HTTP handler: route registration, the
// RequestID/AccessLog/CORS middleware chain, and the pprof debug
// endpoints the teacher also exposes.
func NewRouter(log zerolog.Logger, databases *store.Databases, ecoDB *eco.Database, respCache *cache.Cache, masterImporter *importer.MasterImporter, lichessImporter *importer.LichessImporter, opts Options) http.Handler {
	h := &Handler{
		databases:       databases,
		ecoDB:           ecoDB,
		cache:           respCache,
		masterImporter:  masterImporter,
		lichessImporter: lichessImporter,
		opts:            opts,
		log:             log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.health)
	mux.HandleFunc("/readyz", h.health)
	mux.HandleFunc("GET /master", h.masterQuery)
	mux.HandleFunc("GET /master/pgn/{id}", h.masterPgn)
	mux.HandleFunc("PUT /master", h.masterImport)
	mux.HandleFunc("DELETE /master/{id}", h.masterDelete)
	mux.HandleFunc("GET /lichess", h.lichessQuery)
	mux.HandleFunc("PUT /lichess", h.lichessImport)
	mux.HandleFunc("GET /stats", h.stats)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	var handler http.Handler = mux
	if opts.CORSEnabled {
		handler = cors(handler)
	}
	return RequestID(AccessLog(log, handler))
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	s := h.databases.Stats()
	resp := StatsResponse{
		MasterPositions:  s.MasterPositions,
		MasterGames:      s.MasterGames,
		LichessGames:     s.LichessGames,
		LichessPositions: make(map[string]uint64, len(s.LichessPositions)),
	}
	for variant, n := range s.LichessPositions {
		resp.LichessPositions[variant.String()] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// masterQuery handles GET /master.
func (h *Handler) masterQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fen := q.Get("fen")
	moves, err := intParam(q, "moves", 12)
	if err != nil {
		writeError(w, err)
		return
	}
	topGames, err := intParam(q, "topGames", 4)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateStruct(masterQueryParams{FEN: fen, Moves: moves, TopGames: topGames}); err != nil {
		writeError(w, err)
		return
	}

	cacheKey := "master:" + r.URL.String()
	if h.cache != nil && belowCacheThreshold(fen, h.opts.CacheMoveNumberThreshold) {
		if cached, ok := h.cache.Get(cacheKey); ok {
			writeRaw(w, http.StatusOK, cached)
			return
		}
	}

	situation, err := rules.NewGameFromFEN(model.VariantStandard, fen)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "invalid fen", err))
		return
	}

	filter := query.Filter{MaxMoves: moves, TopGames: topGames}
	result, err := query.Master(situation, h.databases.Master, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	var opening *eco.Opening
	if h.ecoDB != nil {
		opening = h.ecoDB.LookupSituation(situation)
	}
	body, err := json.Marshal(toQueryResponse(result, opening, nil))
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUnknown, "encode response", err))
		return
	}
	if h.cache != nil && belowCacheThreshold(fen, h.opts.CacheMoveNumberThreshold) {
		h.cache.Put(cacheKey, body)
	}
	writeRaw(w, http.StatusOK, body)
}

// masterPgn handles GET /master/pgn/{id}.
func (h *Handler) masterPgn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	text, err := h.databases.MasterPgn.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

// masterImport handles PUT /master: body is a single PGN game's text.
func (h *Handler) masterImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "read request body", err))
		return
	}
	if err := h.masterImporter.Import(string(body)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": true})
}

// masterDelete handles DELETE /master/{id}.
func (h *Handler) masterDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.masterImporter.Retract(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// lichessQuery handles GET /lichess.
func (h *Handler) lichessQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fen := q.Get("fen")
	variantParam := q.Get("variant")
	if variantParam == "" {
		variantParam = "chess"
	}
	moves, err := intParam(q, "moves", 12)
	if err != nil {
		writeError(w, err)
		return
	}
	topGames, err := intParam(q, "topGames", 4)
	if err != nil {
		writeError(w, err)
		return
	}
	recentGames, err := intParam(q, "recentGames", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := validateStruct(lichessQueryParams{FEN: fen, Variant: variantParam, Moves: moves, TopGames: topGames, RecentGames: recentGames}); err != nil {
		writeError(w, err)
		return
	}

	variant, ok := model.ParseVariant(variantParam)
	if !ok {
		writeError(w, apperr.New(apperr.KindValidation, "unknown variant "+variantParam))
		return
	}
	entryStore, ok := h.databases.Lichess[variant]
	if !ok {
		writeError(w, apperr.New(apperr.KindValidation, "variant not served "+variantParam))
		return
	}
	speeds, err := speedsParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ratings, err := ratingsParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cacheKey := "lichess:" + r.URL.String()
	if h.cache != nil && belowCacheThreshold(fen, h.opts.CacheMoveNumberThreshold) {
		if cached, ok := h.cache.Get(cacheKey); ok {
			writeRaw(w, http.StatusOK, cached)
			return
		}
	}

	situation, err := rules.NewGameFromFEN(variant, fen)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "invalid fen", err))
		return
	}

	filter := query.Filter{
		RatingBands: ratings,
		Speeds:      speeds,
		MaxMoves:    moves,
		TopGames:    topGames,
		RecentGames: recentGames,
	}
	result, err := query.Lichess(situation, entryStore, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	var opening *eco.Opening
	if h.ecoDB != nil && variant == model.VariantStandard {
		opening = h.ecoDB.LookupSituation(situation)
	}
	lookup := func(gameID string) (model.GameInfo, bool) {
		info, err := h.databases.GameInfo.Get(gameID)
		if err != nil {
			return model.GameInfo{}, false
		}
		return info, true
	}
	body, err := json.Marshal(toQueryResponse(result, opening, lookup))
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindUnknown, "encode response", err))
		return
	}
	if h.cache != nil && belowCacheThreshold(fen, h.opts.CacheMoveNumberThreshold) {
		h.cache.Put(cacheKey, body)
	}
	writeRaw(w, http.StatusOK, body)
}

// lichessImport handles PUT /lichess: body is a batch of PGN games
// separated by blank lines.
func (h *Handler) lichessImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "read request body", err))
		return
	}
	result, err := h.lichessImporter.Import(string(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{
		Accepted:   result.Accepted,
		Rejected:   result.Rejected,
		Rejections: result.Rejections,
	})
}

// belowCacheThreshold reports whether fen's move number is low enough for
// the response cache to apply (spec §4.8: "bypassed when the move number
// in the FEN exceeds a configured threshold").
func belowCacheThreshold(fen string, threshold int) bool {
	if threshold <= 0 {
		return true
	}
	fields := strings.Fields(fen)
	if len(fields) < 6 {
		return true
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil {
		return true
	}
	return n <= threshold
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps an apperr.Kind to its HTTP status (spec §7) and writes
// a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindImportReject:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindDecode, apperr.KindStoreIO, apperr.KindUnknown:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
