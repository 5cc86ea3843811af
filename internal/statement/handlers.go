package statement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/theater-billing/internal/catalog"
	"github.com/noah-isme/theater-billing/internal/common"
	"github.com/noah-isme/theater-billing/internal/obs"
	"github.com/noah-isme/theater-billing/internal/pricing"
	"github.com/noah-isme/theater-billing/internal/theater"
)

// Handler exposes statement rendering over HTTP.
type Handler struct {
	renderer Renderer
	catalog  catalog.Store
	logger   zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Renderer Renderer
	Catalog  catalog.Store
	Logger   zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	r := cfg.Renderer
	if r.Format == nil {
		r.Format = USD
	}
	if r.Rules == (pricing.Rules{}) {
		r.Rules = pricing.DefaultRules()
	}
	return &Handler{renderer: r, catalog: cfg.Catalog, logger: cfg.Logger}
}

// Request is the body of POST /api/v1/statements. Plays, when present, replace the catalog lookup.
type Request struct {
	Invoice theater.Invoice `json:"invoice"`
	Plays   theater.Plays   `json:"plays,omitempty"`
}

// LineView is the JSON form of a statement line.
type LineView struct {
	PlayID          string `json:"play_id"`
	PlayName        string `json:"play_name"`
	Type            string `json:"type"`
	Audience        int    `json:"audience"`
	Amount          int64  `json:"amount"`
	AmountFormatted string `json:"amount_formatted"`
	Credits         int    `json:"credits"`
}

// View is the JSON form of a rendered statement.
type View struct {
	ID                   string     `json:"id"`
	Customer             string     `json:"customer"`
	Currency             string     `json:"currency"`
	Lines                []LineView `json:"lines"`
	TotalAmount          int64      `json:"total_amount"`
	TotalAmountFormatted string     `json:"total_amount_formatted"`
	VolumeCredits        int        `json:"volume_credits"`
	Text                 string     `json:"text"`
}

// Create handles POST /api/v1/statements. The response is plain text unless format=json is requested.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *theater.UnknownPlayTypeError
		if errors.As(err, &typeErr) {
			h.fail(w, r, err)
			return
		}
		common.WriteError(w, common.NewAppError(common.CodeInvalidRequest, "invalid json", http.StatusBadRequest, err))
		return
	}
	if err := req.Invoice.Validate(); err != nil {
		common.WriteError(w, common.FromDomain(err))
		return
	}

	ctx, span := otel.Tracer("statement").Start(r.Context(), "statement.render")
	defer span.End()
	span.SetAttributes(attribute.Int("statement.performances", len(req.Invoice.Performances)))

	lookup := theater.Catalog(req.Plays)
	if req.Plays == nil {
		if h.catalog == nil {
			common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog store not configured", nil)
			return
		}
		snapshot, err := catalog.Snapshot(ctx, h.catalog, req.Invoice)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog snapshot")
			h.fail(w, r, err)
			return
		}
		lookup = snapshot
	} else if err := req.Plays.Validate(); err != nil {
		common.WriteError(w, common.FromDomain(err))
		return
	}

	st, err := h.renderer.Build(req.Invoice, lookup)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render")
		h.fail(w, r, err)
		return
	}

	genres := make([]string, len(st.Lines))
	for i, line := range st.Lines {
		genres[i] = line.Genre.String()
	}
	obs.ObserveStatement("ok", st.TotalAmount, genres)
	span.SetAttributes(attribute.Int64("statement.total_amount", st.TotalAmount))

	id := uuid.NewString()
	w.Header().Set(obs.StatementIDHeader, id)
	obs.SetStatementID(r.Context(), id)
	text := h.renderer.Text(st)
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		common.JSON(w, http.StatusOK, map[string]any{"data": h.view(id, st, text)})
		return
	}
	common.Text(w, http.StatusOK, text)
}

func (h *Handler) view(id string, st Statement, text string) View {
	lines := make([]LineView, len(st.Lines))
	for i, line := range st.Lines {
		lines[i] = LineView{
			PlayID:          line.PlayID,
			PlayName:        line.PlayName,
			Type:            line.Genre.String(),
			Audience:        line.Audience,
			Amount:          line.Amount,
			AmountFormatted: h.renderer.Format(h.renderer.Rules.ToMajorUnits(line.Amount)),
			Credits:         line.Credits,
		}
	}
	return View{
		ID:                   id,
		Customer:             st.Customer,
		Currency:             h.renderer.CurrencyCode(),
		Lines:                lines,
		TotalAmount:          st.TotalAmount,
		TotalAmountFormatted: h.renderer.Format(h.renderer.Rules.ToMajorUnits(st.TotalAmount)),
		VolumeCredits:        st.TotalCredits,
		Text:                 text,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := common.FromDomain(err)
	result := "error"
	switch appErr.Code {
	case common.CodeUnknownPlayType:
		result = "unknown_play_type"
	case common.CodeUnknownPlay:
		result = "unknown_play"
	}
	obs.ObserveStatement(result, 0, nil)
	h.logger.Warn().Err(err).Str("result", result).Str("path", r.URL.Path).Msg("statement rejected")
	common.WriteError(w, appErr)
}
