package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-moneta"
	"go-moneta/builtin"
)

// RequestIDHeader carries the id of a request, generated when absent.
const RequestIDHeader = "X-Request-Id"

// Server dependencies for HTTP Server functions
type Server struct {
	services builtin.Services
	logger   log.Logger
	router   http.ServeMux
}

func NewServer(s builtin.Services, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	server := &Server{
		services: s,
		logger:   logger,
	}
	server.routes()
	return server
}

func (s *Server) routes() {
	s.router.Handle("POST /api/convert", s.convert())
	s.router.Handle("GET /api/currencies/{code}", s.currency())
	s.router.Handle("GET /api/providers", s.providers())
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	rw.Header().Set(RequestIDHeader, id)

	rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
	defer func(begin time.Time) {
		s.logger.Log(
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(begin),
		)
	}(time.Now())

	s.router.ServeHTTP(rec, r)
}

// convert produces HTTP handler for currency conversions
func (s *Server) convert() http.HandlerFunc {

	// request for unmarshalling JSON requests posted by clients
	type request struct {
		FromCurrency string
		ToCurrency   string
		Amount       decimal.Decimal
		Providers    []string
	}

	// response for marshalling JSON responses to return to clients
	type response struct {
		Exchange float64 `json:"exchange"`
		Amount   float64 `json:"amount"`
		Original float64 `json:"original"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var request request
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			writeError(rw, http.StatusBadRequest, "invalid json")
			return
		}

		from, err := s.services.Currencies.Currency(request.FromCurrency)
		if err != nil {
			writeError(rw, http.StatusBadRequest, "unknown currency: "+request.FromCurrency)
			return
		}
		to, err := s.services.Currencies.Currency(request.ToCurrency)
		if err != nil {
			writeError(rw, http.StatusBadRequest, "unknown currency: "+request.ToCurrency)
			return
		}

		factory, err := s.services.Amounts.DefaultFactory()
		if err != nil {
			writeError(rw, http.StatusInternalServerError, "no amount factory")
			return
		}
		original, err := factory.Create(from, request.Amount)
		if err != nil {
			writeError(rw, http.StatusBadRequest, "invalid amount")
			return
		}

		result, err := s.services.Exchange.Convert(r.Context(), original, to, request.Providers...)
		if errors.Is(err, moneta.ErrUnknownRate) {
			writeError(rw, http.StatusNotFound, "no exchange rate")
			return
		}
		if err != nil {
			writeError(rw, http.StatusBadGateway, "failed conversion")
			return
		}

		converted, err := s.services.Roundings.DefaultRounding().Apply(result.Amount)
		if err != nil {
			writeError(rw, http.StatusInternalServerError, "failed rounding")
			return
		}

		writeJSON(rw, response{
			Exchange: result.Rate.Factor().InexactFloat64(),
			Amount:   converted.Number().InexactFloat64(),
			Original: request.Amount.InexactFloat64(),
		})
	}
}

// currency produces HTTP handler for currency lookups by code
func (s *Server) currency() http.HandlerFunc {

	type response struct {
		Code     string `json:"code"`
		Numeric  int    `json:"numeric"`
		Digits   int    `json:"digits"`
		Provider string `json:"provider"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		code := r.PathValue("code")
		unit, err := s.services.Currencies.Currency(code, r.URL.Query()["provider"]...)
		if err != nil {
			writeError(rw, http.StatusNotFound, "unknown currency: "+code)
			return
		}
		writeJSON(rw, response{
			Code:     unit.CurrencyCode(),
			Numeric:  unit.NumericCode(),
			Digits:   unit.DefaultFractionDigits(),
			Provider: unit.Context().ProviderName(),
		})
	}
}

// providers produces HTTP handler listing provider names per service
func (s *Server) providers() http.HandlerFunc {

	type chain struct {
		Providers []string `json:"providers"`
		Default   []string `json:"default"`
	}

	return func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, map[string]chain{
			"currency": {s.services.Currencies.ProviderNames(), s.services.Currencies.DefaultProviderChain()},
			"rounding": {s.services.Roundings.ProviderNames(), s.services.Roundings.DefaultProviderChain()},
			"amount":   {s.services.Amounts.ProviderNames(), s.services.Amounts.DefaultProviderChain()},
			"exchange": {s.services.Exchange.ProviderNames(), s.services.Exchange.DefaultProviderChain()},
		})
	}
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
	}
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
