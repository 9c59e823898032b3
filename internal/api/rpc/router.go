// internal/api/rpc/router.go
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/codr1/mailthemes/internal/api/apiutil"
)

const (
	// PathPrefix is where procedures are mounted.
	PathPrefix = "/api/trpc/"

	maxInputBytes = 256 << 10
)

var callsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mailthemes_rpc_calls_total",
		Help: "Total number of procedure calls by result code.",
	},
	[]string{"procedure", "code"},
)

func init() {
	prometheus.MustRegister(callsTotal)
}

type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) method() string {
	if k == Mutation {
		return http.MethodPost
	}
	return http.MethodGet
}

// Call carries one procedure invocation.
type Call struct {
	Procedure string
	// Input is the raw JSON input, or nil when none was sent.
	Input   json.RawMessage
	Request *http.Request
}

// Decode strictly decodes the input into dst. A missing input is a BAD_REQUEST.
func (c Call) Decode(dst any) error {
	if len(c.Input) == 0 {
		return apiutil.FieldError{Field: "input", Reason: "is required"}
	}
	if err := apiutil.DecodeJSONReader(strings.NewReader(string(c.Input)), dst); err != nil {
		var fieldErr apiutil.FieldError
		if errors.As(err, &fieldErr) {
			return fieldErr
		}
		return NewError(CodeBadRequest, "Invalid input: "+err.Error(), err)
	}
	return nil
}

// DecodeOptional is Decode for procedures whose input may be omitted.
func (c Call) DecodeOptional(dst any) error {
	if len(c.Input) == 0 {
		return nil
	}
	return c.Decode(dst)
}

type HandlerFunc func(ctx context.Context, call Call) (any, error)

type procedure struct {
	kind    Kind
	handler HandlerFunc
}

// Router dispatches /api/trpc/<procedure> requests to registered procedures
// and writes tRPC-style result and error envelopes.
type Router struct {
	procedures map[string]procedure
}

func NewRouter() *Router {
	return &Router{procedures: make(map[string]procedure)}
}

// Query registers a read procedure served over GET.
func (rt *Router) Query(name string, handler HandlerFunc) {
	rt.procedures[name] = procedure{kind: Query, handler: handler}
}

// Mutation registers a write procedure served over POST.
func (rt *Router) Mutation(name string, handler HandlerFunc) {
	rt.procedures[name] = procedure{kind: Mutation, handler: handler}
}

// Procedures lists registered procedure names in sorted order.
func (rt *Router) Procedures() []string {
	names := make([]string, 0, len(rt.procedures))
	for name := range rt.procedures {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type resultEnvelope struct {
	Result struct {
		Data any `json:"data"`
	} `json:"result"`
}

type errorData struct {
	Code       Code   `json:"code"`
	HTTPStatus int    `json:"httpStatus"`
	Path       string `json:"path"`
}

type errorEnvelope struct {
	Error struct {
		Message string    `json:"message"`
		Code    int       `json:"code"`
		Data    errorData `json:"data"`
	} `json:"error"`
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	name := strings.TrimPrefix(r.URL.Path, PathPrefix)

	proc, ok := rt.procedures[name]
	if !ok || name == "" {
		rt.writeError(w, r, name, NewError(CodeNotFound, "No procedure found on path \""+name+"\"", nil))
		return
	}
	if r.Method != proc.kind.method() {
		w.Header().Set("Allow", proc.kind.method())
		rt.writeError(w, r, name, NewError(CodeMethodNotSupported, "Unsupported "+r.Method+"-request to "+kindName(proc.kind)+" procedure at path \""+name+"\"", nil))
		return
	}

	input, err := readInput(r, proc.kind)
	if err != nil {
		rt.writeError(w, r, name, err)
		return
	}

	data, callErr := proc.handler(r.Context(), Call{Procedure: name, Input: input, Request: r})
	if callErr != nil {
		rt.writeError(w, r, name, ToError(callErr))
		return
	}

	var envelope resultEnvelope
	envelope.Result.Data = data
	callsTotal.WithLabelValues(name, "OK").Inc()
	if err := apiutil.WriteJSON(w, http.StatusOK, envelope); err != nil {
		logger.Error().Err(err).Str("procedure", name).Msg("Failed to write procedure response")
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, name string, rpcErr *Error) {
	logger := log.Ctx(r.Context())
	status := rpcErr.Code.HTTPStatus()

	logEvent := logger.Warn()
	if status >= http.StatusInternalServerError {
		logEvent = logger.Error()
	}
	logEvent.Err(rpcErr.Err).
		Str("procedure", name).
		Str("code", string(rpcErr.Code)).
		Msg(rpcErr.Message)

	if rpcErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", RetryAfterSeconds(rpcErr.RetryAfter))
	}

	var envelope errorEnvelope
	envelope.Error.Message = rpcErr.Message
	envelope.Error.Code = rpcErr.Code.RPCCode()
	envelope.Error.Data = errorData{Code: rpcErr.Code, HTTPStatus: status, Path: name}

	callsTotal.WithLabelValues(metricProcedure(rt, name), string(rpcErr.Code)).Inc()
	if err := apiutil.WriteJSON(w, status, envelope); err != nil {
		logger.Error().Err(err).Str("procedure", name).Msg("Failed to write procedure error")
	}
}

func readInput(r *http.Request, kind Kind) (json.RawMessage, *Error) {
	var raw string
	if kind == Query {
		raw = r.URL.Query().Get("input")
	} else if r.Body != nil {
		defer r.Body.Close()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxInputBytes+1))
		if err != nil {
			return nil, NewError(CodeBadRequest, "Failed to read request body", err)
		}
		if len(body) > maxInputBytes {
			return nil, NewError(CodeBadRequest, "Request body too large", nil)
		}
		raw = string(body)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" || raw == "undefined" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, NewError(CodeParseError, "Input is not valid JSON", nil)
	}
	return json.RawMessage(raw), nil
}

// metricProcedure keeps unknown paths out of the metric label space.
func metricProcedure(rt *Router, name string) string {
	if _, ok := rt.procedures[name]; ok {
		return name
	}
	return "unknown"
}

func kindName(k Kind) string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}
