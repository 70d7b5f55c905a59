package method

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	v1 "github.com/aevon-lab/scoring/internal/api/v1"
	httperr "github.com/aevon-lab/scoring/internal/core/errors"
	"github.com/aevon-lab/scoring/internal/schema"
)

// Request is one decoded call.
type Request struct {
	Body   map[string]interface{}
	Header http.Header
}

// Context is the per-call observability record. The handler fills Has and
// NClients; the caller logs it.
type Context struct {
	RequestID string
	Has       []string
	NClients  int
}

// Authenticator checks the envelope token.
type Authenticator interface {
	Check(req *v1.MethodRequest) bool
}

// buildFunc turns validated envelope arguments into something to execute.
type buildFunc func(h *Handler, req *v1.MethodRequest, mctx *Context) (v1.Executor, error)

var methods = map[string]buildFunc{
	v1.MethodOnlineScore:      (*Handler).onlineScore,
	v1.MethodClientsInterests: (*Handler).clientsInterests,
}

// Methods returns the routable method names, sorted.
func Methods() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handler authenticates and dispatches method calls. It is safe for
// concurrent use; all per-call state lives in the Request and Context.
type Handler struct {
	registry *schema.Registry
	auth     Authenticator
	scorer   v1.Scorer
}

func New(reg *schema.Registry, auth Authenticator, scorer v1.Scorer) *Handler {
	if reg == nil {
		panic("method: registry must not be nil")
	}
	if auth == nil {
		panic("method: authenticator must not be nil")
	}
	if scorer == nil {
		panic("method: scorer must not be nil")
	}
	return &Handler{
		registry: reg,
		auth:     auth,
		scorer:   scorer,
	}
}

// Handle runs one call and returns the payload and response code. For codes
// other than 200 the payload is the error message, or nil for the default.
func (h *Handler) Handle(ctx context.Context, req Request, mctx *Context) (interface{}, int) {
	mr, err := v1.NewMethodRequest(h.registry, req.Body)
	if err != nil {
		return h.fail(mctx, "", err)
	}

	if !h.auth.Check(mr) {
		authFailures.WithLabelValues(role(mr)).Inc()
		slog.Warn("Token check failed", "request_id", mctx.RequestID, "login", mr.Login, "method", mr.Method)
		return nil, httperr.Forbidden
	}

	build, ok := methods[mr.Method]
	if !ok {
		methodCalls.WithLabelValues("unknown", strconv.Itoa(httperr.InvalidRequest)).Inc()
		return httperr.MsgInvalidMethod, httperr.InvalidRequest
	}

	payload, code := h.run(ctx, build, mr, mctx)
	methodCalls.WithLabelValues(mr.Method, strconv.Itoa(code)).Inc()
	return payload, code
}

func (h *Handler) run(ctx context.Context, build buildFunc, mr *v1.MethodRequest, mctx *Context) (interface{}, int) {
	exec, err := build(h, mr, mctx)
	if err != nil {
		return h.fail(mctx, mr.Method, err)
	}

	payload, err := exec.Execute(ctx, h.scorer)
	if err != nil {
		return h.fail(mctx, mr.Method, err)
	}
	return payload, httperr.OK
}

func (h *Handler) onlineScore(req *v1.MethodRequest, mctx *Context) (v1.Executor, error) {
	args, err := v1.NewOnlineScoreRequest(h.registry, req.Arguments)
	if err != nil {
		return nil, err
	}
	mctx.Has = args.Has()
	if req.IsAdmin() {
		return adminScore{}, nil
	}
	return args, nil
}

func (h *Handler) clientsInterests(req *v1.MethodRequest, mctx *Context) (v1.Executor, error) {
	args, err := v1.NewClientsInterestsRequest(h.registry, req.Arguments)
	if err != nil {
		return nil, err
	}
	mctx.NClients = len(args.ClientIDs)
	return args, nil
}

// fail maps validation failures to 422 and everything else to 500.
func (h *Handler) fail(mctx *Context, method string, err error) (interface{}, int) {
	if schema.IsValidationError(err) {
		slog.Info("Invalid request", invalidAttrs(mctx, method, err)...)
		return err.Error(), httperr.InvalidRequest
	}
	slog.Error("Method failed", "request_id", mctx.RequestID, "method", method, "error", err)
	return nil, httperr.InternalError
}

// invalidAttrs builds the log attributes of a rejected call, including the
// structured details of a field error.
func invalidAttrs(mctx *Context, method string, err error) []interface{} {
	attrs := []interface{}{"request_id", mctx.RequestID, "method", method, "error", err}
	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		for k, v := range ve.Details() {
			attrs = append(attrs, k, v)
		}
	}
	return attrs
}

// adminScore answers online_score for admins without scoring.
type adminScore struct{}

func (adminScore) Execute(ctx context.Context, s v1.Scorer) (interface{}, error) {
	return v1.ScoreResponse{Score: v1.AdminScore}, nil
}

func role(req *v1.MethodRequest) string {
	if req.IsAdmin() {
		return "admin"
	}
	return "user"
}
