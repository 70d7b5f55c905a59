package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	httperr "github.com/aevon-lab/scoring/internal/core/errors"
	"github.com/aevon-lab/scoring/internal/method"
	"github.com/gin-gonic/gin"
)

var (
	errNoBody       = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body exceeds maximum allowed size")
	errNotObject    = errors.New("request body is not a non empty JSON object")
)

// dispatchHandler decodes the body, routes on the path and writes the envelope.
func (s *Server) dispatchHandler(c *gin.Context) {
	mctx := &method.Context{RequestID: c.GetString(ctxKeyRequestID)}
	c.Set(ctxKeyMethodContext, mctx)

	body, err := s.readBody(c)
	if err != nil {
		slog.Warn("Bad request body", "request_id", mctx.RequestID, "error", err)
		c.Set(ctxKeyMetricsPath, "bad_request")
		respond(c, httperr.MsgInvalidRequest, httperr.BadRequest)
		return
	}

	path := strings.Trim(c.Param("path"), "/")
	h, ok := s.router[path]
	if !ok {
		c.Set(ctxKeyMetricsPath, "not_found")
		respond(c, nil, httperr.NotFound)
		return
	}
	c.Set(ctxKeyMetricsPath, "/"+path)

	payload, code := h.Handle(c.Request.Context(), method.Request{
		Body:   body,
		Header: c.Request.Header,
	}, mctx)
	respond(c, payload, code)
}

// readBody reads at most maxBodyBytes and decodes a non empty JSON object.
// Numbers are kept as json.Number so integers stay distinguishable.
func (s *Server) readBody(c *gin.Context) (map[string]interface{}, error) {
	if c.Request.ContentLength <= 0 {
		return nil, errNoBody
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(data)) > s.maxBodyBytes {
		return nil, errBodyTooLarge
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: trailing data")
	}

	obj, ok := v.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return nil, errNotObject
	}
	return obj, nil
}

func respond(c *gin.Context, payload interface{}, code int) {
	msg, _ := payload.(string)
	c.JSON(code, httperr.Body(code, payload, msg))
}
