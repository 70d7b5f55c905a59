package v1

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aevon-lab/scoring/internal/schema"
	"github.com/aevon-lab/scoring/internal/scoring"
)

// AdminLogin is the login that gets admin treatment.
const AdminLogin = "admin"

// AdminScore is returned to admins by online_score without scoring.
const AdminScore = 42

// Method names accepted in MethodRequest.Method.
const (
	MethodOnlineScore      = "online_score"
	MethodClientsInterests = "clients_interests"
)

// Scorer computes method results.
type Scorer interface {
	Score(ctx context.Context, in scoring.ScoreInput) float64
	Interests(ctx context.Context, clientID int64) []string
}

// Executor is implemented by every argument request.
type Executor interface {
	Execute(ctx context.Context, s Scorer) (interface{}, error)
}

// MethodRequest is the authenticated envelope around every method call.
// It is built once per call and not modified afterwards.
type MethodRequest struct {
	// Account is optional; nil when absent or null.
	Account *string

	// Login identifies the caller. May be empty.
	Login string

	// Token is the hex SHA-512 digest proving the caller knows the shared secret.
	Token string

	// Arguments are the method arguments, validated later by the method schema.
	Arguments map[string]interface{}

	// Method names the operation to run. Never empty.
	Method string
}

// NewMethodRequest validates body against the method_request schema and
// returns the envelope. Validation failures are *schema.ValidationError.
func NewMethodRequest(reg *schema.Registry, body map[string]interface{}) (*MethodRequest, error) {
	if err := reg.Validate(schema.MethodRequest, body); err != nil {
		return nil, err
	}

	args, _ := body["arguments"].(map[string]interface{})
	return &MethodRequest{
		Account:   optionalString(body["account"]),
		Login:     stringValue(body["login"]),
		Token:     stringValue(body["token"]),
		Arguments: args,
		Method:    stringValue(body["method"]),
	}, nil
}

// IsAdmin reports whether the caller logged in as AdminLogin.
func (r *MethodRequest) IsAdmin() bool {
	return r.Login == AdminLogin
}

// ScoreResponse is the online_score payload.
type ScoreResponse struct {
	Score float64 `json:"score"`
}

// OnlineScoreRequest holds the online_score arguments. Nil pointers are
// arguments that were not supplied.
type OnlineScoreRequest struct {
	Phone     *string
	Email     *string
	FirstName *string
	LastName  *string
	Birthday  *string
	Gender    *int

	has []string
}

// NewOnlineScoreRequest validates args against the online_score schema.
func NewOnlineScoreRequest(reg *schema.Registry, args map[string]interface{}) (*OnlineScoreRequest, error) {
	spec, err := reg.Get(schema.OnlineScore)
	if err != nil {
		return nil, err
	}
	if err := spec.ValidateData(args); err != nil {
		return nil, err
	}

	req := &OnlineScoreRequest{
		Phone:     phoneString(args["phone"]),
		Email:     optionalString(args["email"]),
		FirstName: optionalString(args["first_name"]),
		LastName:  optionalString(args["last_name"]),
		Birthday:  optionalString(args["birthday"]),
		has:       spec.Present(args),
	}
	if n, ok := schema.AsInt(args["gender"]); ok {
		gender := int(n)
		req.Gender = &gender
	}
	return req, nil
}

// Has returns the names of the arguments that were supplied, in schema order.
func (r *OnlineScoreRequest) Has() []string {
	return r.has
}

// Validate requires at least one complete pair: phone and email, first and
// last name, or a known gender and birthday.
func (r *OnlineScoreRequest) Validate() error {
	switch {
	case hasText(r.Phone) && hasText(r.Email):
		return nil
	case hasText(r.FirstName) && hasText(r.LastName):
		return nil
	case hasGender(r.Gender) && hasText(r.Birthday):
		return nil
	default:
		return schema.ErrInvalidArguments
	}
}

// Execute validates the pair rule and scores the arguments.
func (r *OnlineScoreRequest) Execute(ctx context.Context, s Scorer) (interface{}, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return ScoreResponse{Score: s.Score(ctx, r.ScoreInput())}, nil
}

// ScoreInput converts the request to scoring engine input.
func (r *OnlineScoreRequest) ScoreInput() scoring.ScoreInput {
	return scoring.ScoreInput{
		Phone:     r.Phone,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Birthday:  r.Birthday,
		Gender:    r.Gender,
	}
}

// ClientsInterestsRequest holds the clients_interests arguments.
type ClientsInterestsRequest struct {
	ClientIDs []int64
	Date      *string
}

// NewClientsInterestsRequest validates args against the clients_interests schema.
func NewClientsInterestsRequest(reg *schema.Registry, args map[string]interface{}) (*ClientsInterestsRequest, error) {
	if err := reg.Validate(schema.ClientsInterests, args); err != nil {
		return nil, err
	}

	ids, ok := schema.AsIntList(args["client_ids"])
	if !ok {
		return nil, fmt.Errorf("client_ids passed validation but is %T", args["client_ids"])
	}
	return &ClientsInterestsRequest{
		ClientIDs: ids,
		Date:      optionalString(args["date"]),
	}, nil
}

// Execute samples interests for every client id. Duplicate ids are sampled
// once per occurrence and the last sample is kept.
func (r *ClientsInterestsRequest) Execute(ctx context.Context, s Scorer) (interface{}, error) {
	out := make(map[int64][]string, len(r.ClientIDs))
	for _, id := range r.ClientIDs {
		out[id] = s.Interests(ctx, id)
	}
	return out, nil
}

func optionalString(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// phoneString renders integer phones in decimal so both input forms score alike.
func phoneString(v interface{}) *string {
	if n, ok := schema.AsInt(v); ok {
		s := strconv.FormatInt(n, 10)
		return &s
	}
	return optionalString(v)
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

// hasGender treats GenderUnknown like an absent value.
func hasGender(g *int) bool {
	return g != nil && *g != schema.GenderUnknown
}
