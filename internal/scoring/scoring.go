package scoring

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/aevon-lab/scoring/internal/core/storage"
	"github.com/shopspring/decimal"
)

// InterestsPerClient is the number of tags returned for every client.
const InterestsPerClient = 2

// Interests is the fixed tag vocabulary interests are drawn from.
var Interests = []string{
	"cars",
	"pets",
	"travel",
	"hi-tech",
	"sport",
	"music",
	"books",
	"tv",
	"cinema",
	"geek",
	"otus",
}

var (
	contactWeight = decimal.RequireFromString("1.5")
	profileWeight = decimal.RequireFromString("1.5")
	nameWeight    = decimal.RequireFromString("0.5")
)

// ScoreInput carries the optional online_score arguments. A nil pointer means
// the argument was not supplied.
type ScoreInput struct {
	Phone     *string
	Email     *string
	FirstName *string
	LastName  *string
	Birthday  *string
	Gender    *int
}

// Engine computes scores and samples interests. It is safe for concurrent use.
type Engine struct {
	store storage.Store

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource sets the random source used for interest sampling.
func WithSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rnd = rand.New(src)
	}
}

// WithSeed makes interest sampling reproducible.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewPCG(seed, seed))
}

// New creates an Engine. A nil store is replaced by storage.NopStore.
func New(store storage.Store, opts ...Option) *Engine {
	if store == nil {
		store = storage.NopStore{}
	}
	e := &Engine{
		store: store,
		rnd:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score sums the weights of the argument pairs that are fully present:
// phone and email 1.5, birthday and gender 1.5, first and last name 0.5.
// Empty strings and gender 0 do not complete a pair.
func (e *Engine) Score(ctx context.Context, in ScoreInput) float64 {
	score := decimal.Zero
	if hasText(in.Phone) && hasText(in.Email) {
		score = score.Add(contactWeight)
	}
	if hasText(in.Birthday) && in.Gender != nil && *in.Gender != 0 {
		score = score.Add(profileWeight)
	}
	if hasText(in.FirstName) && hasText(in.LastName) {
		score = score.Add(nameWeight)
	}
	return score.InexactFloat64()
}

// Interests returns InterestsPerClient distinct tags for the client.
func (e *Engine) Interests(ctx context.Context, clientID int64) []string {
	e.mu.Lock()
	perm := e.rnd.Perm(len(Interests))
	e.mu.Unlock()

	out := make([]string, InterestsPerClient)
	for i := range out {
		out[i] = Interests[perm[i]]
	}
	return out
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
