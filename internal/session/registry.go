package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/infra/backend"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/google/uuid"
)

type Deps struct {
	Backend   *backend.Client
	Receipts  repo.PaymentReceiptRepository
	Audit     repo.AuditLogRepository
	Validator usecase.AccountValidator
	Checkout  usecase.CheckoutConfig
	Logger    *slog.Logger
}

// Registry はセッションIDから State を引く
type Registry struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*State
}

func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{deps: deps, sessions: map[string]*State{}}
}

// Create は資格情報なしの State を作って登録する
func (r *Registry) Create() *State {
	id := uuid.NewString()
	logger := r.deps.Logger.With(slog.String("session", shortID(id)))

	st := &State{
		ID:       id,
		Notices:  NewNoticeQueue(),
		log:      logger,
		lastSeen: time.Now(),
	}
	gw := r.deps.Backend.Bind(st)
	st.Cart = usecase.NewCartStore(gw, st, st, logger)
	st.Checkout = usecase.NewCheckoutOrchestrator(r.deps.Checkout, gw, st.Cart, r.deps.Receipts, st, st, logger)
	st.Account = usecase.NewAccountUsecase(gw, r.deps.Validator)
	st.Admin = usecase.NewAdminUsecase(gw, st, r.deps.Audit, logger)

	r.mu.Lock()
	r.sessions[id] = st
	r.mu.Unlock()
	return st
}

func (r *Registry) Get(id string) (*State, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.sessions[id]
	return st, ok
}

// Remove は Teardown してから登録を消す
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	st, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		st.Teardown()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep は idle を超えて使われていないセッションを消す
func (r *Registry) Sweep(now time.Time, idle time.Duration) int {
	r.mu.RLock()
	var stale []string
	for id, st := range r.sessions {
		if st.idleSince(now) > idle {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.Remove(id)
	}
	if len(stale) > 0 {
		r.deps.Logger.Info("idle sessions removed", slog.Int("count", len(stale)))
	}
	return len(stale)
}

var _ backend.Credentials = (*State)(nil)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
