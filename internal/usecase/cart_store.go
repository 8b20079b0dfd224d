package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	"github.com/chiragvgohil-05/soffa-clg/internal/metrics"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

const (
	msgCartLoadFailed   = "Unable to load cart (will retry on Cart page)"
	msgCartUpdateFailed = "Failed to update cart"
	msgCartRemoveFailed = "Failed to remove item"
)

// CartStore はセッションのカート。サーバーのカートを映し、更新は楽観的に先に反映する。
// 書き込みはこの型のメソッドだけ。
type CartStore struct {
	gateway  repo.CartGateway
	session  Principal
	notifier Notifier
	log      *slog.Logger

	mu     sync.Mutex
	cart   model.Cart
	loaded bool // 最後の取得が成功したか

	// 取得の世代。古い取得結果は捨てる。
	issuedGen  uint64
	appliedGen uint64

	// 商品IDごとの直列キュー（末尾の完了チャネル）
	tails    map[string]chan struct{}
	inflight sync.WaitGroup
}

func NewCartStore(gateway repo.CartGateway, session Principal, notifier Notifier, logger *slog.Logger) *CartStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartStore{
		gateway:  gateway,
		session:  session,
		notifier: notifier,
		log:      logger.With(slog.String("component", "cart")),
		cart:     model.EmptyCart(),
		tails:    map[string]chan struct{}{},
	}
}

// FetchCart はサーバーのカートで丸ごと置き換える。
// 資格情報が無ければ何もしない。失敗したら空カートにして警告を出す（致命的ではない）。
func (s *CartStore) FetchCart(ctx context.Context) error {
	if !s.session.HasCredential() {
		return nil
	}

	s.mu.Lock()
	s.issuedGen++
	gen := s.issuedGen
	s.mu.Unlock()

	cart, err := s.gateway.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	//後から始まった取得が先に反映済みなら捨てる。401 だけは呼び出し元へ返す（途中で Reset 済みでも）
	if gen < s.appliedGen {
		s.log.Debug("discarding stale cart fetch", slog.Uint64("gen", gen), slog.Uint64("applied", s.appliedGen))
		if errors.Is(err, repo.ErrUnauthorized) {
			return err
		}
		return nil
	}
	s.appliedGen = gen

	if err != nil {
		metrics.CartSyncFailures.WithLabelValues("fetch").Inc()
		s.cart = model.EmptyCart()
		s.loaded = false
		if errors.Is(err, repo.ErrUnauthorized) {
			return err
		}
		s.log.Warn("fetch cart failed", slog.String("error", err.Error()))
		s.notifier.Notify(NoticeWarning, msgCartLoadFailed)
		return fmt.Errorf("fetch cart: %w", err)
	}

	//サーバー優先。合計は明細から計算し直す
	serverTotal := cart.TotalPrice
	cart.Recalculate()
	if !serverTotal.Equal(cart.TotalPrice) {
		s.log.Info("server cart total differs from line sum",
			slog.String("server", serverTotal.String()),
			slog.String("computed", cart.TotalPrice.String()))
	}
	s.cart = cart
	s.loaded = true
	return nil
}

// EnsureLoaded はカート画面を開いたときの再取得（前回失敗していれば取り直す）
func (s *CartStore) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		return nil
	}
	return s.FetchCart(ctx)
}

// AddToCart は数量の差分を楽観的に反映してからサーバーへ送る。
// カートに無い商品を増やすときは snapshot が必要（無ければ ErrSnapshotRequired、通信しない）。
func (s *CartStore) AddToCart(ctx context.Context, productID string, delta int, snapshot *model.ProductSnapshot) error {
	if productID == "" || delta == 0 {
		return ErrInvalidCartInput
	}
	if !s.session.HasCredential() {
		return ErrNoSession
	}
	if snapshot != nil && snapshot.ID != productID {
		return ErrInvalidCartInput
	}

	s.mu.Lock()
	idx := s.cart.IndexOf(productID)
	switch {
	case idx >= 0:
		items := s.cart.Items
		items[idx].Quantity += delta
		//0以下になった明細は残さない
		if items[idx].Quantity <= 0 {
			s.cart.Items = append(items[:idx], items[idx+1:]...)
		}
	case delta > 0:
		if snapshot == nil {
			s.mu.Unlock()
			return ErrSnapshotRequired
		}
		s.cart.Items = append(s.cart.Items, model.CartLine{
			Product:  *snapshot,
			Quantity: delta,
			Price:    snapshot.Price,
		})
	default:
		//無い明細を減らす: ローカルはそのまま、判断はサーバーに任せる
	}
	s.cart.Recalculate()
	s.mu.Unlock()

	s.enqueue(ctx, productID, "add", msgCartUpdateFailed, func(ctx context.Context) error {
		return s.gateway.AddItem(ctx, productID, delta)
	})
	return nil
}

// UpdateQuantity は符号付きの差分。絶対値で数量を設定する操作は無い。
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, delta int) error {
	return s.AddToCart(ctx, productID, delta, nil)
}

// RemoveFromCart は明細を楽観的に消してからサーバーへ送る
func (s *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	if productID == "" {
		return ErrInvalidCartInput
	}
	if !s.session.HasCredential() {
		return ErrNoSession
	}

	s.mu.Lock()
	items := make([]model.CartLine, 0, len(s.cart.Items))
	for _, it := range s.cart.Items {
		if it.Product.ID != productID {
			items = append(items, it)
		}
	}
	s.cart.Items = items
	s.cart.Recalculate()
	s.mu.Unlock()

	s.enqueue(ctx, productID, "remove", msgCartRemoveFailed, func(ctx context.Context) error {
		return s.gateway.RemoveItem(ctx, productID)
	})
	return nil
}

// enqueue はサーバー更新をバックグラウンドで実行する。
// 同じ商品IDの更新は発行順に1つずつ、違う商品は並行。
func (s *CartStore) enqueue(ctx context.Context, productID string, op string, failMsg string, call func(ctx context.Context) error) {
	s.mu.Lock()
	prev := s.tails[productID]
	done := make(chan struct{})
	s.tails[productID] = done
	s.mu.Unlock()

	//呼び出し元のリクエストが終わっても続ける
	bg := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer s.release(productID, done)

		if prev != nil {
			<-prev
		}
		err := call(bg)
		if err == nil {
			return
		}

		metrics.CartSyncFailures.WithLabelValues(op).Inc()
		if errors.Is(err, repo.ErrUnauthorized) {
			//セッションは破棄済み
			return
		}
		s.log.Warn("cart mutation failed, re-syncing",
			slog.String("op", op),
			slog.String("product_id", productID),
			slog.String("error", err.Error()))
		s.notifier.Notify(NoticeError, failMsg)
		_ = s.FetchCart(bg)
	}()
}

func (s *CartStore) release(productID string, done chan struct{}) {
	close(done)
	s.mu.Lock()
	if s.tails[productID] == done {
		delete(s.tails, productID)
	}
	s.mu.Unlock()
}

// Snapshot は現在のカートのコピー
func (s *CartStore) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Loaded は最後の取得が成功したか
func (s *CartStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Wait は実行中のサーバー更新（と失敗時の再取得）が終わるまで待つ
func (s *CartStore) Wait() {
	s.inflight.Wait()
}

// Reset はログアウト時にカートを捨てる
func (s *CartStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = model.EmptyCart()
	s.loaded = false
	//実行中の取得結果は反映させない
	s.appliedGen = s.issuedGen + 1
	s.issuedGen = s.appliedGen
}
