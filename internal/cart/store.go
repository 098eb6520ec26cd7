package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "RocketShoes/internal/cart"

var errMissingDeps = errors.New("cart: inventory and storage are required")

type Deps struct {
	Inventory Inventory
	Storage   Storage
	Notifier  Notifier
	Log       *zap.Logger
	Metrics   *Metrics

	// Key overrides StorageKey.
	Key string
}

type AmountUpdate struct {
	ProductID int `json:"product_id"`
	Amount    int `json:"amount"`
}

// Store owns one session's cart. Mutations run one at a time; Cart never
// waits for an in-flight mutation.
type Store struct {
	inv      Inventory
	storage  Storage
	notifier Notifier
	log      *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	key      string

	sem chan struct{}

	mu   sync.RWMutex
	cart Cart
}

// New builds a Store and hydrates it from storage.
func New(ctx context.Context, deps Deps) (*Store, error) {
	if deps.Inventory == nil || deps.Storage == nil {
		return nil, errMissingDeps
	}

	s := &Store{
		inv:      deps.Inventory,
		storage:  deps.Storage,
		notifier: deps.Notifier,
		log:      deps.Log,
		metrics:  deps.Metrics,
		tracer:   otel.Tracer(tracerName),
		key:      deps.Key,
		sem:      make(chan struct{}, 1),
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.key == "" {
		s.key = StorageKey
	}

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.cart = c
	return s, nil
}

func (s *Store) load(ctx context.Context) (Cart, error) {
	raw, found, err := s.storage.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !found {
		return Cart{}, nil
	}

	c, skipped, err := decodeLenient(raw)
	if err != nil {
		s.log.Warn("stored cart unreadable, starting empty", zap.String("key", s.key), zap.Error(err))
		return Cart{}, nil
	}

	c, dropped := normalize(c)
	dropped += skipped
	if dropped > 0 {
		s.log.Warn("dropped invalid stored cart items", zap.String("key", s.key), zap.Int("dropped", dropped))
	}
	return c, nil
}

// Cart returns a snapshot of the current cart.
func (s *Store) Cart() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) AddProduct(ctx context.Context, productID int) (res Result) {
	ctx, done := s.begin(ctx, opAdd, productID)
	defer func() { done(res) }()

	if err := s.acquire(ctx); err != nil {
		return s.failed(ReasonAddFailed, err)
	}
	defer s.release()

	current := s.Cart()

	stock, err := s.inv.GetStock(ctx, productID)
	if err != nil {
		return s.failed(ReasonAddFailed, fmt.Errorf("get stock: %w", err))
	}

	i := current.Index(productID)
	target := 1
	if i >= 0 {
		target = current[i].Amount + 1
	}
	if target > stock.Amount {
		return s.rejected()
	}

	var next Cart
	if i >= 0 {
		next = current.withAmount(i, target)
	} else {
		p, err := s.inv.GetProduct(ctx, productID)
		if err != nil {
			return s.failed(ReasonAddFailed, fmt.Errorf("get product: %w", err))
		}
		next = append(current, newLineItem(productID, p))
	}

	if err := s.commit(ctx, next); err != nil {
		return s.failed(ReasonAddFailed, err)
	}
	return Result{Status: StatusOK, Cart: next.Clone()}
}

func (s *Store) RemoveProduct(ctx context.Context, productID int) (res Result) {
	ctx, done := s.begin(ctx, opRemove, productID)
	defer func() { done(res) }()

	if err := s.acquire(ctx); err != nil {
		return s.failed(ReasonRemoveFailed, err)
	}
	defer s.release()

	current := s.Cart()
	if current.Index(productID) < 0 {
		return s.failed(ReasonRemoveFailed, ErrItemNotFound)
	}

	next := current.Without(productID)
	if err := s.commit(ctx, next); err != nil {
		return s.failed(ReasonRemoveFailed, err)
	}
	return Result{Status: StatusOK, Cart: next.Clone()}
}

// UpdateProductAmount sets an item's quantity. Non-positive amounts are
// ignored without notice.
func (s *Store) UpdateProductAmount(ctx context.Context, u AmountUpdate) (res Result) {
	ctx, done := s.begin(ctx, opUpdate, u.ProductID)
	defer func() { done(res) }()

	if u.Amount <= 0 {
		return Result{Status: StatusSkipped, Cart: s.Cart()}
	}

	if err := s.acquire(ctx); err != nil {
		return s.failed(ReasonUpdateFailed, err)
	}
	defer s.release()

	stock, err := s.inv.GetStock(ctx, u.ProductID)
	if err != nil {
		return s.failed(ReasonUpdateFailed, fmt.Errorf("get stock: %w", err))
	}
	if u.Amount > stock.Amount {
		return s.rejected()
	}

	current := s.Cart()
	i := current.Index(u.ProductID)
	if i < 0 {
		return s.failed(ReasonUpdateFailed, ErrItemNotFound)
	}

	next := current.withAmount(i, u.Amount)
	if err := s.commit(ctx, next); err != nil {
		return s.failed(ReasonUpdateFailed, err)
	}
	return Result{Status: StatusOK, Cart: next.Clone()}
}

func (s *Store) acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.sem }

// commit writes next through to storage and only then swaps it in, so a
// failed write leaves memory and storage agreeing.
func (s *Store) commit(ctx context.Context, next Cart) error {
	raw, err := next.Encode()
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *Store) rejected() Result {
	return Result{Status: StatusRejected, Reason: ReasonOutOfStock, Cart: s.Cart(), Err: ErrOutOfStock}
}

func (s *Store) failed(reason Reason, err error) Result {
	return Result{Status: StatusFailed, Reason: reason, Cart: s.Cart(), Err: err}
}

func (s *Store) begin(ctx context.Context, op string, productID int) (context.Context, func(Result)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "cart."+op, trace.WithAttributes(
		attribute.String("app.cart_op", op),
		attribute.Int("app.product_id", productID),
	))

	return ctx, func(res Result) {
		defer span.End()

		span.SetAttributes(
			attribute.String("app.cart_status", string(res.Status)),
			attribute.Int("app.cart_lines", len(res.Cart)),
		)
		s.metrics.observe(op, res, start)

		fields := []zap.Field{
			zap.String("op", op),
			zap.Int("product_id", productID),
			zap.String("status", string(res.Status)),
		}

		switch res.Status {
		case StatusFailed:
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, string(res.Reason))
			s.log.Warn("cart operation failed", append(fields, zap.Error(res.Err))...)
		case StatusRejected:
			s.log.Info("cart operation rejected", append(fields, zap.String("reason", string(res.Reason)))...)
		default:
			s.log.Debug("cart operation", fields...)
		}

		if res.Reason != ReasonNone {
			s.notifier.Notify(ctx, Notification{
				ID:        uuid.NewString(),
				Reason:    res.Reason,
				Message:   res.Reason.Message(),
				ProductID: productID,
				At:        time.Now().UTC(),
			})
		}
	}
}
