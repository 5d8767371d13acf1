package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-storefront-checkout/internal/cart"
	"github.com/imrishuroy/go-storefront-checkout/internal/orders"
	"github.com/imrishuroy/go-storefront-checkout/internal/pricing"
	"github.com/imrishuroy/go-storefront-checkout/internal/session"
	"github.com/imrishuroy/go-storefront-checkout/internal/storage"
	"github.com/imrishuroy/go-storefront-checkout/internal/validation"
)

// nowFunc is used for order timestamps and is overridden in tests.
var nowFunc = time.Now

// Publisher delivers the order-placed message (SQS or Kafka).
type Publisher interface {
	Send(ctx context.Context, messageBody string, attributes map[string]string) error
}

type Config struct {
	Shipping     pricing.ShippingPolicy
	PaymentDelay time.Duration // online payments only
	PlaceDelay   time.Duration
	ClearDelay   time.Duration // after confirmation, before the cart is emptied
}

// DefaultConfig uses the storefront's shipping policy and demo delays.
func DefaultConfig() Config {
	return Config{
		Shipping:     pricing.DefaultShipping,
		PaymentDelay: 1500 * time.Millisecond,
		PlaceDelay:   2 * time.Second,
		ClearDelay:   2 * time.Second,
	}
}

// PlaceRequest carries the optional parts of a place-order call.
type PlaceRequest struct {
	// BuyNow, when set, is ordered on its own and the cart is left alone.
	BuyNow         *cart.LineItem
	IdempotencyKey string
}

// Confirmation is the result of a placed order. CartCleared is nil for
// buy-now orders.
type Confirmation struct {
	Order       orders.Record
	CartCleared *Task[struct{}]
}

// Service runs one checkout flow per session.
type Service struct {
	kv        storage.KV
	history   *orders.History
	validate  *validatorv10.Validate
	publisher Publisher
	log       *zap.Logger
	cfg       Config

	mu    sync.Mutex
	flows map[string]*flow
}

// NewService wires the flow to storage. publisher and log may be nil.
func NewService(kv storage.KV, publisher Publisher, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		kv:        kv,
		history:   orders.NewHistory(kv),
		validate:  validation.New(),
		publisher: publisher,
		log:       log,
		cfg:       cfg,
		flows:     map[string]*flow{},
	}
}

// History exposes the order history the service writes to.
func (s *Service) History() *orders.History { return s.history }

// Shipping is the policy used for checkout totals.
func (s *Service) Shipping() pricing.ShippingPolicy { return s.cfg.Shipping }

// Totals prices what PlaceOrder would order: buyNow alone when set,
// otherwise the session's cart.
func (s *Service) Totals(sess *session.Session, buyNow *cart.LineItem) pricing.Totals {
	return pricing.Quote(orderLines(sess, buyNow), sess.Coupon(), s.cfg.Shipping)
}

func orderLines(sess *session.Session, buyNow *cart.LineItem) []cart.LineItem {
	if buyNow != nil {
		return []cart.LineItem{*buyNow}
	}
	return sess.Cart.Lines()
}

func (s *Service) flowFor(sessionID string) *flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flows[sessionID]
	if !ok {
		f = &flow{state: StateEditing}
		s.flows[sessionID] = f
	}
	return f
}

// Forget drops the flows of ended sessions. A placement already running
// keeps its own reference and finishes normally.
func (s *Service) Forget(sessionIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sessionIDs {
		delete(s.flows, id)
	}
}

// Flow returns the session's flow without starting one.
func (s *Service) Flow(sessionID string) (Snapshot, bool) {
	s.mu.Lock()
	f, ok := s.flows[sessionID]
	s.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return Snapshot{}, false
	}
	return f.snapshot(), true
}

// Begin starts or resumes the session's flow. A confirmed flow is replaced by
// a fresh one with a new pending order id.
func (s *Service) Begin(ctx context.Context, sessionID string) (Snapshot, error) {
	f := s.flowFor(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started && f.state != StateConfirmed {
		return f.snapshot(), nil
	}
	if err := s.reset(ctx, sessionID, f); err != nil {
		return Snapshot{}, err
	}
	return f.snapshot(), nil
}

// reset must be called with f.mu held.
func (s *Service) reset(ctx context.Context, sessionID string, f *flow) error {
	id, err := s.history.UniqueID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("generate order id: %w", err)
	}

	form := validation.NewCheckoutForm()
	raw, ok, err := s.kv.Get(ctx, orders.DraftKey(sessionID))
	if err != nil {
		return fmt.Errorf("read checkout draft: %w", err)
	}
	if ok && raw != "" {
		var draft validation.CheckoutForm
		if err := json.Unmarshal([]byte(raw), &draft); err != nil {
			s.log.Warn("discarding unreadable checkout draft",
				zap.String("session_id", sessionID), zap.Error(err))
		} else {
			form = draft
		}
	}

	f.started = true
	f.state = StateEditing
	f.form = form
	f.errors = map[string]string{}
	f.orderID = id
	return nil
}

// UpdateField masks and stores one form field, clears its error and mirrors
// the whole form to the session's draft.
func (s *Service) UpdateField(ctx context.Context, sessionID, field, value string) (Snapshot, error) {
	f := s.flowFor(sessionID)
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.started {
		if err := s.reset(ctx, sessionID, f); err != nil {
			return Snapshot{}, err
		}
	}
	switch f.state {
	case StateSubmitting:
		return f.snapshot(), ErrSubmitting
	case StateConfirmed:
		return f.snapshot(), ErrConfirmed
	}

	form := f.form
	if _, err := form.Set(field, value); err != nil {
		return f.snapshot(), err
	}

	body, err := json.Marshal(form)
	if err != nil {
		return f.snapshot(), fmt.Errorf("encode checkout draft: %w", err)
	}
	if err := s.kv.Set(ctx, orders.DraftKey(sessionID), string(body)); err != nil {
		return f.snapshot(), fmt.Errorf("save checkout draft: %w", err)
	}

	f.form = form
	delete(f.errors, field)
	return f.snapshot(), nil
}

// PlaceOrder validates the form and records the order. It keeps running if
// the caller's context is cancelled.
func (s *Service) PlaceOrder(ctx context.Context, sess *session.Session, req PlaceRequest) (Confirmation, error) {
	ctx = context.WithoutCancel(ctx)
	log := s.log.With(zap.String("session_id", sess.ID))

	f := s.flowFor(sess.ID)
	f.mu.Lock()
	if !f.started {
		if err := s.reset(ctx, sess.ID, f); err != nil {
			f.mu.Unlock()
			return Confirmation{}, err
		}
	}
	switch f.state {
	case StateSubmitting:
		f.mu.Unlock()
		return Confirmation{}, ErrSubmitting
	case StateConfirmed:
		f.mu.Unlock()
		return Confirmation{}, ErrConfirmed
	}

	if err := validation.CheckForm(s.validate, f.form); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			f.errors = verr.Fields
		}
		f.mu.Unlock()
		return Confirmation{}, err
	}
	f.errors = map[string]string{}

	lines := orderLines(sess, req.BuyNow)
	if len(lines) == 0 {
		f.mu.Unlock()
		return Confirmation{}, ErrEmptyCart
	}

	cpn := sess.Coupon()
	totals := pricing.Quote(lines, cpn, s.cfg.Shipping)
	form := f.form.Trimmed()
	rec := orders.Record{
		ID:    f.orderID,
		Items: lines,
		Shipping: orders.Shipping{
			Address: form.Address,
			City:    form.City,
			Pincode: form.Pincode,
		},
		Customer: orders.Customer{
			Name:  form.Name,
			Email: form.Email,
			Phone: form.Phone,
		},
		Payment: form.Payment,
		Express: req.BuyNow != nil,
	}
	if cpn.Applied {
		rec.CouponCode = cpn.Code
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	log.Info("placing order", zap.String("order_id", rec.ID), zap.String("payment", rec.Payment))

	if form.Payment == orders.PaymentOnline {
		payment := Go(ctx, s.cfg.PaymentDelay, func(context.Context) (struct{}, error) {
			return struct{}{}, nil
		})
		if _, err := payment.Wait(ctx); err != nil {
			s.revert(f)
			return Confirmation{}, fmt.Errorf("payment: %w", err)
		}
	}

	place := Go(ctx, s.cfg.PlaceDelay, func(ctx context.Context) (orders.Record, error) {
		rec.CreatedAt = nowFunc().UTC()
		rec.Totals = totals.Display()
		if err := s.history.Append(ctx, sess.ID, rec, storage.Remove(orders.DraftKey(sess.ID))); err != nil {
			return orders.Record{}, err
		}
		return rec, nil
	})
	placed, err := place.Wait(ctx)
	if err != nil {
		s.revert(f)
		log.Error("failed to record order", zap.String("order_id", rec.ID), zap.Error(err))
		return Confirmation{}, fmt.Errorf("place order: %w", err)
	}

	s.publish(ctx, log, sess.ID, placed, req.IdempotencyKey)

	f.mu.Lock()
	f.state = StateConfirmed
	f.lastOrder = &placed
	f.mu.Unlock()

	conf := Confirmation{Order: placed}
	if req.BuyNow == nil {
		conf.CartCleared = Go(ctx, s.cfg.ClearDelay, func(context.Context) (struct{}, error) {
			sess.Cart.Clear()
			return struct{}{}, nil
		})
	}

	log.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("total", placed.Totals.Total),
		zap.Int("items", placed.Totals.ItemCount),
		zap.Bool("express", placed.Express))
	return conf, nil
}

func (s *Service) revert(f *flow) {
	f.mu.Lock()
	f.state = StateEditing
	f.mu.Unlock()
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, sessionID string, rec orders.Record, idemKey string) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(rec.Message(sessionID))
	if err != nil {
		log.Error("failed to encode order message", zap.String("order_id", rec.ID), zap.Error(err))
		return
	}
	attrs := map[string]string{
		"order_id":        rec.ID,
		"session_id":      sessionID,
		"idempotency_key": idemKey,
	}
	if err := s.publisher.Send(ctx, string(body), attrs); err != nil {
		log.Warn("failed to publish order message", zap.String("order_id", rec.ID), zap.Error(err))
	}
}
