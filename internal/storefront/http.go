package storefront

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/pkg/kit"
)

type Server struct {
	Sessions *Sessions
	Tokens   *TokenMaker
	TTL      time.Duration
	Log      *zap.Logger
}

type sessionResp struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type cartResp struct {
	Cart cart.Cart `json:"cart"`
}

type notificationView struct {
	Reason  cart.Reason `json:"reason"`
	Message string      `json:"message"`
}

type opResp struct {
	Status       cart.Status       `json:"status"`
	Cart         cart.Cart         `json:"cart"`
	Notification *notificationView `json:"notification,omitempty"`
}

type addReq struct {
	ProductID *int `json:"product_id"`
}

type amountReq struct {
	Amount *int `json:"amount"`
}

var errFieldRequired = errors.New("field required")

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()

	tok, exp, err := s.Tokens.New(id, s.TTL)
	if err != nil {
		s.logger().Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, sessionResp{Token: tok, SessionID: id, ExpiresAt: exp.UTC()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, func(), bool) {
	id, ok := SessionIDFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return nil, nil, false
	}

	sess, release, err := s.Sessions.Get(r.Context(), id)
	if err != nil {
		s.logger().Error("load session cart failed", zap.Error(err), zap.String("session_id", id))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "cart unavailable", nil)
		return nil, nil, false
	}
	return sess, release, true
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sess, release, ok := s.session(w, r)
	if !ok {
		return
	}
	defer release()
	kit.WriteJSON(w, http.StatusOK, cartResp{Cart: sess.Cart.Cart()})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sess, release, ok := s.session(w, r)
	if !ok {
		return
	}
	defer release()
	kit.WriteJSON(w, http.StatusOK, sess.Cart.Cart().Summary())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	sess, release, ok := s.session(w, r)
	if !ok {
		return
	}
	defer release()

	var req addReq
	if err := kit.DecodeJSON(w, r, &req); err != nil || req.ProductID == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", errDetails(err))
		return
	}

	writeResult(w, sess.Cart.AddProduct(r.Context(), *req.ProductID))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	sess, release, ok := s.session(w, r)
	if !ok {
		return
	}
	defer release()
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var req amountReq
	if err := kit.DecodeJSON(w, r, &req); err != nil || req.Amount == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", errDetails(err))
		return
	}

	writeResult(w, sess.Cart.UpdateProductAmount(r.Context(), cart.AmountUpdate{ProductID: id, Amount: *req.Amount}))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	sess, release, ok := s.session(w, r)
	if !ok {
		return
	}
	defer release()
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	writeResult(w, sess.Cart.RemoveProduct(r.Context(), id))
}

func writeResult(w http.ResponseWriter, res cart.Result) {
	resp := opResp{Status: res.Status, Cart: res.Cart}
	if res.Reason != cart.ReasonNone {
		resp.Notification = &notificationView{Reason: res.Reason, Message: res.Reason.Message()}
	}

	status := http.StatusOK
	switch res.Status {
	case cart.StatusRejected:
		status = http.StatusConflict
	case cart.StatusFailed:
		status = http.StatusUnprocessableEntity
	}
	kit.WriteJSON(w, status, resp)
}

func itemID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}

func errDetails(err error) any {
	if err == nil {
		err = errFieldRequired
	}
	return map[string]any{"cause": err.Error()}
}
