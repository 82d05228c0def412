// Package handlers provides API endpoint handling functionality.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	handlersErrors "github.com/danilovkiri/dk-go-smmpanel/internal/api/rest/errors"
	"github.com/danilovkiri/dk-go-smmpanel/internal/api/rest/middleware"
	"github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1"
	serviceErrors "github.com/danilovkiri/dk-go-smmpanel/internal/service/processor/v1/errors"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/secretary/v1"
	"github.com/danilovkiri/dk-go-smmpanel/internal/service/session/v1"
	storageErrors "github.com/danilovkiri/dk-go-smmpanel/internal/storage/v1/errors"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

const requestTimeout = 500 * time.Millisecond

// Handler defines attributes of a struct available to its methods.
type Handler struct {
	service  processor.Processor
	sessions session.Store
	sec      secretary.Secretary
	log      *zerolog.Logger
}

// InitHandlers initializes a handler object.
func InitHandlers(mainService processor.Processor, sessions session.Store, sec secretary.Secretary, log *zerolog.Logger) (*Handler, error) {
	if mainService == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil processor was passed to handlers initializer"}
	}
	if sessions == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil session store was passed to handlers initializer"}
	}
	if sec == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil secretary was passed to handlers initializer"}
	}
	return &Handler{service: mainService, sessions: sessions, sec: sec, log: log}, nil
}

// HandleRegister processes user register requests.
func (h *Handler) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		var newUser modeldto.NewUser
		if !h.decodeBody(w, r, &newUser) {
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new user register request detected for %s", newUser.Email))
		_, err := h.service.RegisterUser(ctx, newUser)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleRegister failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var alreadyExistsError *storageErrors.AlreadyExistsError
			var illegalInputError *serviceErrors.ServiceIllegalInputError
			if errors.As(err, &contextTimeoutExceededError) {
				writeError(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &alreadyExistsError) {
				writeError(w, http.StatusBadRequest, "email already registered")
			} else if errors.As(err, &illegalInputError) {
				writeError(w, http.StatusBadRequest, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "registered successfully"})
	}
}

// HandleLogin processes user login requests.
func (h *Handler) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		var credentials modeldto.Credentials
		if !h.decodeBody(w, r, &credentials) {
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new login request detected for %s", credentials.Email))
		user, err := h.service.LoginUser(ctx, credentials)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var incorrectCredentialsError *serviceErrors.ServiceIncorrectCredentialsError
			if errors.As(err, &contextTimeoutExceededError) {
				writeError(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &incorrectCredentialsError) {
				writeError(w, http.StatusUnauthorized, "invalid credentials")
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		sessionID := h.sessions.Open(user.ID)
		token, err := h.sec.Sign(sessionID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleLogin failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		http.SetCookie(w, newSessionCookie(token))
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}

// HandleLogout processes user logout requests. Logging out without a valid
// session still succeeds.
func (h *Handler) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(middleware.SessionCookieName)
		if err == nil {
			sessionID, err := h.sec.Validate(cookie.Value)
			if err == nil {
				h.sessions.Close(sessionID)
			}
		}
		http.SetCookie(w, expiredSessionCookie())
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "logged out"})
	}
}

// HandleMe processes identity query requests, returning a null user for
// anonymous callers.
func (h *Handler) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
			return
		}
		user, err := h.service.GetUser(ctx, identity.UserID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleMe failed")
			writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}

// HandleGetServices processes service catalog query requests.
func (h *Handler) HandleGetServices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		services, err := h.service.GetServices(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetServices failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"services": services})
	}
}

// HandleGetOrders processes orders query requests.
func (h *Handler) HandleGetOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		orders, err := h.service.GetOrders(ctx, identity.UserID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleGetOrders failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
	}
}

// HandleNewOrder processes new order requests.
func (h *Handler) HandleNewOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var newOrder modeldto.NewOrder
		if !h.decodeBody(w, r, &newOrder) {
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new order request detected for service %s", newOrder.ServiceID))
		order, balance, err := h.service.CreateOrder(ctx, identity.UserID, newOrder)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleNewOrder failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notEnoughFundsError *storageErrors.NotEnoughFundsError
			var illegalInputError *serviceErrors.ServiceIllegalInputError
			var invalidServiceError *serviceErrors.ServiceInvalidServiceError
			if errors.As(err, &contextTimeoutExceededError) {
				writeError(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &notEnoughFundsError) {
				writeError(w, http.StatusBadRequest, "insufficient balance")
			} else if errors.As(err, &illegalInputError) || errors.As(err, &invalidServiceError) {
				writeError(w, http.StatusBadRequest, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"order": order, "balance": balance})
	}
}

// HandleSimulateOrders processes fulfillment simulation requests.
func (h *Handler) HandleSimulateOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		identity, ok := middleware.IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		order, err := h.service.SimulateProgress(ctx, identity.UserID)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleSimulateOrders failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if order == nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{"message": "no pending orders to process"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
	}
}

// HandleAdminGetUsers processes admin user listing requests.
func (h *Handler) HandleAdminGetUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		users, err := h.service.GetAllUsers(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleAdminGetUsers failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
	}
}

// HandleAdminGetOrders processes admin order listing requests.
func (h *Handler) HandleAdminGetOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		orders, err := h.service.GetAllOrders(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleAdminGetOrders failed")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
	}
}

// HandleAdminSetOrderStatus processes admin order status updates.
func (h *Handler) HandleAdminSetOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		orderID := chi.URLParam(r, "orderID")
		var newStatus modeldto.NewOrderStatus
		if !h.decodeBody(w, r, &newStatus) {
			return
		}
		h.log.Info().Msg(fmt.Sprintf("admin status update request detected for order %s", orderID))
		order, err := h.service.SetOrderStatus(ctx, orderID, newStatus.Status)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleAdminSetOrderStatus failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var notFoundError *storageErrors.NotFoundError
			var illegalInputError *serviceErrors.ServiceIllegalInputError
			if errors.As(err, &contextTimeoutExceededError) {
				writeError(w, http.StatusGatewayTimeout, err.Error())
			} else if errors.As(err, &notFoundError) {
				writeError(w, http.StatusNotFound, "order not found")
			} else if errors.As(err, &illegalInputError) {
				writeError(w, http.StatusBadRequest, err.Error())
			} else {
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"order": order})
	}
}

// decodeBody enforces the JSON content type and unmarshals the request body,
// answering 400 on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid content type")
		return false
	}
	b, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("request body reading failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return false
	}
	err = json.Unmarshal(b, dst)
	if err != nil {
		h.log.Error().Err(err).Msg("request body unmarshalling failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func newSessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	}
}

func expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	resBody, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(resBody)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
