// internal/handlers/handlers.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"storyhub/internal/auth/credential"
	"storyhub/internal/httputils"
	"storyhub/internal/observability/logging"
	"storyhub/internal/store"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handlers serves the resource endpoints. Mutating handlers run behind a
// gate and read the caller with auth.PrincipalFromContext.
type Handlers struct {
	store      store.Store
	issuer     credential.Issuer
	bcryptCost int
	logger     *logging.Logger
	now        func() time.Time
}

// Config holds handler dependencies
type Config struct {
	// Store is the persistence collaborator
	Store store.Store

	// Issuer mints login credentials; nil disables login
	Issuer credential.Issuer

	// BcryptCost is the cost used when hashing passwords
	BcryptCost int
}

// New creates the handler set
func New(cfg Config, logger *logging.Logger) *Handlers {
	return &Handlers{
		store:      cfg.Store,
		issuer:     cfg.Issuer,
		bcryptCost: cfg.BcryptCost,
		logger:     logger.WithModule("handlers"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// LoginEnabled reports whether credentials can be issued locally
func (h *Handlers) LoginEnabled() bool {
	return h.issuer != nil
}

func (h *Handlers) log(r *http.Request) *logging.Logger {
	return logging.FromContextOr(r.Context(), h.logger)
}

// fail writes a 500 with a classified message and logs the cause
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.log(r).Error(message, logging.Err(err))
	httputils.WriteMessage(w, http.StatusInternalServerError, message)
}

// decode reads the request body into v, answering 400 when it is malformed
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httputils.DecodeJSON(r, v); err != nil {
		h.log(r).Debug("Rejected request body", logging.Err(err))
		httputils.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID returns the hex ObjectID in the named path variable, answering
// 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name, label string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		httputils.WriteMessage(w, http.StatusBadRequest, "Invalid "+label)
		return primitive.NilObjectID, false
	}
	return oid, true
}

// objectIDs parses a list of hex ids
func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// orKeep returns v unless it is empty
func orKeep(v, existing string) string {
	if v != "" {
		return v
	}
	return existing
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicate)
}

func deleted(w http.ResponseWriter, kind string) {
	httputils.WriteMessage(w, http.StatusOK, kind+" deleted successfully")
}
