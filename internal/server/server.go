// Package server exposes the ledger over a JSON HTTP API for presentation
// callers.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Design-Arena-Gens/splittab/internal/ledger"
	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
	"github.com/Design-Arena-Gens/splittab/internal/split"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
)

// Server handles the HTTP API backed by a ledger.
type Server struct {
	ledger *ledger.Ledger
}

// New creates a Server for the given ledger.
func New(l *ledger.Ledger) *Server {
	return &Server{ledger: l}
}

// Handler returns the routed HTTP handler with logging, CORS, and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/friends", s.createFriend)
	mux.HandleFunc("GET /api/friends", s.listFriends)
	mux.HandleFunc("POST /api/friends/{id}/settle", s.settleUp)
	mux.HandleFunc("GET /api/friends/{name}/transactions", s.friendTransactions)

	mux.HandleFunc("POST /api/groups", s.createGroup)
	mux.HandleFunc("GET /api/groups", s.listGroups)
	mux.HandleFunc("GET /api/groups/{id}/transactions", s.groupTransactions)
	mux.HandleFunc("GET /api/groups/{id}/balance", s.groupBalance)

	mux.HandleFunc("POST /api/transactions", s.submitTransaction)
	mux.HandleFunc("GET /api/transactions", s.listTransactions)

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return loggingMiddleware(corsMiddleware(metricsMiddleware(mux)))
}

type friendResponse struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Balance money.Amount `json:"balance"`
}

func friendView(f models.Friend) friendResponse {
	return friendResponse{ID: f.ID, Name: f.Name, Balance: f.Balance.RoundCents()}
}

type createFriendRequest struct {
	Name string `json:"name"`
}

func (s *Server) createFriend(w http.ResponseWriter, r *http.Request) {
	var req createFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	friend, err := s.ledger.AddFriend(r.Context(), req.Name)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, friendView(*friend))
}

func (s *Server) listFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.ledger.ListFriends(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]friendResponse, len(friends))
	for i, f := range friends {
		out[i] = friendView(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) settleUp(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.SettleUp(r.Context(), r.PathValue("id")); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) friendTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.FriendTransactions(r.Context(), r.PathValue("name"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := []ledger.TransactionView{}
	for t := range txns {
		out = append(out, s.ledger.View(r.Context(), t))
	}
	writeJSON(w, http.StatusOK, out)
}

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	group, err := s.ledger.AddGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	view, err := s.ledger.ViewGroup(r.Context(), *group)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.ledger.ListGroups(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]ledger.GroupView, len(groups))
	for i, g := range groups {
		view, err := s.ledger.ViewGroup(r.Context(), g)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		out[i] = view
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) groupTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.GroupTransactions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := []ledger.TransactionView{}
	for t := range txns {
		out = append(out, s.ledger.View(r.Context(), t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) groupBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.GroupBalance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]money.Amount{"balance": balance.RoundCents()})
}

type submitParticipant struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent,omitempty"`
	Weight  int64   `json:"weight,omitempty"`
}

type submitTransactionRequest struct {
	Description string                 `json:"description"`
	Amount      money.Amount           `json:"amount"`
	Date        string                 `json:"date,omitempty"`
	Category    string                 `json:"category"`
	Type        models.TransactionType `json:"type"`
	PaidBy      string                 `json:"paidBy"`
	SplitWith   []submitParticipant    `json:"splitWith"`
	Strategy    split.Strategy         `json:"strategy,omitempty"`
	GroupID     string                 `json:"groupId,omitempty"`
	Ref         string                 `json:"ref,omitempty"`
}

type submitTransactionResponse struct {
	Transaction ledger.TransactionView `json:"transaction"`
	Warnings    []string               `json:"warnings,omitempty"`
}

func (s *Server) submitTransaction(w http.ResponseWriter, r *http.Request) {
	var req submitTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	splitWith := make([]ledger.Participant, len(req.SplitWith))
	for i, p := range req.SplitWith {
		splitWith[i] = ledger.Participant{Name: p.Name, Percent: p.Percent, Weight: p.Weight}
	}

	txn, err := s.ledger.SubmitTransaction(r.Context(), ledger.SubmitRequest{
		Description: req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Type:        req.Type,
		PaidBy:      req.PaidBy,
		SplitWith:   splitWith,
		Strategy:    req.Strategy,
		GroupID:     req.GroupID,
		Ref:         req.Ref,
	})
	if txn == nil {
		writeLedgerError(w, err)
		return
	}

	resp := submitTransactionResponse{Transaction: s.ledger.View(r.Context(), *txn)}
	// Unknown split names are non-fatal: the transaction is recorded and the
	// skipped names come back as warnings.
	if err != nil {
		resp.Warnings = warnings(err)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	out := make([]ledger.TransactionView, len(txns))
	for i, t := range txns {
		out[i] = s.ledger.View(r.Context(), t)
	}
	writeJSON(w, http.StatusOK, out)
}

func warnings(err error) []string {
	type unwrapper interface{ Unwrap() []error }
	var joined unwrapper
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func writeLedgerError(w http.ResponseWriter, err error) {
	var unknown *ledger.UnknownFriendError
	switch {
	case errors.Is(err, split.ErrInvalidSplit):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.As(err, &unknown):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
