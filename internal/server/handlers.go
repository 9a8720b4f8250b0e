package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hyeonlab/moneyflow/backend/internal/model"
	"github.com/hyeonlab/moneyflow/backend/internal/service"
	"github.com/hyeonlab/moneyflow/backend/internal/store"
	"github.com/hyeonlab/moneyflow/backend/internal/validate"
)

// ChatAdvisor answers free-form finance questions grounded in the user's
// own data. Optional; when nil the chat route reports unavailability.
type ChatAdvisor interface {
	Ask(ctx context.Context, userID, message string) (string, error)
}

// Handler bundles the HTTP handlers over the engine.
type Handler struct {
	svc    *service.FinanceService
	chat   ChatAdvisor
	logger zerolog.Logger
	loc    *time.Location
}

// NewHandler creates the HTTP handler set. chat may be nil.
func NewHandler(svc *service.FinanceService, chat ChatAdvisor, logger zerolog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, chat: chat, logger: logger, loc: loc}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "malformed request body", err.Error())
		return false
	}
	return true
}

// --- transactions ---

type createTransactionRequest struct {
	Kind                     string `json:"kind"`
	Description              string `json:"description"`
	Category                 string `json:"category"`
	Amount                   int64  `json:"amount"`
	OccurredAt               string `json:"occurredAt"`
	Recurrence               string `json:"recurrence"`
	BillingDay               int    `json:"billingDay"`
	IsFixed                  bool   `json:"isFixed"`
	LinkedCardID             string `json:"linkedCardId"`
	ReflectToLiquidAsset     bool   `json:"reflectToLiquidAsset"`
	IsInvestmentTransfer     bool   `json:"isInvestmentTransfer"`
	InvestmentTargetCategory string `json:"investmentTargetCategory"`
	GoalFundID               string `json:"goalFundId"`
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	kind, err := validate.Kind("kind", req.Kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recurrence, err := validate.Recurrence("recurrence", req.Recurrence)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	amount, err := validate.Amount("amount", req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	occurredAt, err := validate.Date("occurredAt", req.OccurredAt, h.loc)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	tx, err := h.svc.CreateTransaction(r.Context(), service.CreateTransactionInput{
		UserID:                   currentUserID(r),
		Kind:                     kind,
		Description:              req.Description,
		Category:                 req.Category,
		Amount:                   amount,
		OccurredAt:               occurredAt,
		Recurrence:               recurrence,
		BillingDay:               req.BillingDay,
		IsFixed:                  req.IsFixed,
		LinkedCardID:             req.LinkedCardID,
		ReflectToLiquidAsset:     req.ReflectToLiquidAsset,
		IsInvestmentTransfer:     req.IsInvestmentTransfer,
		InvestmentTargetCategory: req.InvestmentTargetCategory,
		GoalFundID:               req.GoalFundID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, tx)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.GetTransaction(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

type transactionListResponse struct {
	Transactions  []*model.Transaction `json:"transactions"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TransactionFilter{
		Kind:          model.TransactionKind(q.Get("kind")),
		EntrySource:   model.EntrySource(q.Get("entrySource")),
		SettledMonth:  q.Get("settledMonth"),
		TemplatesOnly: q.Get("templates") == "true",
	}
	if v := q.Get("startDate"); v != "" {
		t, err := validate.Date("startDate", v, h.loc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := validate.Date("endDate", v, h.loc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		filter.EndDate = &t
	}

	pageSize := int64(50)
	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeValidation, "pageSize must be a positive integer", "pageSize")
			return
		}
		pageSize = n
	}

	txs, next, err := h.svc.ListTransactions(r.Context(), currentUserID(r), filter, int32(pageSize), q.Get("pageToken"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []*model.Transaction{}
	}
	writeData(w, http.StatusOK, transactionListResponse{Transactions: txs, NextPageToken: next})
}

type updateTransactionRequest struct {
	Description              *string `json:"description"`
	Category                 *string `json:"category"`
	Amount                   *int64  `json:"amount"`
	OccurredAt               *string `json:"occurredAt"`
	BillingDay               *int    `json:"billingDay"`
	IsFixed                  *bool   `json:"isFixed"`
	LinkedCardID             *string `json:"linkedCardId"`
	ReflectToLiquidAsset     *bool   `json:"reflectToLiquidAsset"`
	IsInvestmentTransfer     *bool   `json:"isInvestmentTransfer"`
	InvestmentTargetCategory *string `json:"investmentTargetCategory"`
	GoalFundID               *string `json:"goalFundId"`
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := service.UpdateTransactionInput{
		Description:              req.Description,
		Category:                 req.Category,
		Amount:                   req.Amount,
		BillingDay:               req.BillingDay,
		IsFixed:                  req.IsFixed,
		LinkedCardID:             req.LinkedCardID,
		ReflectToLiquidAsset:     req.ReflectToLiquidAsset,
		IsInvestmentTransfer:     req.IsInvestmentTransfer,
		InvestmentTargetCategory: req.InvestmentTargetCategory,
		GoalFundID:               req.GoalFundID,
	}
	if req.OccurredAt != nil {
		t, err := validate.Date("occurredAt", *req.OccurredAt, h.loc)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		in.OccurredAt = &t
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), currentUserID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, tx)
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), currentUserID(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// --- assets ---

func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.svc.ListAssets(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if assets == nil {
		assets = []*model.Asset{}
	}
	writeData(w, http.StatusOK, assets)
}

func (h *Handler) getAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.svc.GetAsset(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, asset)
}

// --- goal funds ---

type createGoalFundRequest struct {
	Name         string `json:"name"`
	TargetAmount int64  `json:"targetAmount"`
}

func (h *Handler) createGoalFund(w http.ResponseWriter, r *http.Request) {
	var req createGoalFundRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name, err := validate.Required("name", req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	target, err := validate.Amount("targetAmount", req.TargetAmount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	fund, err := h.svc.CreateGoalFund(r.Context(), currentUserID(r), name, target)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, fund)
}

func (h *Handler) listGoalFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.svc.ListGoalFunds(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if funds == nil {
		funds = []*model.GoalFund{}
	}
	writeData(w, http.StatusOK, funds)
}

func (h *Handler) getGoalFund(w http.ResponseWriter, r *http.Request) {
	fund, err := h.svc.GetGoalFund(r.Context(), currentUserID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, fund)
}

// --- settlements ---

type settlementRequest struct {
	TargetMonth string `json:"targetMonth"`
}

func (h *Handler) runSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	month, err := validate.MonthKey("targetMonth", req.TargetMonth)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.svc.Settle(r.Context(), currentUserID(r), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *Handler) rollbackSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	month, err := validate.MonthKey("targetMonth", req.TargetMonth)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.svc.Rollback(r.Context(), currentUserID(r), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// --- snapshots ---

type snapshotRunRequest struct {
	Force bool `json:"force"`
}

type snapshotRunResponse struct {
	Captured bool                 `json:"captured"`
	Snapshot *model.AssetSnapshot `json:"snapshot,omitempty"`
}

func (h *Handler) runSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRunRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	snap, err := h.svc.CaptureSnapshot(r.Context(), currentUserID(r), req.Force)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, snapshotRunResponse{Captured: snap != nil, Snapshot: snap})
}

func (h *Handler) listSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := int64(12)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, codeValidation, "limit must be a positive integer", "limit")
			return
		}
		limit = n
	}

	snaps, err := h.svc.ListSnapshots(r.Context(), currentUserID(r), int32(limit))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if snaps == nil {
		snaps = []*model.AssetSnapshot{}
	}
	writeData(w, http.StatusOK, snaps)
}

// --- chat ---

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) chatAsk(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "chat is not configured", "")
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	message, err := validate.Required("message", req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reply, err := h.chat.Ask(r.Context(), currentUserID(r), message)
	if err != nil {
		h.logger.Error().Err(err).Msg("chat request failed")
		writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "advisor is unavailable", "")
		return
	}
	writeData(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
