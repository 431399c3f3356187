package handler

import (
	"net/http"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/repository"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TransactionHandler handles HTTP requests for the firm ledger
type TransactionHandler struct {
	transactionService *service.TransactionService
	logger             *zap.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(transactionService *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// List godoc
// @Summary List transactions
// @Tags Finance
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param type query string false "Filter by type" Enums(expense, revenue)
// @Param category query string false "Filter by category" Enums(supplies, project, salary, other)
// @Param partnerId query string false "Filter by partner"
// @Param from query string false "Earliest date (YYYY-MM-DD, inclusive)"
// @Param to query string false "Latest date (YYYY-MM-DD, inclusive)"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, date, amount)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TransactionDTO}
// @Router /transactions [get]
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()
	filters := &domain.TransactionFilters{
		Type:      domain.TransactionType(q.Get("type")),
		Category:  domain.TransactionCategory(q.Get("category")),
		PartnerID: q.Get("partnerId"),
		From:      q.Get("from"),
		To:        q.Get("to"),
	}

	sort := parseSort(r, repository.SortConfig{Field: "date", Order: repository.SortOrderDesc})
	result, err := h.transactionService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "list transactions")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get transaction by ID
// @Tags Finance
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} domain.TransactionDTO
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tx, err := h.transactionService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "get transaction")
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// Create godoc
// @Summary Record a transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Param request body domain.CreateTransactionRequest true "Transaction data"
// @Success 201 {object} domain.TransactionDTO
// @Router /transactions [post]
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.transactionService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create transaction")
		return
	}
	w.Header().Set("Location", "/api/v1/transactions/"+tx.ID)
	respondJSON(w, http.StatusCreated, tx)
}

// Update godoc
// @Summary Update transaction
// @Tags Finance
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body domain.UpdateTransactionRequest true "Transaction data"
// @Success 200 {object} domain.TransactionDTO
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTransactionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tx, err := h.transactionService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update transaction")
		return
	}
	respondJSON(w, http.StatusOK, tx)
}

// Delete godoc
// @Summary Delete transaction
// @Tags Finance
// @Param id path string true "Transaction ID"
// @Success 204
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.logger, err, "delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
