package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally-api/middleware"
	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/services"
)

// ExpenseHandler serves the expense ledger.
type ExpenseHandler struct {
	Expenses *services.ExpenseService
}

func (h *ExpenseHandler) AddExpense(c *gin.Context) {
	var req models.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	detail, err := h.Expenses.Add(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	expenses, err := h.Expenses.List(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetExpenseDetail(c *gin.Context) {
	detail, err := h.Expenses.Detail(c.Request.Context(), c.Param("groupId"), c.Param("expenseId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ExpenseHandler) EditExpense(c *gin.Context) {
	var req models.EditExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	detail, err := h.Expenses.Edit(c.Request.Context(), c.Param("groupId"), c.Param("expenseId"), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.Expenses.Delete(c.Request.Context(), c.Param("groupId"), c.Param("expenseId"), middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "expense deleted"})
}
