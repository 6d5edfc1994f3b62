package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally-api/handlers"
	"github.com/tallyhq/tally-api/services"
	"github.com/tallyhq/tally-api/storage"
)

// SetupGroupRoutes mounts the group registry, balances and settlements.
func SetupGroupRoutes(rg *gin.RouterGroup, store *storage.Store) {
	directory := services.NewDirectory(store)
	balances := services.NewBalanceService(store)

	h := &handlers.GroupHandler{
		Groups:      services.NewGroupService(store, directory, balances),
		Balances:    balances,
		Settlements: services.NewSettlementService(store, balances),
	}

	rg.POST("/group/createGroup", h.CreateGroup)
	rg.GET("/group/getGroups", h.GetGroups)
	rg.PUT("/group/editInfo/:groupId", h.EditInfo)
	rg.DELETE("/group/delete/:groupId", h.DeleteGroup)

	rg.GET("/group/getMembers/:groupId", h.GetMembers)
	rg.POST("/group/addMember/:groupId", h.AddMember)
	rg.DELETE("/group/removeMember/:groupId", h.RemoveMember)
	rg.POST("/group/leaveGroup/:groupId", h.LeaveGroup)
	rg.POST("/group/promoteAdmin/:groupId", h.PromoteAdmin)
	rg.POST("/group/demoteAdmin/:groupId", h.DemoteAdmin)

	rg.POST("/group/balances/:groupId", h.GetBalances)
	rg.POST("/group/settleUpWithUser/:groupId", h.SettleUp)
	rg.GET("/group/settlements/:groupId", h.GetSettlements)
}

// SetupExpenseRoutes mounts the expense ledger.
func SetupExpenseRoutes(rg *gin.RouterGroup, store *storage.Store) {
	directory := services.NewDirectory(store)

	h := &handlers.ExpenseHandler{
		Expenses: services.NewExpenseService(store, directory),
	}

	rg.POST("/groupExpense/add", h.AddExpense)
	rg.GET("/groupExpense/getAll/:groupId", h.GetExpenses)
	rg.GET("/groupExpense/detail/:groupId/:expenseId", h.GetExpenseDetail)
	rg.PUT("/groupExpense/edit/:groupId/:expenseId", h.EditExpense)
	rg.DELETE("/groupExpense/delete/:groupId/:expenseId", h.DeleteExpense)
}
