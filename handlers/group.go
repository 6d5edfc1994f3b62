package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally-api/middleware"
	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/services"
)

// GroupHandler serves the group registry, balances and settlements.
type GroupHandler struct {
	Groups      *services.GroupService
	Balances    *services.BalanceService
	Settlements *services.SettlementService
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.Groups.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *GroupHandler) GetGroups(c *gin.Context) {
	groups, err := h.Groups.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) EditInfo(c *gin.Context) {
	var req models.EditGroupInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g, err := h.Groups.EditInfo(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.Groups.Delete(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

func (h *GroupHandler) GetMembers(c *gin.Context) {
	members, err := h.Groups.Members(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	var req models.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Groups.AddMember(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req.Username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var req models.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Groups.RemoveMember(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req.Username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	if err := h.Groups.Leave(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left group"})
}

func (h *GroupHandler) PromoteAdmin(c *gin.Context) {
	var req models.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Groups.Promote(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req.Username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin granted"})
}

func (h *GroupHandler) DemoteAdmin(c *gin.Context) {
	var req models.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Groups.Demote(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req.Username); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin revoked"})
}

func (h *GroupHandler) GetBalances(c *gin.Context) {
	balances, err := h.Balances.BalancesFor(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

func (h *GroupHandler) SettleUp(c *gin.Context) {
	var req models.SettleUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settlement, err := h.Settlements.SettleUp(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, settlement)
}

func (h *GroupHandler) GetSettlements(c *gin.Context) {
	history, err := h.Settlements.List(c.Request.Context(), c.Param("groupId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
