package delivery

import (
	"errors"
	"net/http"

	accountdto "newsletterbox-backend/internal/account/dto"
	"newsletterbox-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
}

func NewAccountHandler(accountUsecase usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
	}
}

func (h *AccountHandler) BeginConnect(c *gin.Context) {
	userID := c.GetString("userID")

	var req accountdto.BeginConnectRequest
	_ = c.ShouldBindJSON(&req)

	resp, err := h.accountUsecase.BeginConnect(userID, &req)
	if err != nil {
		writeConnectError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AccountHandler) Connect(c *gin.Context) {
	userID := c.GetString("userID")

	var req accountdto.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing_parameters", "message": err.Error()})
		return
	}

	account, err := h.accountUsecase.Connect(c.Request.Context(), userID, &req)
	if err != nil {
		writeConnectError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountdto.ConnectResponse{Success: true, Account: account})
}

func (h *AccountHandler) ConnectIMAP(c *gin.Context) {
	userID := c.GetString("userID")

	var req accountdto.ConnectIMAPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing_parameters", "message": err.Error()})
		return
	}

	account, err := h.accountUsecase.ConnectIMAP(userID, &req)
	if err != nil {
		writeConnectError(c, err)
		return
	}

	c.JSON(http.StatusOK, accountdto.ConnectResponse{Success: true, Account: account})
}

// writeConnectError maps the handshake taxonomy onto HTTP statuses while
// keeping the structured body intact for the UI.
func writeConnectError(c *gin.Context, err error) {
	var connErr *usecase.ConnectError
	if !errors.As(err, &connErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal", "message": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch connErr.Kind {
	case usecase.ErrMissingParameters, usecase.ErrInvalidState:
		status = http.StatusBadRequest
	case usecase.ErrMissingProviderConfig:
		status = http.StatusInternalServerError
	case usecase.ErrTokenExchangeFailed, usecase.ErrIdentityFetchFailed:
		status = http.StatusBadGateway
	case usecase.ErrPersistenceFailed:
		status = http.StatusInternalServerError
	}

	body := gin.H{
		"success": false,
		"error":   connErr.Kind,
		"message": connErr.Message,
	}
	if connErr.GoogleError != "" {
		body["googleError"] = connErr.GoogleError
		body["googleErrorDescription"] = connErr.GoogleErrorDescription
	}
	if len(connErr.Details) > 0 {
		body["details"] = connErr.Details
	}
	c.JSON(status, body)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountUsecase.ListAccounts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, accountdto.AccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id := c.Param("id")
	account, err := h.accountUsecase.GetAccount(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) UpdateCadence(c *gin.Context) {
	id := c.Param("id")

	var req accountdto.CadenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accountUsecase.UpdateCadence(id, &req)
	if err != nil {
		if errors.Is(err, usecase.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Disconnect(c *gin.Context) {
	id := c.Param("id")
	if err := h.accountUsecase.Disconnect(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account disconnected"})
}
