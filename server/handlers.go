package server

import (
	"errors"
	"net/http"
	"strconv"

	"bidmaster/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler bundles the services behind the HTTP surface
type Handler struct {
	users   service.UserService
	auction service.AuctionService
	bidding service.BiddingService
	funding service.FundingService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users service.UserService,
	auction service.AuctionService,
	bidding service.BiddingService,
	funding service.FundingService,
) *Handler {
	return &Handler{
		users:   users,
		auction: auction,
		bidding: bidding,
		funding: funding,
	}
}

// statusForError maps service errors onto HTTP status codes. Contention is
// the only retry-later outcome; conflicts are terminal for the request.
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAuctionClosed),
		errors.Is(err, service.ErrBidTooLow),
		errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrAlreadyProcessed),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrItemHasBids):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrContention):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path":      c.Request.URL.Path,
			"requestId": c.GetString("requestID"),
		}).WithError(err).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// Register handles POST /users/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login handles POST /users/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GetProfile handles GET /users/:user_id
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	user, entries, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	ledger := make([]ledgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		ledger = append(ledger, ledgerEntryResponse{
			ID:            entry.ID,
			EntryType:     entry.EntryType,
			Amount:        entry.Amount,
			BalanceAfter:  entry.BalanceAfter,
			ItemID:        entry.ItemID,
			FundRequestID: entry.FundRequestID,
			CreatedAt:     entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, profileResponse{
		User:   toUserResponse(user),
		Ledger: ledger,
	})
}

// CreateItem handles POST /items
func (h *Handler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.auction.CreateItem(c.Request.Context(),
		req.AdminID, req.Title, req.Description, req.StartingPrice, req.EndTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toItemResponse(item))
}

// ListItems handles GET /items
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.auction.ListOpenItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toItemResponses(items))
}

// GetItem handles GET /items/:item_id
func (h *Handler) GetItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	item, err := h.auction.GetItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toItemResponse(item))
}

func queryLimit(c *gin.Context) (int, bool) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

// ListItemBids handles GET /items/:item_id/bids
func (h *Handler) ListItemBids(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	bids, err := h.auction.ListBidsForItem(c.Request.Context(), itemID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBidResponses(bids))
}

// ListUserBids handles GET /users/:user_id/bids
func (h *Handler) ListUserBids(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	bids, err := h.auction.ListBidsForUser(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBidResponses(bids))
}

// StopItem handles POST /items/:item_id/stop
func (h *Handler) StopItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auction.StopItem(c.Request.Context(), req.AdminID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// DeleteItem handles DELETE /items/:item_id
func (h *Handler) DeleteItem(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auction.DeleteItem(c.Request.Context(), req.AdminID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PlaceBid handles POST /items/:item_id/bids
func (h *Handler) PlaceBid(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.bidding.PlaceBid(c.Request.Context(), req.UserID, itemID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bidResultResponse{
		BidID:           result.BidID,
		ItemID:          result.ItemID,
		Amount:          result.Amount,
		NewCurrentPrice: result.NewCurrentPrice,
	})
}

// RequestFunds handles POST /fund-requests
func (h *Handler) RequestFunds(c *gin.Context) {
	var req requestFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	request, err := h.funding.RequestFunds(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFundRequestResponse(request))
}

// ListPendingFundRequests handles GET /fund-requests/pending
func (h *Handler) ListPendingFundRequests(c *gin.Context) {
	adminID, err := strconv.ParseInt(c.Query("admin_id"), 10, 64)
	if err != nil || adminID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admin_id"})
		return
	}

	requests, err := h.funding.ListPendingRequests(c.Request.Context(), adminID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]fundRequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, toFundRequestResponse(request))
	}

	c.JSON(http.StatusOK, out)
}

// ApproveFundRequest handles POST /fund-requests/:request_id/approve
func (h *Handler) ApproveFundRequest(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.funding.ApproveFundRequest(c.Request.Context(), req.AdminID, requestID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

// RejectFundRequest handles POST /fund-requests/:request_id/reject
func (h *Handler) RejectFundRequest(c *gin.Context) {
	requestID, ok := pathID(c, "request_id")
	if !ok {
		return
	}

	var req adminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.funding.RejectFundRequest(c.Request.Context(), req.AdminID, requestID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}
