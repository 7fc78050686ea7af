package server

import (
	"time"

	"bidmaster/models"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createItemRequest struct {
	AdminID       int64     `json:"admin_id" binding:"required"`
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	StartingPrice int64     `json:"starting_price" binding:"required"`
	EndTime       time.Time `json:"end_time" binding:"required"`
}

type adminActionRequest struct {
	AdminID int64 `json:"admin_id" binding:"required"`
}

type placeBidRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required"`
}

type requestFundsRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required"`
}

type userResponse struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	WalletBalance    int64  `json:"wallet_balance"`
	AvailableBalance int64  `json:"available_balance"`
	IsAdmin          bool   `json:"is_admin"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		WalletBalance:    user.WalletBalance,
		AvailableBalance: user.AvailableBalance,
		IsAdmin:          user.IsAdmin,
	}
}

type itemResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	StartingPrice int64      `json:"starting_price"`
	CurrentPrice  int64      `json:"current_price"`
	EndTime       time.Time  `json:"end_time"`
	WinnerID      *int64     `json:"winner_id,omitempty"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

func toItemResponse(item *models.Item) itemResponse {
	return itemResponse{
		ID:            item.ID,
		Title:         item.Title,
		Description:   item.Description,
		StartingPrice: item.StartingPrice,
		CurrentPrice:  item.CurrentPrice,
		EndTime:       item.EndTime,
		WinnerID:      item.WinnerID,
		SettledAt:     item.SettledAt,
	}
}

func toItemResponses(items []*models.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

type bidResponse struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

func toBidResponses(bids []*models.Bid) []bidResponse {
	out := make([]bidResponse, 0, len(bids))
	for _, bid := range bids {
		out = append(out, bidResponse{
			ID:        bid.ID,
			ItemID:    bid.ItemID,
			UserID:    bid.UserID,
			Amount:    bid.Amount,
			CreatedAt: bid.CreatedAt,
		})
	}
	return out
}

type bidResultResponse struct {
	BidID           int64 `json:"bid_id"`
	ItemID          int64 `json:"item_id"`
	Amount          int64 `json:"amount"`
	NewCurrentPrice int64 `json:"new_current_price"`
}

type fundRequestResponse struct {
	ID        int64                    `json:"id"`
	UserID    int64                    `json:"user_id"`
	Amount    int64                    `json:"amount"`
	Status    models.FundRequestStatus `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

func toFundRequestResponse(request *models.FundRequest) fundRequestResponse {
	return fundRequestResponse{
		ID:        request.ID,
		UserID:    request.UserID,
		Amount:    request.Amount,
		Status:    request.Status,
		CreatedAt: request.CreatedAt,
	}
}

type ledgerEntryResponse struct {
	ID            int64            `json:"id"`
	EntryType     models.EntryType `json:"entry_type"`
	Amount        int64            `json:"amount"`
	BalanceAfter  int64            `json:"balance_after"`
	ItemID        *int64           `json:"item_id,omitempty"`
	FundRequestID *int64           `json:"fund_request_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

type profileResponse struct {
	User   userResponse          `json:"user"`
	Ledger []ledgerEntryResponse `json:"ledger"`
}
