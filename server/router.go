package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter configures all routes for the engine's HTTP surface
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New() // no default middleware; logging and recovery are explicit

	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware)
	router.Use(RequestLoggerMiddleware)

	users := router.Group("/users")
	{
		users.POST("/register", handler.Register)
		users.POST("/login", handler.Login)
		users.GET("/:user_id", handler.GetProfile)
		users.GET("/:user_id/bids", handler.ListUserBids)
	}

	items := router.Group("/items")
	{
		items.GET("", handler.ListItems)
		items.POST("", handler.CreateItem)
		items.GET("/:item_id", handler.GetItem)
		items.DELETE("/:item_id", handler.DeleteItem)
		items.POST("/:item_id/stop", handler.StopItem)
		items.GET("/:item_id/bids", handler.ListItemBids)
		items.POST("/:item_id/bids", handler.PlaceBid)
	}

	fundRequests := router.Group("/fund-requests")
	{
		fundRequests.POST("", handler.RequestFunds)
		fundRequests.GET("/pending", handler.ListPendingFundRequests)
		fundRequests.POST("/:request_id/approve", handler.ApproveFundRequest)
		fundRequests.POST("/:request_id/reject", handler.RejectFundRequest)
	}

	return router
}
