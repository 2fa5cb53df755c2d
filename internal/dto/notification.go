package dto

import (
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/utils"
)

// NotificationListResponse represents a page of the caller's notifications
type NotificationListResponse struct {
	Notifications []models.Notification    `json:"notifications"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToNotificationListResponse converts a page of notifications
func ToNotificationListResponse(notifications []models.Notification, params utils.PaginationParams, total int64) NotificationListResponse {
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return NotificationListResponse{
		Notifications: notifications,
		Pagination:    utils.NewPaginationResponse(params, total),
	}
}
