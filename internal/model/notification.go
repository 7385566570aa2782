package model

import "time"

const NotificationStatusPending = "pending"

type Notification struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Plate      string    `json:"plate" db:"plate"`
	Occurrence string    `json:"occurrence" db:"occurrence"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type CreateNotificationRequest struct {
	Plate      string `json:"plate" validate:"required"`
	Occurrence string `json:"occurrence" validate:"required"`
}

type CreateNotificationResponse struct {
	Message        string `json:"message"`
	NotificationID int64  `json:"notificationId"`
}
