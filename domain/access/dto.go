package access

import (
	"github.com/akeren/telecheck/internal/models"
)

// ========================================
// Request DTOs
// ========================================

type SubmitEmailRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

type RosterActionRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// ========================================
// Response DTOs
// ========================================

type SessionResponse struct {
	SessionID    string `json:"sessionId"`
	CurrentEmail string `json:"currentEmail,omitempty"`
	Status       string `json:"status"`
	View         string `json:"view"`
	IsAdmin      bool   `json:"isAdmin"`
}

type AccessRecordResponse struct {
	Email       string `json:"email"`
	RequestedAt string `json:"requestedAt"`
	Status      string `json:"status"`
	LastSeen    string `json:"lastSeen,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

type RosterResponse struct {
	Records []AccessRecordResponse `json:"records"`
	Pending int                    `json:"pending"`
}

// ========================================
// Mappers
// ========================================

func ToAccessRecordResponse(record *models.AccessRecord, policy Policy) AccessRecordResponse {
	return AccessRecordResponse{
		Email:       record.Email,
		RequestedAt: record.RequestedAt,
		Status:      record.Status.String(),
		LastSeen:    record.LastSeen,
		IsAdmin:     policy.isAdminRecord(record),
	}
}

func ToRosterResponse(roster []models.AccessRecord, policy Policy) RosterResponse {
	resp := RosterResponse{Records: make([]AccessRecordResponse, 0, len(roster))}
	for i := range roster {
		resp.Records = append(resp.Records, ToAccessRecordResponse(&roster[i], policy))
		if roster[i].IsPending() {
			resp.Pending++
		}
	}
	return resp
}
