package domain

import "time"

// PresenceEntry - запись о подключении участника. На дисконнекте запись не
// удаляется, а помечается offline, чтобы запросы last-seen продолжали работать.
type PresenceEntry struct {
	SocketID     string    `json:"socketId"`
	UserID       string    `json:"userId"`
	UserType     string    `json:"userType"`
	TenantID     string    `json:"tenantId"`
	DealershipID string    `json:"dealershipId,omitempty"`
	DisplayName  string    `json:"displayName"`
	Online       bool      `json:"online"`
	LastSeen     time.Time `json:"lastSeen"`
}

// UserStatus - ответ на запрос статуса и полезная нагрузка user_status_change
type UserStatus struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

func (e *PresenceEntry) Status() UserStatus {
	return UserStatus{
		ID:       e.UserID,
		Type:     e.UserType,
		Online:   e.Online,
		LastSeen: e.LastSeen,
	}
}
