package domain

import "fmt"

// Типы участников чата. Admin - сотрудник компании-организатора тендеров,
// Dealership - пользователь дилерского центра.
const (
	PrincipalTypeAdmin      = "admin"
	PrincipalTypeDealership = "dealership"
)

// Principal - аутентифицированная личность соединения. Ровно один вариант:
// у админа DealershipID пустой, у дилера заполнен. Конструкторы ниже -
// единственный способ получить корректный вариант.
type Principal struct {
	ID           string
	Type         string
	TenantID     string
	DealershipID string
	DisplayName  string
	Role         string
}

func NewAdminPrincipal(id, tenantID, displayName, role string) Principal {
	return Principal{
		ID:          id,
		Type:        PrincipalTypeAdmin,
		TenantID:    tenantID,
		DisplayName: displayName,
		Role:        role,
	}
}

func NewDealershipPrincipal(id, tenantID, dealershipID, displayName string) Principal {
	return Principal{
		ID:           id,
		Type:         PrincipalTypeDealership,
		TenantID:     tenantID,
		DealershipID: dealershipID,
		DisplayName:  displayName,
		Role:         "dealership_user",
	}
}

func (p Principal) IsAdmin() bool {
	return p.Type == PrincipalTypeAdmin
}

func (p Principal) IsDealership() bool {
	return p.Type == PrincipalTypeDealership
}

// PresenceKey - ключ записи присутствия вида "admin:42"
func (p Principal) PresenceKey() string {
	return PresenceKey(p.Type, p.ID)
}

func PresenceKey(userType, userID string) string {
	return fmt.Sprintf("%s:%s", userType, userID)
}

// Имена комнат. Формат фиксирован протоколом, клиенты собирают те же строки.
func (p Principal) PersonalRoom() string {
	return fmt.Sprintf("tender_chat_%s_%s", p.Type, p.ID)
}

func (p Principal) GroupRoom() string {
	return GroupRoom(p.Type, p.TenantID, p.DealershipID)
}

// GroupRoom строит имя групповой комнаты стороны: у админов она общая на
// тенант, у дилерских пользователей - на дилерский центр
func GroupRoom(partyType, tenantID, dealershipID string) string {
	if partyType == PrincipalTypeDealership {
		return fmt.Sprintf("tender_chat_dealership_%s", dealershipID)
	}
	return fmt.Sprintf("tender_chat_company_%s", tenantID)
}

func ConversationRoom(tenderID, dealershipID string) string {
	return fmt.Sprintf("tender_conversation_%s_%s", tenderID, dealershipID)
}

// OppositeParty возвращает сторону-получателя для сообщения отправителя
func OppositeParty(senderType string) string {
	if senderType == PrincipalTypeAdmin {
		return PrincipalTypeDealership
	}
	return PrincipalTypeAdmin
}
