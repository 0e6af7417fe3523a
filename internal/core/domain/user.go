package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
	RoleFraud Role = "fraud"
)

// User - зарегистрированный пользователь маркетплейса.
type User struct {
	ID        string
	Email     string
	Name      string
	PhotoURL  string
	Role      Role
	CreatedAt time.Time
}

// EffectiveRole возвращает роль пользователя; отсутствующая роль читается как "user".
func (u *User) EffectiveRole() Role {
	if u == nil || u.Role == "" {
		return RoleUser
	}
	return u.Role
}

// Principal - результат проверки токена внешним провайдером идентификации.
type Principal struct {
	UID   string
	Email string
	Role  string
}

// FraudMarkResult описывает, какие шаги каскада "fraud" были выполнены.
type FraudMarkResult struct {
	MatchedCount      int64
	ModifiedCount     int64
	AgentEmail        string
	PropertiesDeleted int64
	PurgeDeferred     bool
}
