package domain

// Viewer - аутентифицированный пользователь текущей операции.
// Определяется один раз на запрос (сессия или bearer-токен), nil означает анонимный запрос.
type Viewer struct {
	ID          string
	Name        string
	RoleID      string
	Permissions []Permission
}

// Can проверяет право зрителя.
func (v *Viewer) Can(p Permission) bool {
	if v == nil {
		return false
	}
	return Valid(p, v.Permissions)
}
