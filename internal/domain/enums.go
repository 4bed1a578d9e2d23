package domain

type (
	PostType    string
	Status      string
	ChatType    string
	ChatStatus  string
	MessageType string
	Rarity      string
	IconType    string
	Permission  string
	Setting     string
	Area        string
)

const (
	PostArticle PostType = "ARTICLE"
	PostOffer   PostType = "OFFER"

	StatusModeration Status = "MODERATION"
	StatusPublished  Status = "PUBLISHED"

	ChatUser  ChatType = "USER_CHAT"
	ChatGroup ChatType = "GROUP_CHAT"

	ChatOpen   ChatStatus = "OPEN_CHAT"
	ChatClosed ChatStatus = "CLOSE_CHAT"

	MessageRead   MessageType = "READED"
	MessageUnread MessageType = "UNREADED"

	RarityAvailable Rarity = "AVAILABLE"
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"

	IconHub   IconType = "HUB"
	IconFlag  IconType = "FLAG"
	IconTask  IconType = "TASK"
	IconAward IconType = "AWARD"

	PermAccessClient    Permission = "ACCESS_CLIENT"
	PermAccessDashboard Permission = "ACCESS_DASHBOARD"
	PermAddUser         Permission = "ADD_USER"
	PermAddPost         Permission = "ADD_POST"
	PermAddHub          Permission = "ADD_HUB"
	PermEditUser        Permission = "EDIT_USER"
	PermEditPost        Permission = "EDIT_POST"
	PermEditHub         Permission = "EDIT_HUB"
	PermDeleteUser      Permission = "DELETE_USER"
	PermDeletePost      Permission = "DELETE_POST"
	PermDeleteHub       Permission = "DELETE_HUB"
	PermOpenChat        Permission = "OPEN_CHAT"
	PermCloseChat       Permission = "CLOSE_CHAT"
	PermUserMessaging   Permission = "USER_MESSAGING"
	PermSystemMessaging Permission = "SYSTEM_MESSAGING"

	SettingVerifiedEmail Setting = "VERIFIED_EMAIL"
	SettingVerifiedPhone Setting = "VERIFIED_PHONE"
	SettingNotifiedEmail Setting = "NOTIFIED_EMAIL"

	AreaUser    Area = "USER"
	AreaPost    Area = "POST"
	AreaHub     Area = "HUB"
	AreaChat    Area = "CHAT"
	AreaTour    Area = "TOUR"
	AreaProfile Area = "PROFILE"
)

var (
	PostTypes    = []PostType{PostArticle, PostOffer}
	Statuses     = []Status{StatusModeration, StatusPublished}
	ChatTypes    = []ChatType{ChatUser, ChatGroup}
	ChatStatuses = []ChatStatus{ChatOpen, ChatClosed}
	MessageTypes = []MessageType{MessageRead, MessageUnread}
	Rarities     = []Rarity{RarityAvailable, RarityCommon, RarityRare, RarityEpic, RarityLegendary}
	IconTypes    = []IconType{IconHub, IconFlag, IconTask, IconAward}
	Permissions  = []Permission{
		PermAccessClient, PermAccessDashboard,
		PermAddUser, PermAddPost, PermAddHub,
		PermEditUser, PermEditPost, PermEditHub,
		PermDeleteUser, PermDeletePost, PermDeleteHub,
		PermOpenChat, PermCloseChat,
		PermUserMessaging, PermSystemMessaging,
	}
	Settings = []Setting{SettingVerifiedEmail, SettingVerifiedPhone, SettingNotifiedEmail}
	Areas    = []Area{AreaUser, AreaPost, AreaHub, AreaChat, AreaTour, AreaProfile}
)

// Valid сообщает, входит ли значение в перечисление all.
func Valid[T comparable](v T, all []T) bool {
	for _, it := range all {
		if it == v {
			return true
		}
	}
	return false
}
