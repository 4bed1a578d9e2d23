package domain

import "time"

// Base - общие поля любой сущности хранилища.
// Идентификатор и метки времени проставляет storage.Collection.
type Base struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (b *Base) EntityID() string   { return b.ID }
func (b *Base) Created() time.Time { return b.CreatedAt }
func (b *Base) Updated() time.Time { return b.UpdatedAt }

// Stamp проставляет id (если его ещё нет) и метки времени.
func (b *Base) Stamp(id string, now time.Time) {
	if b.ID == "" {
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Role - набор прав, который назначается пользователю.
type Role struct {
	Base        `bson:",inline"`
	Name        string       `json:"name" bson:"name"`
	Permissions []Permission `json:"permissions" bson:"permissions"`
}

// Has проверяет наличие права у роли.
func (r *Role) Has(p Permission) bool {
	for _, it := range r.Permissions {
		if it == p {
			return true
		}
	}
	return false
}

// User представляет пользователя платформы.
type User struct {
	Base             `bson:",inline"`
	Name             string    `json:"name" bson:"name"`
	Password         string    `json:"password" bson:"password"` // bcrypt hash
	Email            string    `json:"email" bson:"email"`
	Phone            string    `json:"phone" bson:"phone"`
	RoleID           string    `json:"role" bson:"role"`
	Balance          int       `json:"balance" bson:"balance"`
	Level            int       `json:"level" bson:"level"`
	Experience       int       `json:"experience" bson:"experience"`
	AvatarID         string    `json:"avatar" bson:"avatar"`
	AvailableAvatars []string  `json:"availableAvatars" bson:"availableAvatars"`
	Preferences      []string  `json:"preferences" bson:"preferences"`
	Settings         []Setting `json:"settings" bson:"settings"`
}

// Hub - тематическое сообщество, к которому привязаны посты и аватары.
type Hub struct {
	Base        `bson:",inline"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Slogan      string `json:"slogan" bson:"slogan"`
	IconID      string `json:"icon" bson:"icon"`
	Color       string `json:"color" bson:"color"`
	Status      Status `json:"status" bson:"status"`
}

// Post - статья или предложение (offer), в зависимости от Type.
type Post struct {
	Base        `bson:",inline"`
	AuthorID    string   `json:"author" bson:"author"`
	Type        PostType `json:"type" bson:"type"`
	Title       string   `json:"title" bson:"title"`
	Subtitle    string   `json:"subtitle" bson:"subtitle"`
	Description string   `json:"description" bson:"description"`
	Content     string   `json:"content" bson:"content"`
	PreviewID   string   `json:"preview" bson:"preview"`
	HubID       string   `json:"hub" bson:"hub"`
	Views       int      `json:"views" bson:"views"`
	Status      Status   `json:"status" bson:"status"`
}

// Comment - комментарий к посту.
type Comment struct {
	Base   `bson:",inline"`
	UserID string `json:"user" bson:"user"`
	PostID string `json:"post" bson:"post"`
	Text   string `json:"text" bson:"text"`
}

// Chat - переписка между участниками. Messages хранит id сообщений в порядке отправки.
type Chat struct {
	Base     `bson:",inline"`
	Type     ChatType `json:"type" bson:"type"`
	Title    string   `json:"title" bson:"title"`
	Members  []string `json:"members" bson:"members"`
	Messages []string `json:"messages" bson:"messages"`
}

// HasMember проверяет, состоит ли пользователь в чате.
func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// UserChat - участие пользователя в чате (ссылки на чат и пользователей, без владения).
type UserChat struct {
	Base           `bson:",inline"`
	ChatID         string     `json:"chat" bson:"chat"`
	UserID         string     `json:"user" bson:"user"`
	InterlocutorID string     `json:"interlocutor" bson:"interlocutor"`
	Status         ChatStatus `json:"status" bson:"status"`
}

// Message - сообщение в чате.
type Message struct {
	Base   `bson:",inline"`
	ChatID string      `json:"chat" bson:"chat"`
	UserID string      `json:"user" bson:"user"`
	Text   string      `json:"text" bson:"text"`
	Type   MessageType `json:"type" bson:"type"`
}

// Notification - уведомление для конкретного пользователя.
type Notification struct {
	Base   `bson:",inline"`
	UserID string `json:"user" bson:"user"`
	Text   string `json:"text" bson:"text"`
}

// Avatar - загруженное изображение аватара.
type Avatar struct {
	Base   `bson:",inline"`
	Name   string `json:"name" bson:"name"`
	Path   string `json:"path" bson:"path"`
	Rarity Rarity `json:"rarity" bson:"rarity"`
	HubID  string `json:"hub" bson:"hub"`
}

// Image - загруженное изображение (например, превью поста).
type Image struct {
	Base     `bson:",inline"`
	Name     string `json:"name" bson:"name"`
	Path     string `json:"path" bson:"path"`
	Mimetype string `json:"mimetype" bson:"mimetype"`
}

// Icon - загруженная иконка хаба, флага, задания или награды.
type Icon struct {
	Base `bson:",inline"`
	Name string   `json:"name" bson:"name"`
	Path string   `json:"path" bson:"path"`
	Type IconType `json:"type" bson:"type"`
}

// Language - язык интерфейса; флаг - иконка типа FLAG.
type Language struct {
	Base   `bson:",inline"`
	Code   string `json:"code" bson:"code"`
	Title  string `json:"title" bson:"title"`
	FlagID string `json:"flag" bson:"flag"`
}

// Achievement - достижение, которое пользователь может получить в определённой области.
type Achievement struct {
	Base        `bson:",inline"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Area        Area   `json:"area" bson:"area"`
}
