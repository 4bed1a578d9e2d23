package service

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/99designs/gqlgen/graphql"

	"github.com/UkralStul/hub-graphql-service/internal/domain"
	"github.com/UkralStul/hub-graphql-service/internal/gateway"
)

// Входные данные операций. В Add* обязательные поля - значения,
// в Edit* все поля кроме ID - указатели: nil означает "не менять",
// любое переданное значение (в том числе 0, "" и пустой список) записывается.

const maxTextLen = 2000

var phoneRe = regexp.MustCompile(`^\+?[0-9 ()\-]{5,20}$`)

type checker struct {
	gateway.ValidationError
}

func (c *checker) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "must not be empty")
	}
}

func (c *checker) text(field, value string) {
	c.required(field, value)
	if len(value) > maxTextLen {
		c.Add(field, "is too long")
	}
}

func (c *checker) email(field, value string) {
	if _, err := mail.ParseAddress(value); err != nil {
		c.Add(field, "must be a valid email address")
	}
}

func (c *checker) phone(field, value string) {
	if value != "" && !phoneRe.MatchString(value) {
		c.Add(field, "must be a valid phone number")
	}
}

func (c *checker) ids(field string, ids []string) {
	if len(ids) == 0 {
		c.Add(field, "at least one id is required")
	}
	for _, id := range ids {
		if id == "" {
			c.Add(field, "must not contain empty ids")
		}
	}
}

func (c *checker) err() error { return c.Err() }

func enum[T comparable](c *checker, field string, v T, all []T) {
	if !domain.Valid(v, all) {
		c.Add(field, "unknown value")
	}
}

func enumPtr[T comparable](c *checker, field string, v *T, all []T) {
	if v != nil {
		enum(c, field, *v, all)
	}
}

func enumList[T comparable](c *checker, field string, vs []T, all []T) {
	for _, v := range vs {
		enum(c, field, v, all)
	}
}

// IDs - список идентификаторов для удаления.
type IDs []string

func (in IDs) Validate() error {
	var c checker
	c.ids("id", in)
	return c.err()
}

// === Auth ===

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            string
	Avatar          string
}

func (in RegisterInput) Validate() error {
	var c checker
	c.required("name", in.Name)
	c.required("email", in.Email)
	if in.Email != "" {
		c.email("email", in.Email)
	}
	c.required("password", in.Password)
	if in.Password != in.ConfirmPassword {
		c.Add("confirmPassword", "passwords must match")
	}
	c.phone("phone", in.Phone)
	return c.err()
}

type LoginInput struct {
	Name     string
	Password string
	Area     string
}

func (in LoginInput) Validate() error {
	var c checker
	c.required("name", in.Name)
	c.required("password", in.Password)
	return c.err()
}

// === Role ===

type AddRoleInput struct {
	Name        string
	Permissions []domain.Permission
}

func (in AddRoleInput) Validate() error {
	var c checker
	c.required("name", in.Name)
	enumList(&c, "permissions", in.Permissions, domain.Permissions)
	return c.err()
}

type EditRoleInput struct {
	ID          string
	Name        *string
	Permissions *[]domain.Permission
}

func (in EditRoleInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	if in.Permissions != nil {
		enumList(&c, "permissions", *in.Permissions, domain.Permissions)
	}
	return c.err()
}

// === User ===

type AddUserInput struct {
	Name        string
	Password    string
	Email       string
	Phone       string
	Role        string
	Avatar      string
	Balance     int
	Level       int
	Experience  int
	Preferences []string
	Settings    []domain.Setting
}

func (in AddUserInput) Validate() error {
	var c checker
	c.required("name", in.Name)
	c.required("password", in.Password)
	if in.Email != "" {
		c.email("email", in.Email)
	}
	c.phone("phone", in.Phone)
	enumList(&c, "settings", in.Settings, domain.Settings)
	return c.err()
}

type EditUserInput struct {
	ID               string
	Name             *string
	Password         *string
	Email            *string
	Phone            *string
	Role             *string
	Avatar           *string
	Balance          *int
	Level            *int
	Experience       *int
	AvailableAvatars *[]string
	Preferences      *[]string
	Settings         *[]domain.Setting
}

func (in EditUserInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	if in.Name != nil {
		c.required("name", *in.Name)
	}
	if in.Password != nil {
		c.required("password", *in.Password)
	}
	if in.Email != nil && *in.Email != "" {
		c.email("email", *in.Email)
	}
	if in.Phone != nil {
		c.phone("phone", *in.Phone)
	}
	if in.Settings != nil {
		enumList(&c, "settings", *in.Settings, domain.Settings)
	}
	return c.err()
}

// === Hub ===

type AddHubInput struct {
	Title       string
	Description string
	Slogan      string
	Icon        string
	Color       string
	Status      domain.Status
}

func (in AddHubInput) Validate() error {
	var c checker
	c.required("title", in.Title)
	if in.Status != "" {
		enum(&c, "status", in.Status, domain.Statuses)
	}
	return c.err()
}

type EditHubInput struct {
	ID          string
	Title       *string
	Description *string
	Slogan      *string
	Icon        *string
	Color       *string
	Status      *domain.Status
}

func (in EditHubInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "status", in.Status, domain.Statuses)
	return c.err()
}

// === Post ===

type AddPostInput struct {
	// Author - имя автора; пустое значение - текущий пользователь.
	Author      string
	Type        domain.PostType
	Title       string
	Subtitle    string
	Description string
	Content     string
	Hub         string
	Status      domain.Status
	Preview     *graphql.Upload
}

func (in AddPostInput) Validate() error {
	var c checker
	enum(&c, "type", in.Type, domain.PostTypes)
	c.required("title", in.Title)
	if in.Status != "" {
		enum(&c, "status", in.Status, domain.Statuses)
	}
	return c.err()
}

type EditPostInput struct {
	ID          string
	Type        *domain.PostType
	Title       *string
	Subtitle    *string
	Description *string
	Content     *string
	Hub         *string
	Status      *domain.Status
	Views       *int
	Preview     *graphql.Upload
}

func (in EditPostInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "type", in.Type, domain.PostTypes)
	enumPtr(&c, "status", in.Status, domain.Statuses)
	if in.Views != nil && *in.Views < 0 {
		c.Add("views", "must not be negative")
	}
	return c.err()
}

// === Comment ===

type AddCommentInput struct {
	Post string
	Text string
}

func (in AddCommentInput) Validate() error {
	var c checker
	c.required("post", in.Post)
	c.text("text", in.Text)
	return c.err()
}

type EditCommentInput struct {
	ID   string
	Text *string
}

func (in EditCommentInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	if in.Text != nil {
		c.text("text", *in.Text)
	}
	return c.err()
}

type DeleteCommentsInput struct {
	Post string
	IDs  []string
}

func (in DeleteCommentsInput) Validate() error {
	var c checker
	c.required("post", in.Post)
	c.ids("id", in.IDs)
	return c.err()
}

// === Chat ===

type AddChatInput struct {
	Type    domain.ChatType
	Title   string
	Members []string // имена пользователей
}

func (in AddChatInput) Validate() error {
	var c checker
	enum(&c, "type", in.Type, domain.ChatTypes)
	return c.err()
}

type EditChatInput struct {
	ID      string
	Type    *domain.ChatType
	Title   *string
	Members *[]string
}

func (in EditChatInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "type", in.Type, domain.ChatTypes)
	return c.err()
}

type OpenUserChatInput struct {
	Name string
}

func (in OpenUserChatInput) Validate() error {
	var c checker
	c.required("name", in.Name)
	return c.err()
}

type SendMessageInput struct {
	Chat string
	Text string
}

func (in SendMessageInput) Validate() error {
	var c checker
	c.required("id", in.Chat)
	c.text("text", in.Text)
	return c.err()
}

// === Media ===

type AddAvatarInput struct {
	File   *graphql.Upload
	Name   string
	Rarity domain.Rarity
	Hub    string
}

func (in AddAvatarInput) Validate() error {
	var c checker
	if in.File == nil {
		c.Add("file", "is required")
	}
	if in.Rarity != "" {
		enum(&c, "rarity", in.Rarity, domain.Rarities)
	}
	return c.err()
}

type EditAvatarInput struct {
	ID     string
	File   *graphql.Upload
	Name   *string
	Rarity *domain.Rarity
	Hub    *string
}

func (in EditAvatarInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "rarity", in.Rarity, domain.Rarities)
	return c.err()
}

type AddImageInput struct {
	File *graphql.Upload
	Name string
}

func (in AddImageInput) Validate() error {
	var c checker
	if in.File == nil {
		c.Add("file", "is required")
	}
	return c.err()
}

type EditImageInput struct {
	ID   string
	File *graphql.Upload
	Name *string
}

func (in EditImageInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	return c.err()
}

type AddIconInput struct {
	File *graphql.Upload
	Name string
	Type domain.IconType
}

func (in AddIconInput) Validate() error {
	var c checker
	if in.File == nil {
		c.Add("file", "is required")
	}
	enum(&c, "type", in.Type, domain.IconTypes)
	return c.err()
}

type EditIconInput struct {
	ID   string
	File *graphql.Upload
	Name *string
	Type *domain.IconType
}

func (in EditIconInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "type", in.Type, domain.IconTypes)
	return c.err()
}

// === Achievement ===

type AddAchievementInput struct {
	Title       string
	Description string
	Area        domain.Area
}

func (in AddAchievementInput) Validate() error {
	var c checker
	c.required("title", in.Title)
	enum(&c, "area", in.Area, domain.Areas)
	return c.err()
}

type EditAchievementInput struct {
	ID          string
	Title       *string
	Description *string
	Area        *domain.Area
}

func (in EditAchievementInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	enumPtr(&c, "area", in.Area, domain.Areas)
	return c.err()
}

type AddLanguageInput struct {
	Code  string
	Title string
	Flag  string
}

func (in AddLanguageInput) Validate() error {
	var c checker
	c.required("code", in.Code)
	c.required("title", in.Title)
	c.required("flag", in.Flag)
	return c.err()
}

type EditLanguageInput struct {
	ID    string
	Code  *string
	Title *string
	Flag  *string
}

func (in EditLanguageInput) Validate() error {
	var c checker
	c.required("id", in.ID)
	if in.Code != nil {
		c.required("code", *in.Code)
	}
	return c.err()
}
