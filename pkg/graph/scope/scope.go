// Package scope builds the comma-separated permission list requested by a
// login dialog.
package scope

import "strings"

// Permission is a named Graph permission.
type Permission string

// Facebook login permissions.
const (
	PublicProfile        Permission = "public_profile"
	Email                Permission = "email"
	UserLikes            Permission = "user_likes"
	UserPosts            Permission = "user_posts"
	PagesShowList        Permission = "pages_show_list"
	PagesReadEngagement  Permission = "pages_read_engagement"
	PagesReadUserContent Permission = "pages_read_user_content"
	PagesManagePosts     Permission = "pages_manage_posts"
)

// Instagram login permissions.
const (
	InstagramBusinessBasic          Permission = "instagram_business_basic"
	InstagramBusinessContentPublish Permission = "instagram_business_content_publish"
	InstagramBusinessManageComments Permission = "instagram_business_manage_comments"
	InstagramBusinessManageMessages Permission = "instagram_business_manage_messages"
	InstagramGraphUserProfile       Permission = "instagram_graph_user_profile"
	InstagramGraphUserMedia         Permission = "instagram_graph_user_media"
)

// Builder collects permissions in insertion order, dropping duplicates.
// The zero value is ready to use.
type Builder struct {
	perms []Permission
	seen  map[Permission]bool
}

// New returns a builder holding perms.
func New(perms ...Permission) *Builder {
	b := &Builder{}
	return b.AddPermission(perms...)
}

// Parse reads a comma-separated list such as "email,public_profile".
func Parse(s string) *Builder {
	b := &Builder{}
	for _, p := range strings.Split(s, ",") {
		b.AddPermission(Permission(p))
	}
	return b
}

// AddPermission appends perms not already present. Blank names are ignored.
func (b *Builder) AddPermission(perms ...Permission) *Builder {
	if b.seen == nil {
		b.seen = make(map[Permission]bool)
	}
	for _, p := range perms {
		p = Permission(strings.TrimSpace(string(p)))
		if p == "" || b.seen[p] {
			continue
		}
		b.seen[p] = true
		b.perms = append(b.perms, p)
	}
	return b
}

// Permissions returns a copy of the collected permissions.
func (b *Builder) Permissions() []Permission {
	if b == nil {
		return nil
	}
	return append([]Permission(nil), b.perms...)
}

// String joins the permissions with commas. A nil or empty builder yields "".
func (b *Builder) String() string {
	if b == nil || len(b.perms) == 0 {
		return ""
	}
	names := make([]string, len(b.perms))
	for i, p := range b.perms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
