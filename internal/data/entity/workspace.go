package entity

import (
	"time"

	"github.com/google/uuid"
)

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

type Workspace struct {
	Base
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Code        string    `db:"code"`
	AdminID     uuid.UUID `db:"admin_id"`
	IsActive    bool      `db:"is_active"`
}

type WorkspaceMember struct {
	ID          uuid.UUID  `db:"id"`
	WorkspaceID uuid.UUID  `db:"workspace_id"`
	UserID      uuid.UUID  `db:"user_id"`
	Role        MemberRole `db:"role"`
	JoinedAt    time.Time  `db:"joined_at"`
}
