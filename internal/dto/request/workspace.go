package request

type CreateWorkspaceRequest struct {
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Code        string  `json:"code" validate:"required,min=4,max=8,alphanum"`
}

type UpdateWorkspaceRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type InviteMembersRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,max=50,dive,email"`
}

type JoinWorkspaceRequest struct {
	Code string `json:"code" validate:"required"`
}
