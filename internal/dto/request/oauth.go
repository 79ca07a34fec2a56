package request

type OAuthCallbackRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

type OAuthLinkRequest struct {
	Code string `json:"code" validate:"required"`
}
