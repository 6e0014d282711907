package dto

type ResetRequest struct {
	Confirmation string `json:"confirmation" form:"confirmation"`
}

type ResetResponse struct {
	Message string `json:"message"`
}
