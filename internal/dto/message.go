package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
