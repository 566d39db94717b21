package dto

import "mime/multipart"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UploadRequest is the multipart form accepted by POST /assets/upload.
type UploadRequest struct {
	File        *multipart.FileHeader `form:"file" binding:"required"`
	Tags        string                `form:"tags"`
	Permissions string                `form:"permissions"`
}

type FilenameURI struct {
	Filename string `uri:"filename" binding:"required,max=255"`
}
