package dto

import "AssetVault/model"

type LoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AssetResponse is an asset plus a URL the caller can fetch it from.
type AssetResponse struct {
	*model.Asset
	DownloadURL string `json:"download_url"`
}

type DeleteResponse struct {
	Message string       `json:"message"`
	Asset   *model.Asset `json:"asset"`
}

type UserCountResponse struct {
	TotalUsers int64 `json:"total_users"`
}

type AssetCountResponse struct {
	TotalAssets int64 `json:"total_assets"`
}

type VisibilityResponse struct {
	PublicFiles  int64 `json:"public_files"`
	PrivateFiles int64 `json:"private_files"`
}
