package service

import (
	"AssetVault/internal/apperr"
	"AssetVault/model"
	"encoding/json"
	"mime"
	"strings"
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
}

// normalizeContentType lowercases the media type and drops parameters.
func normalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return strings.ToLower(mediaType)
}

func validateContentType(contentType string) (string, error) {
	mediaType := normalizeContentType(contentType)
	if _, ok := allowedMimeTypes[mediaType]; !ok {
		return "", apperr.New(apperr.Validation, "invalid file type: only JPEG, PNG and PDF are allowed")
	}
	return mediaType, nil
}

// reservedFilenames collide with static GET routes under /assets.
var reservedFilenames = map[string]struct{}{
	"stats": {},
}

func isReservedFilename(name string) bool {
	_, ok := reservedFilenames[name]
	return ok
}

// ParseTags accepts a JSON array of strings or a comma-separated list.
// Blank entries are dropped; order is kept.
func ParseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, apperr.Wrap(apperr.Validation, "tags must be a JSON array of strings or a comma-separated list", err)
		}
	} else {
		parts = strings.Split(raw, ",")
	}
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags, nil
}

// ParsePermissions accepts a JSON object or the bare token "public".
// Anything else means private.
func ParsePermissions(raw string) model.Permissions {
	perms := model.PrivatePermissions()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return perms
	}
	var decoded model.Permissions
	if strings.HasPrefix(raw, "{") && json.Unmarshal([]byte(raw), &decoded) == nil {
		decoded.Version = model.PermissionsVersion
		return decoded
	}
	if strings.EqualFold(raw, "public") {
		perms.Public = true
	}
	return perms
}
