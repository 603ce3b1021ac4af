package api

import (
	"strings"
	"unicode/utf8"

	"resumaker/internal/storage"
)

var avatarExtensions = []string{".png", ".jpg", ".jpeg", ".webp"}

// isValidAvatarKey 只接受本简历头像目录下的图片对象键。
func isValidAvatarKey(resumeID, key string) bool {
	if key == "" || !utf8.ValidString(key) || len(key) > 200 {
		return false
	}
	if !strings.HasPrefix(key, storage.AvatarPrefix(resumeID)) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(key))
	for _, ext := range avatarExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isAcceptableAvatar 允许清空、外部 http(s) 链接或本简历的头像对象键。
func isAcceptableAvatar(resumeID, value string) bool {
	if value == "" || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://") {
		return true
	}
	return isValidAvatarKey(resumeID, value)
}
