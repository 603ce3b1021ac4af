package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// IsNoSuchKey 判断错误是否表示对象不存在。
func IsNoSuchKey(err error) bool {
	return hasCode(err, "nosuchkey", "notfound") ||
		containsAny(err, "nosuchkey", "specified key does not exist")
}

// IsNoSuchBucket 判断错误是否表示 Bucket 不存在。
func IsNoSuchBucket(err error) bool {
	return hasCode(err, "nosuchbucket") ||
		containsAny(err, "nosuchbucket", "specified bucket does not exist")
}

func hasCode(err error, codes ...string) bool {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	code := strings.ToLower(strings.TrimSpace(resp.Code))
	for _, c := range codes {
		if code == c {
			return true
		}
	}
	return false
}

// containsAny 兜底匹配被网关包装成字符串的错误。
func containsAny(err error, needles ...string) bool {
	if err == nil {
		return false
	}
	lower := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
