package errcode

import "errors"

// 打印通知里携带的错误码。0 表示成功，4xxx 为可继续的告警，5xxx 为中断打印的失败。
const (
	OK              = 0
	ResourceMissing = 4004
	SystemError     = 5000
	RenderFailed    = 5001
	PrintFailed     = 5002
	UploadFailed    = 5003
)

// Error 给底层错误附加一个通知错误码。
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Wrap 为 err 标记错误码；err 为 nil 时返回 nil。
func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Of 取出错误链上最近的错误码，没有标记的错误视为 SystemError。
func Of(err error) int {
	if err == nil {
		return OK
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return SystemError
}
