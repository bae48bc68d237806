package apperr

import "fmt"

// NotFoundError 资源不存在错误
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// NewNotFound 创建资源不存在错误
func NewNotFound(resource string, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError 参数校验错误
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation 创建参数校验错误
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError 状态不合法错误
// 例如在非 review 状态执行审核决策,或删除仍被引用的标签
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

// NewInvalidState 创建状态不合法错误
func NewInvalidState(format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

// StorageError 持久化或对象存储 I/O 错误
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorage 创建存储错误
func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// ExpiredResourceError 资源已过期错误
// 导出文件超过保留期后下载请求返回该错误
type ExpiredResourceError struct {
	Resource string
	ID       string
}

func (e *ExpiredResourceError) Error() string {
	return fmt.Sprintf("%s %q has expired", e.Resource, e.ID)
}

// NewExpired 创建资源过期错误
func NewExpired(resource string, id string) *ExpiredResourceError {
	return &ExpiredResourceError{Resource: resource, ID: id}
}
