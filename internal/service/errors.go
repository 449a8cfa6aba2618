package service

import (
	"errors"

	"gorm.io/gorm"
)

// ==================== 业务错误 ====================

// ValidationError 入参校验失败，未发生任何写入
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError 创建校验错误
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError 唯一性冲突（目前仅 SKU），未发生任何写入
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError 创建冲突错误
func NewConflictError(message string) error {
	return &ConflictError{Message: message}
}

// NotFoundError 记录不存在或不属于当前卖家
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// NewNotFoundError 创建未找到错误
func NewNotFoundError(message string) error {
	return &NotFoundError{Message: message}
}

// ==================== 判断辅助 ====================

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// wrapRecordError gorm 查不到记录时统一转为 NotFoundError
func wrapRecordError(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(message)
	}
	return err
}

// wrapDuplicateError 唯一索引兜底：预检查漏掉的并发写入由数据库约束拦下，
// 统一转为 ConflictError 返回给调用方
func wrapDuplicateError(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewConflictError(message)
	}
	return err
}
