package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

// 校验错误
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrNameTooLong     = errors.New("name is too long (max 255 characters)")
	ErrDangerousChars  = errors.New("name contains dangerous characters")
	ErrEmptyID         = errors.New("id cannot be empty")
	ErrInvalidIDFormat = errors.New("id contains invalid characters")
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// SanitizeString 清理字符串,移除或转义危险字符
func SanitizeString(input string) string {
	// 1. HTML 转义,防止 XSS
	sanitized := html.EscapeString(input)

	// 2. 移除控制字符(除了换行符和制表符)
	var result strings.Builder
	for _, r := range sanitized {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// ValidateName 验证展示名称(项目名、标签名)
func ValidateName(name string) error {
	// 1. 检查是否为空或仅包含空白字符
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}

	// 2. 检查长度(最大 255 字符)
	if len(trimmed) > 255 {
		return ErrNameTooLong
	}

	// 3. 检查是否包含危险字符
	if containsDangerousChars(trimmed) {
		return ErrDangerousChars
	}

	return nil
}

// ValidateID 验证资源 ID 格式
// 只允许字母、数字、连字符、下划线
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	return nil
}

// containsDangerousChars 检查是否包含脚本注入相关字符序列
func containsDangerousChars(s string) bool {
	lowered := strings.ToLower(s)
	dangerous := []string{"<script", "javascript:", "onerror=", "onload=", "\x00"}
	for _, pattern := range dangerous {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}
