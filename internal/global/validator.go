package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("render_mode", validateRenderMode)
	_ = Validate.RegisterValidation("publish_target", validatePublishTarget)
}

// validateNoXSS kiểm tra XSS trong text user nhập (comment, title, description)
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateRenderMode kiểm tra render mode hợp lệ (carousel | album_panel)
func validateRenderMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "carousel", "album_panel":
		return true
	}
	return false
}

// validatePublishTarget kiểm tra target publish hợp lệ (both | restricted | full)
func validatePublishTarget(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "both", "restricted", "full":
		return true
	}
	return false
}
