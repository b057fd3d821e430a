// Package common - Test nhận diện sentinel error qua errors.Is.
package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs_WrappedSentinelMatches(t *testing.T) {
	wrapped := fmt.Errorf("xóa draft hết hạn: %w", ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("Sentinel đã wrap vẫn phải match qua errors.Is")
	}
	if errors.Is(wrapped, ErrNotOwner) {
		t.Error("Sentinel khác không được match")
	}
}

func TestErrorsIs_SameCodeAndMessageMatch(t *testing.T) {
	rebuilt := NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, "chi tiết khác")
	if !errors.Is(rebuilt, ErrNotFound) {
		t.Error("Error cùng code và message phải match sentinel dù Details khác")
	}

	other := NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	if errors.Is(other, ErrNotFound) {
		t.Error("Error khác message không được match sentinel")
	}
}
