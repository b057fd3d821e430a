// Package utility chứa các helper chuyển đổi dữ liệu dùng chung.
package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi một struct (hoặc map) thành map[string]interface{}
// qua vòng marshal/unmarshal BSON để tôn trọng bson tag của model.
func ToMap(s interface{}) (map[string]interface{}, error) {
	if m, ok := s.(map[string]interface{}); ok {
		return m, nil
	}

	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	var out map[string]interface{}
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return out, nil
}
