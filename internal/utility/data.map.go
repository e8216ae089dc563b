package utility

import (
	"encoding/json"
	"fmt"
)

// MapToJSON chuyển đổi map thành chuỗi JSON
// @params - map cần chuyển đổi
// @returns - chuỗi JSON và lỗi nếu có
func MapToJSON(m map[string]interface{}) (string, error) {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("lỗi khi chuyển đổi map thành JSON: %v", err)
	}
	return string(jsonBytes), nil
}

// JSONToMap chuyển đổi chuỗi JSON thành map
// @params - chuỗi JSON cần chuyển đổi
// @returns - map và lỗi nếu có
func JSONToMap(jsonStr string) (map[string]interface{}, error) {
	var result map[string]interface{}
	err := json.Unmarshal([]byte(jsonStr), &result)
	if err != nil {
		return nil, fmt.Errorf("lỗi khi chuyển đổi JSON thành map: %v", err)
	}
	return result, nil
}

// PickMapFields tạo map mới chỉ chứa các key trong danh sách allowed
// Key không tồn tại trong map nguồn sẽ bị bỏ qua
// @params - map nguồn, danh sách key được phép
// @returns - map mới chỉ chứa các key được phép
func PickMapFields(m map[string]interface{}, allowed []string) map[string]interface{} {
	result := make(map[string]interface{}, len(allowed))
	if m == nil {
		return result
	}
	for _, key := range allowed {
		if value, exists := m[key]; exists {
			result[key] = value
		}
	}
	return result
}

// MapContainsKey kiểm tra xem map có chứa key hay không
// @params - map cần kiểm tra, key cần tìm
// @returns - true nếu có key, false nếu không
func MapContainsKey(m map[string]interface{}, key string) bool {
	if m == nil {
		return false
	}
	_, exists := m[key]
	return exists
}

// MapIsEmpty kiểm tra xem map có rỗng hay không
// @params - map cần kiểm tra
// @returns - true nếu map rỗng, false nếu không
func MapIsEmpty(m map[string]interface{}) bool {
	return len(m) == 0
}
