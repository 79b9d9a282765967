package keyboard

import (
	"fmt"
	"strconv"
	"strings"
)

// Telegram ограничивает callback data 64 байтами
const maxDataLen = 64

// Data собирает callback data вида "action:1:2"
func Data(action string, ids ...int64) string {
	var sb strings.Builder
	sb.WriteString(action)
	for _, id := range ids {
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(id, 10))
	}
	return sb.String()
}

// ParseData разбирает callback data, ожидая ровно n идентификаторов после действия.
// Например: "move:12:15" -> "move", [12 15]
func ParseData(data string, n int) (string, []int64, error) {
	if len(data) > maxDataLen {
		return "", nil, fmt.Errorf("callback data too long: %d bytes", len(data))
	}
	parts := strings.Split(data, ":")
	if len(parts) != n+1 || parts[0] == "" {
		return "", nil, fmt.Errorf("invalid callback data format %q", data)
	}

	ids := make([]int64, 0, n)
	for _, part := range parts[1:] {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return "", nil, fmt.Errorf("invalid id %q in callback data", part)
		}
		ids = append(ids, id)
	}
	return parts[0], ids, nil
}
