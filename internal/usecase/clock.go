package usecase

import "time"

// 期限や作成時刻の比較はすべてUTCに揃える
func nowUTC() time.Time {
	return time.Now().UTC()
}
