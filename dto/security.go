package dto

import "github.com/rayansh0071505/portfolio-api/model"

type SecurityStatsResponse struct {
	BlockedIPs      map[string]model.BlockedIP `json:"blocked_ips"`
	TotalAutoBlocks int64                      `json:"total_auto_blocks"`
	DailyQuota      QuotaStats                 `json:"daily_quota"`
	Limits          LimitConfig                `json:"limits"`
}

type QuotaStats struct {
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
	Date  string `json:"date"`
}

type LimitConfig struct {
	RequestsPerMinute  int `json:"requests_per_minute"`
	RequestsPerHour    int `json:"requests_per_hour"`
	RequestsPerDay     int `json:"requests_per_day"`
	MessagesPerSession int `json:"messages_per_session"`
}
