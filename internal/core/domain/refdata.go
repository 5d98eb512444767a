// Package domain defines the reference-data entities exchanged with the
// normalization backend.
package domain

import "time"

// Client is a managed client organization.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	INN       string    `json:"inn,omitempty"`
	KPP       string    `json:"kpp,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups normalization work for a client.
type Project struct {
	ID       int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

// Counterparty is a normalized counterparty record.
type Counterparty struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	INN     string `json:"inn,omitempty"`
	BIN     string `json:"bin,omitempty"`
	Country string `json:"country,omitempty"`
	Status  string `json:"status"`
}

// QualityMetric is one entry of a data quality report.
type QualityMetric struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Total int     `json:"total"`
}
