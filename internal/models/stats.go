package models

import "time"

// DailyStat is one bucket of the reporting trend.
type DailyStat struct {
	Date        time.Time `json:"date" bson:"date"`
	Clicks      int64     `json:"clicks" bson:"clicks"`
	Conversions int64     `json:"conversions" bson:"conversions"`
	Revenue     Money     `json:"revenue" bson:"revenue"`
	Commission  Money     `json:"commission" bson:"commission"`
}

// AffiliateStats is the read-only rollup served to dashboards.
type AffiliateStats struct {
	AffiliateID      string      `json:"affiliate_id"`
	Period           string      `json:"period"`
	TotalClicks      int64       `json:"total_clicks"`
	TotalConversions int64       `json:"total_conversions"`
	TotalRevenue     Money       `json:"total_revenue"`
	TotalCommission  Money       `json:"total_commission"`
	Trend            []DailyStat `json:"trend"`
}

// ConversionTotals is the aggregate of one affiliate's conversions over a
// window.
type ConversionTotals struct {
	Count      int64 `json:"count" bson:"count"`
	Revenue    Money `json:"revenue" bson:"revenue"`
	Commission Money `json:"commission" bson:"commission"`
}
