package common

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApiMetric tracks API performance metrics
type ApiMetric struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Endpoint      string    `gorm:"not null" json:"endpoint"`
	Method        string    `gorm:"not null" json:"method"`
	StatusCode    int       `gorm:"not null" json:"status_code"`
	DurationMs    int       `gorm:"not null" json:"duration_ms"`
	RowsProcessed int       `gorm:"default:0" json:"rows_processed"`
	Timestamp     time.Time `gorm:"not null" json:"timestamp"`
}

func (ApiMetric) TableName() string { return "api_metrics" }

// AutoMigrateMetrics creates the metrics table
func AutoMigrateMetrics(db *gorm.DB) error {
	return db.AutoMigrate(&ApiMetric{})
}

// MetricsMiddleware tracks API performance metrics
func MetricsMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate request ID for tracing
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)

		// Get rows processed (if set by handler)
		rowsProcessed := 0
		if rows, exists := c.Get("rows_processed"); exists {
			if r, ok := rows.(int); ok {
				rowsProcessed = r
			}
		}

		metric := ApiMetric{
			Endpoint:      c.FullPath(),
			Method:        c.Request.Method,
			StatusCode:    c.Writer.Status(),
			DurationMs:    int(duration.Milliseconds()),
			RowsProcessed: rowsProcessed,
			Timestamp:     startTime,
		}

		// Save metric asynchronously
		go func() {
			db.Create(&metric)
		}()
	}
}
