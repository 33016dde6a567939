package programs

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BatchSize is the number of records fetched in a single query while streaming
const BatchSize = 500

// PublicExport godoc
// @Summary Export the public program feed
// @Description Streams published, non-secret programs in CSV or NDJSON format
// for external embedding
// @Tags public
// @Produce text/csv
// @Produce application/x-ndjson
// @Param format query string true "Export format (csv or ndjson)"
// @Success 200 {file} file "Streaming export data"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /public/programs/export [get]
func (h *Handler) PublicExport(c *gin.Context) {
	format := c.Query("format")

	validFormats := map[string]bool{"csv": true, "ndjson": true}
	if !validFormats[format] {
		c.JSON(400, gin.H{"error": "format parameter is required and must be: csv or ndjson"})
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("pkpt_programs_%s.%s", timestamp, format)

	if format == "csv" {
		c.Header("Content-Type", "text/csv")
	} else {
		c.Header("Content-Type", "application/x-ndjson")
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Transfer-Encoding", "chunked")

	c.Stream(func(w io.Writer) bool {
		h.streamPublicPrograms(w, format, c)
		return false // Done streaming
	})
}

// streamPublicPrograms streams the public feed in the requested format.
// The visibility rule is the same as PublicList: published AND not secret.
func (h *Handler) streamPublicPrograms(w io.Writer, format string, c *gin.Context) {
	offset := 0
	totalRecords := 0

	publicScope := func(db *gorm.DB) *gorm.DB {
		return db.Where("is_published = ? AND is_secret = ?", true, false).
			Order("id ASC").
			Limit(BatchSize).
			Offset(offset)
	}

	if format == "csv" {
		csvWriter := csv.NewWriter(w)
		csvWriter.Write([]string{
			"code", "activity_name", "responsible_unit", "inspection_object",
			"inspection_type", "start_date", "end_date", "status", "progress_percent",
		})
		csvWriter.Flush()

		for {
			var records []ProgramModel
			result := publicScope(h.db).Find(&records)
			if result.Error != nil || len(records) == 0 {
				break
			}

			for _, program := range records {
				csvWriter.Write([]string{
					program.Code,
					program.ActivityName,
					program.ResponsibleUnit,
					program.InspectionObject,
					program.InspectionType,
					program.StartDate,
					program.EndDate,
					program.Status,
					strconv.Itoa(program.ProgressPercent),
				})
			}
			csvWriter.Flush()

			totalRecords += len(records)
			if len(records) < BatchSize {
				break
			}
			offset += BatchSize
		}
	} else {
		// NDJSON format
		for {
			var records []ProgramModel
			result := publicScope(h.db).Find(&records)
			if result.Error != nil || len(records) == 0 {
				break
			}

			for _, program := range records {
				data := map[string]interface{}{
					"code":              program.Code,
					"activity_name":     program.ActivityName,
					"responsible_unit":  program.ResponsibleUnit,
					"inspection_object": program.InspectionObject,
					"inspection_type":   program.InspectionType,
					"start_date":        program.StartDate,
					"end_date":          program.EndDate,
					"status":            program.Status,
					"progress_percent":  program.ProgressPercent,
				}
				jsonBytes, _ := json.Marshal(data)
				fmt.Fprintf(w, "%s\n", jsonBytes)
			}

			totalRecords += len(records)
			if len(records) < BatchSize {
				break
			}
			offset += BatchSize
		}
	}

	// Set rows_processed for metrics
	c.Set("rows_processed", totalRecords)
}
