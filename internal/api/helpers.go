package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"paramforge/internal/codec"
	"paramforge/internal/param"
)

const mimeBinary = "application/octet-stream"

var (
	errNotFound        = errors.New("instance not found")
	errVersionConflict = errors.New("version conflict")
)

func versionConflict(want, have int64) error {
	return fmt.Errorf("%w: expected %d, stored %d", errVersionConflict, want, have)
}

// statusFor maps an error to its HTTP status and machine-readable code.
func statusFor(err error) (int, string) {
	var pe *param.Error
	switch {
	case errors.Is(err, errNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errVersionConflict):
		return http.StatusConflict, "version_conflict"
	case errors.As(err, &pe):
		switch pe.Kind {
		case param.KindUnknownClassName, param.KindUnknownClassID:
			return http.StatusNotFound, string(pe.Kind)
		case param.KindWrongClass:
			return http.StatusConflict, string(pe.Kind)
		default:
			return http.StatusBadRequest, string(pe.Kind)
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func wantsBinary(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), mimeBinary)
}

func clientView(c *gin.Context) bool {
	v := strings.TrimSpace(c.Query("client"))
	return v == "1" || strings.EqualFold(v, "true")
}

// readExpectedVersion reads If-Match as a bare or quoted number, weak
// prefix allowed. 0 means no precondition.
func readExpectedVersion(c *gin.Context) (int64, error) {
	ifMatch := strings.TrimSpace(c.GetHeader("If-Match"))
	if ifMatch == "" {
		return 0, nil
	}
	ifMatch = strings.TrimPrefix(ifMatch, "W/")
	ifMatch = strings.Trim(ifMatch, `"'`)
	v, err := strconv.ParseInt(ifMatch, 10, 64)
	if err != nil {
		return 0, param.NewError(param.KindMalformed, "header", "If-Match", "value", ifMatch)
	}
	return v, nil
}

// flatten renders a record with its value in the JSON envelope form.
func flatten(rec *Record, client bool) (gin.H, error) {
	marshal := codec.MarshalJSON
	if client {
		marshal = codec.MarshalClientJSON
	}
	value, err := marshal(rec.Box)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"id":         rec.ID,
		"class":      rec.Box.Class().Name(),
		"class_id":   rec.Box.ClassID(),
		"version":    rec.Version,
		"created_at": rec.CreatedAt.Format(time.RFC3339),
		"updated_at": rec.UpdatedAt.Format(time.RFC3339),
		"value":      json.RawMessage(value),
	}, nil
}

func summary(rec *Record) gin.H {
	return gin.H{
		"id":         rec.ID,
		"class":      rec.Box.Class().Name(),
		"version":    rec.Version,
		"updated_at": rec.UpdatedAt.Format(time.RFC3339),
	}
}

func setETag(c *gin.Context, rec *Record) {
	c.Header("ETag", fmt.Sprintf(`"%d"`, rec.Version))
}
