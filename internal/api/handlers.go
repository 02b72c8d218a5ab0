package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paramforge/internal/box"
	"paramforge/internal/codec"
	"paramforge/internal/param"
)

// POST /api/classes/:class/instances
// The optional body is a partial attribute object applied over the defaults.
func CreateHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := storage.Dispatch.NewByName(c.Param("class"))
		if err != nil {
			writeError(c, err)
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			writeError(c, param.NewError(param.KindMalformed, "reason", err.Error()))
			return
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := codec.UnmarshalTableJSON(b.Table(), body); err != nil {
				writeError(c, err)
				return
			}
		}

		rec, err := storage.Create(c.Request.Context(), b)
		if err != nil {
			writeError(c, err)
			return
		}
		out, err := flatten(rec, false)
		if err != nil {
			writeError(c, err)
			return
		}
		setETag(c, rec)
		c.JSON(http.StatusCreated, out)
	}
}

// GET /api/instances
func ListHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		lp := parseListParams(c.Request.URL.Query())
		if lp.Class != "" {
			if _, err := storage.Dispatch.Registry().ClassByName(lp.Class); err != nil {
				writeError(c, err)
				return
			}
		}
		page, total := storage.List(lp)

		out := make([]gin.H, 0, len(page))
		for _, rec := range page {
			out = append(out, summary(rec))
		}
		c.Header("X-Total-Count", strconv.Itoa(total))
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/instances/:id
// Accept: application/octet-stream selects the binary envelope; ?client=1
// drops attributes hidden from clients.
func GetOneHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := storage.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		setETag(c, rec)

		client := clientView(c)
		if wantsBinary(c) {
			encode := codec.Encode
			if client {
				encode = codec.EncodeClient
			}
			data, err := encode(rec.Box)
			if err != nil {
				writeError(c, err)
				return
			}
			c.Data(http.StatusOK, mimeBinary, data)
			return
		}
		out, err := flatten(rec, client)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// PATCH /api/instances/:id
// The body is a partial attribute object; present attributes overwrite.
func UpdatePartialHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		expect, err := readExpectedVersion(c)
		if err != nil {
			writeError(c, err)
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			writeError(c, param.NewError(param.KindMalformed, "reason", err.Error()))
			return
		}

		rec, err := storage.Update(c.Request.Context(), c.Param("id"), expect, func(b *box.Box) error {
			return codec.UnmarshalTableJSON(b.Table(), body)
		})
		if err != nil {
			writeError(c, err)
			return
		}
		out, err := flatten(rec, false)
		if err != nil {
			writeError(c, err)
			return
		}
		setETag(c, rec)
		c.JSON(http.StatusOK, out)
	}
}

// GET /api/instances/:id/diff/:other
// Returns the entries that turn :id into :other.
func DiffHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := storage.Get(c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		to, err := storage.Get(c.Param("other"))
		if err != nil {
			writeError(c, err)
			return
		}
		diff, err := from.Box.Diff(to.Box)
		if err != nil {
			writeError(c, err)
			return
		}

		if wantsBinary(c) {
			data, err := codec.EncodeDiff(diff)
			if err != nil {
				writeError(c, err)
				return
			}
			c.Data(http.StatusOK, mimeBinary, data)
			return
		}
		data, err := codec.MarshalDiffJSON(diff)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
	}
}

// POST /api/instances/:id/apply
// The body is a diff envelope, JSON or binary by Content-Type.
func ApplyHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		expect, err := readExpectedVersion(c)
		if err != nil {
			writeError(c, err)
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			writeError(c, param.NewError(param.KindMalformed, "reason", err.Error()))
			return
		}

		var diff *box.Box
		if c.ContentType() == mimeBinary {
			diff, err = codec.DecodeDiff(storage.Dispatch, body)
		} else {
			diff, err = codec.UnmarshalDiffJSON(storage.Dispatch, body)
		}
		if err != nil {
			writeError(c, err)
			return
		}

		rec, err := storage.Update(c.Request.Context(), c.Param("id"), expect, func(b *box.Box) error {
			return b.Apply(diff)
		})
		if err != nil {
			writeError(c, err)
			return
		}
		out, err := flatten(rec, false)
		if err != nil {
			writeError(c, err)
			return
		}
		setETag(c, rec)
		c.JSON(http.StatusOK, out)
	}
}

// DELETE /api/instances/:id
func DeleteHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := storage.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
