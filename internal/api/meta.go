package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"paramforge/internal/class"
	"paramforge/internal/param"
)

// ===== META HANDLERS =====

type metaClassListItem struct {
	Name   string `json:"name"`
	ID     uint16 `json:"id"`
	Parent string `json:"parent,omitempty"`
	Final  bool   `json:"final"`
}

type metaList struct {
	DataVersion    int                 `json:"data_version"`
	DefaultClasses map[string]string   `json:"default_classes,omitempty"`
	Classes        []metaClassListItem `json:"classes"`
}

func MetaListHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		reg := storage.Dispatch.Registry()
		out := metaList{DataVersion: reg.DataVersion, DefaultClasses: reg.DefaultClasses}
		for _, cl := range reg.Classes() {
			item := metaClassListItem{Name: cl.Name(), ID: cl.ID(), Final: cl.Final()}
			if p := cl.Parent(); p != nil {
				item.Parent = p.Name()
			}
			out.Classes = append(out.Classes, item)
		}
		c.JSON(http.StatusOK, out)
	}
}

type metaAttr struct {
	Name    string          `json:"name"`
	ID      uint16          `json:"id"`
	Type    string          `json:"type"`
	Flags   []string        `json:"flags,omitempty"`
	Owner   string          `json:"owner"`
	Client  bool            `json:"client"`
	Default json.RawMessage `json:"default"`
}

type metaClass struct {
	Name         string     `json:"name"`
	ID           uint16     `json:"id"`
	Final        bool       `json:"final"`
	Contracts    []string   `json:"contracts"`
	BindsTo      []string   `json:"binds_to,omitempty"`
	Icon         string     `json:"icon,omitempty"`
	ContentTable string     `json:"content_table,omitempty"`
	Attrs        []metaAttr `json:"attrs"`
}

func MetaClassHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, err := storage.Dispatch.Registry().ClassByName(c.Param("class"))
		if err != nil {
			writeError(c, err)
			return
		}
		out, err := describe(cl)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func describe(cl *class.Class) (metaClass, error) {
	out := metaClass{
		Name:         cl.Name(),
		ID:           cl.ID(),
		Final:        cl.Final(),
		Contracts:    cl.Contracts(),
		BindsTo:      cl.BindsTo(),
		Icon:         cl.Icon(),
		ContentTable: cl.ContentTable(),
		Attrs:        make([]metaAttr, 0, len(cl.Attrs())),
	}
	for _, a := range cl.Attrs() {
		def, err := param.MarshalValue(a.Default())
		if err != nil {
			return out, err
		}
		out.Attrs = append(out.Attrs, metaAttr{
			Name:    a.Name(),
			ID:      a.ID(),
			Type:    a.Type().String(),
			Flags:   a.Flags().Names(),
			Owner:   a.Owner(),
			Client:  a.Flags().ClientVisible(),
			Default: def,
		})
	}
	return out, nil
}
