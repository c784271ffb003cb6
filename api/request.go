package api

import (
	"strings"

	"catering/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// PageQuery page and limit query parameters
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (q *PageQuery) normalize() {
	if q.Page <= 0 {
		q.Page = defaultPage
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
}

func (q PageQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

var (
	textPolicy = bluemonday.StrictPolicy()
	// &lt; and &gt; stay escaped so entity-encoded markup never turns live
	plainEntities = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&#34;", `"`)
)

// sanitizeText strips markup from user-supplied text
func sanitizeText(s string) string {
	return strings.TrimSpace(plainEntities.Replace(textPolicy.Sanitize(s)))
}

// sanitizeOptional nil stays nil, blank becomes nil
func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// requiredName sanitizes a name that must stay non-empty
func requiredName(s string) (string, error) {
	clean := sanitizeText(s)
	if clean == "" {
		return "", errBadRequest("Validation error: name: is required")
	}
	return clean, nil
}

// currentUserID identity set by JWTAuth
func currentUserID(c *gin.Context) (string, error) {
	uid := middleware.GetCurrentUserID(c)
	if uid == "" {
		return "", errUnauthorized
	}
	return uid, nil
}

// pathID validates a UUID path parameter
func pathID(c *gin.Context, name string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", errBadRequest("Validation error: " + name + ": must be a valid UUID")
	}
	return id.String(), nil
}

// queryIDs collects ids from repeated and comma separated query values
func queryIDs(c *gin.Context, name string) ([]string, error) {
	var ids []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := uuid.Parse(part)
			if err != nil {
				return nil, errBadRequest("Validation error: " + name + ": must contain valid UUIDs")
			}
			ids = append(ids, id.String())
		}
	}
	return ids, nil
}

// likePattern case-insensitive substring pattern with LIKE wildcards escaped
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
