package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/types"
)

// Lang reads the lang query parameter, UK by default
func Lang(c *gin.Context) types.Language {
	return types.ParseLanguage(c.DefaultQuery("lang", string(types.LanguageUK)))
}

// QueryList collects repeated query values, also accepting comma separated ones.
// Commas inside parentheses belong to percentage ranges and are kept.
func QueryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, part := range splitOutsideParens(raw) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryBool treats "true" and "1" as set
func QueryBool(c *gin.Context, name string) bool {
	v := strings.ToLower(c.Query(name))
	return v == "true" || v == "1"
}

func splitOutsideParens(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
