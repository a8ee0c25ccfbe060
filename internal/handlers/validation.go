package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// validationIssues converts a binding error into the structured
// per-field issue list returned on every 400.
func validationIssues(err error) []gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, gin.H{
				"field":   lowerFirst(fe.Field()),
				"message": issueMessage(fe),
			})
		}
		return issues
	}
	return []gin.H{{"message": "malformed request body"}}
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
