package hierarchy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks id uniqueness in every scope and the required fields of
// every node. It returns nil or a *ValidationError listing all issues.
// Ordering and content payloads are not checked.
func Validate(h Hierarchy) error {
	c := newChecker()
	for gi, g := range h {
		c.group(fmt.Sprintf("[%d]", gi), g)
	}
	return c.err()
}

// ValidateGroup checks a group subtree that is about to be added to h.
func ValidateGroup(h Hierarchy, g LevelGroup) error {
	c := seededChecker(h)
	c.group("group", g)
	return c.err()
}

// ValidateLevel checks a level subtree that is about to be added to h.
func ValidateLevel(h Hierarchy, l Level) error {
	c := seededChecker(h)
	c.level("level", l)
	return c.err()
}

// ValidateComponent checks a component that is about to be added to h.
func ValidateComponent(h Hierarchy, comp Component) error {
	c := seededChecker(h)
	c.component("component", comp)
	return c.err()
}

type checker struct {
	groups     map[string]string
	levels     map[string]string
	components map[string]string
	issues     []Issue
}

func newChecker() *checker {
	return &checker{
		groups:     make(map[string]string),
		levels:     make(map[string]string),
		components: make(map[string]string),
	}
}

func seededChecker(h Hierarchy) *checker {
	c := newChecker()
	for gi, g := range h {
		c.groups[g.ID] = fmt.Sprintf("[%d]", gi)
		for li, l := range g.Levels {
			c.levels[l.ID] = fmt.Sprintf("[%d].levels[%d]", gi, li)
			for ci, comp := range l.Components {
				c.components[comp.ID] = fmt.Sprintf("[%d].levels[%d].components[%d]", gi, li, ci)
			}
		}
	}
	return c
}

func (c *checker) err() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

func (c *checker) group(path string, g LevelGroup) {
	c.fields(path, g)
	c.unique(c.groups, path, g.ID, KindGroup)
	for li, l := range g.Levels {
		c.level(fmt.Sprintf("%s.levels[%d]", path, li), l)
	}
}

func (c *checker) level(path string, l Level) {
	c.fields(path, l)
	c.unique(c.levels, path, l.ID, KindLevel)
	for ci, comp := range l.Components {
		c.component(fmt.Sprintf("%s.components[%d]", path, ci), comp)
	}
}

func (c *checker) component(path string, comp Component) {
	c.fields(path, comp)
	c.unique(c.components, path, comp.ID, KindComponent)
}

func (c *checker) unique(seen map[string]string, path, id, kind string) {
	if id == "" {
		return
	}
	if prev, ok := seen[id]; ok {
		c.issues = append(c.issues, Issue{
			Path:    path + ".id",
			Code:    CodeDuplicateID,
			Message: fmt.Sprintf("%s id %q already used at %s", kind, id, prev),
		})
		return
	}
	seen[id] = path
}

func (c *checker) fields(path string, node any) {
	err := validate.Struct(node)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.issues = append(c.issues, Issue{Path: path, Code: CodeInvalid, Message: err.Error()})
		return
	}
	for _, fe := range fieldErrs {
		c.issues = append(c.issues, fieldIssue(path, fe))
	}
}

func fieldIssue(path string, fe validator.FieldError) Issue {
	issue := Issue{Path: path + "." + fe.Field()}
	switch fe.Tag() {
	case "required":
		issue.Code = CodeRequired
		issue.Message = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		issue.Code = CodeOutOfRange
		issue.Message = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		issue.Code = CodeInvalid
		issue.Message = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return issue
}
